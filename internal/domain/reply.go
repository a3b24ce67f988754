package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxReplyBodyLen bounds the reply body.
const MaxReplyBodyLen = 3000

// Reply is a response to a post. Feedback replies form a private channel:
// only the reply's author and the parent post's author may see them.
// Replies are soft-deleted like posts.
type Reply struct {
	ID           string     `json:"id"`
	Body         string     `json:"body"`
	Author       string     `json:"author"`
	PostID       string     `json:"post_id"`
	CreatedAt    time.Time  `json:"created_at"`
	LastEditedAt *time.Time `json:"last_edited_at,omitempty"`
	Deleted      bool       `json:"deleted"`
	Read         bool       `json:"read"`
	Feedback     bool       `json:"feedback"`
}

// NewReply creates a reply. Replies start unread; the id and creation
// timestamp are assigned by the owning collection.
func NewReply(body, author, postID string, feedback bool) *Reply {
	return &Reply{
		Body:     body,
		Author:   author,
		PostID:   postID,
		Feedback: feedback,
	}
}

// Validate returns an empty string when the reply is well-formed, or the
// first violated constraint's message.
func (r *Reply) Validate() string {
	if strings.TrimSpace(r.Body) == "" {
		return "Body is required."
	}
	if strings.TrimSpace(r.Author) == "" {
		return "Author is required."
	}
	if strings.TrimSpace(r.PostID) == "" {
		return "Parent post is required."
	}
	if utf8.RuneCountInString(r.Body) > MaxReplyBodyLen {
		return "Body cannot exceed 3000 characters."
	}
	return ""
}

// VisibleTo reports whether viewer may see this reply. Ordinary replies are
// public; feedback replies are visible only to their author and the parent
// post's author.
func (r *Reply) VisibleTo(viewer, postAuthor string) bool {
	if !r.Feedback {
		return true
	}
	return viewer == r.Author || viewer == postAuthor
}
