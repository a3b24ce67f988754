package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Post field bounds.
const (
	MaxPostTitleLen = 100
	MaxPostBodyLen  = 5000

	// DefaultThread is the grouping a post falls into when none is given.
	DefaultThread = "General"
)

// Post is a top-level forum post. Posts are grouped by a free-form thread
// name and soft-deleted: a tombstoned post keeps its row so replies to it
// can still be displayed.
type Post struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	Author       string     `json:"author"`
	Thread       string     `json:"thread"`
	CreatedAt    time.Time  `json:"created_at"`
	LastEditedAt *time.Time `json:"last_edited_at,omitempty"`
	Deleted      bool       `json:"deleted"`
}

// NewPost creates a post with the thread defaulted when blank. The id and
// creation timestamp are assigned by the owning collection.
func NewPost(title, body, author, thread string) *Post {
	if strings.TrimSpace(thread) == "" {
		thread = DefaultThread
	}
	return &Post{
		Title:  title,
		Body:   body,
		Author: author,
		Thread: thread,
	}
}

// Validate returns an empty string when the post is well-formed, or the
// first violated constraint's message. Required fields are checked before
// length bounds.
func (p *Post) Validate() string {
	if strings.TrimSpace(p.Title) == "" {
		return "Title is required."
	}
	if strings.TrimSpace(p.Body) == "" {
		return "Body is required."
	}
	if strings.TrimSpace(p.Author) == "" {
		return "Author is required."
	}
	if utf8.RuneCountInString(p.Title) > MaxPostTitleLen {
		return "Title cannot exceed 100 characters."
	}
	if utf8.RuneCountInString(p.Body) > MaxPostBodyLen {
		return "Body cannot exceed 5000 characters."
	}
	return ""
}
