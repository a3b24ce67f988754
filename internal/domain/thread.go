package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Thread field bounds.
const (
	MaxThreadTitleLen       = 100
	MaxThreadDescriptionLen = 500
)

// ThreadStatus is the open/closed state of a thread.
type ThreadStatus string

const (
	ThreadOpen   ThreadStatus = "Open"
	ThreadClosed ThreadStatus = "Closed"
)

// Thread is a staff-defined discussion area. Posts belong to a thread by
// matching its title, so deleting a thread never cascades into posts.
type Thread struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      ThreadStatus `json:"status"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewThread creates an open thread. The id and creation timestamp are
// assigned by the owning collection.
func NewThread(title, description, createdBy string) *Thread {
	return &Thread{
		Title:       title,
		Description: description,
		Status:      ThreadOpen,
		CreatedBy:   createdBy,
	}
}

// Validate returns an empty string when the thread is well-formed, or the
// first violated constraint's message.
func (t *Thread) Validate() string {
	if strings.TrimSpace(t.Title) == "" {
		return "Title is required."
	}
	if strings.TrimSpace(t.Description) == "" {
		return "Description is required."
	}
	if strings.TrimSpace(t.CreatedBy) == "" {
		return "Creator is required."
	}
	if utf8.RuneCountInString(t.Title) > MaxThreadTitleLen {
		return "Title cannot exceed 100 characters."
	}
	if utf8.RuneCountInString(t.Description) > MaxThreadDescriptionLen {
		return "Description cannot exceed 500 characters."
	}
	if t.Status != ThreadOpen && t.Status != ThreadClosed {
		return "Status must be Open or Closed."
	}
	return ""
}
