package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Request field bounds.
const (
	MaxRequestTitleLen       = 200
	MaxRequestDescriptionLen = 2000
	MaxResolutionNotesLen    = 2000
	MaxReopenReasonLen       = 1000
)

// RequestStatus is the open/closed state of a support request.
type RequestStatus string

const (
	RequestOpen   RequestStatus = "Open"
	RequestClosed RequestStatus = "Closed"
)

// RequestCategory classifies a support request. The category is optional.
type RequestCategory string

const (
	CategoryTechnical RequestCategory = "Technical"
	CategoryGrading   RequestCategory = "Grading"
	CategoryAccount   RequestCategory = "Account"
	CategoryOther     RequestCategory = "Other"
)

// ValidRequestCategory reports whether c names a known category. The empty
// string is accepted because the category is optional.
func ValidRequestCategory(c RequestCategory) bool {
	switch c {
	case "", CategoryTechnical, CategoryGrading, CategoryAccount, CategoryOther:
		return true
	}
	return false
}

// Request is a staff/admin support request. A closed request is immutable;
// reopening creates a fresh open request whose OriginalRequestID points at
// the closed one, forming a traceable chain of open/close cycles.
type Request struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Category          RequestCategory `json:"category,omitempty"`
	Status            RequestStatus   `json:"status"`
	CreatedBy         string          `json:"created_by"`
	ClosedBy          string          `json:"closed_by,omitempty"`
	ResolutionNotes   string          `json:"resolution_notes,omitempty"`
	ReopenReason      string          `json:"reopen_reason,omitempty"`
	OriginalRequestID string          `json:"original_request_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	ReopenedAt        *time.Time      `json:"reopened_at,omitempty"`
}

// NewRequest creates an open request. The id and creation timestamp are
// assigned by the owning collection.
func NewRequest(title, description string, category RequestCategory, createdBy string) *Request {
	return &Request{
		Title:       title,
		Description: description,
		Category:    category,
		Status:      RequestOpen,
		CreatedBy:   createdBy,
	}
}

// Validate returns an empty string when the request is well-formed, or the
// first violated constraint's message.
func (r *Request) Validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "Title is required."
	}
	if strings.TrimSpace(r.Description) == "" {
		return "Description is required."
	}
	if strings.TrimSpace(r.CreatedBy) == "" {
		return "Creator is required."
	}
	if utf8.RuneCountInString(r.Title) > MaxRequestTitleLen {
		return "Title cannot exceed 200 characters."
	}
	if utf8.RuneCountInString(r.Description) > MaxRequestDescriptionLen {
		return "Description cannot exceed 2000 characters."
	}
	if !ValidRequestCategory(r.Category) {
		return "Unknown request category."
	}
	if r.Status != RequestOpen && r.Status != RequestClosed {
		return "Status must be Open or Closed."
	}
	return ""
}

// Reopened creates the successor request for a closed request: a new open
// record copying title, category and description, linked back via
// OriginalRequestID. The receiver is not modified.
func (r *Request) Reopened(reopenedBy, reason string, at time.Time) *Request {
	return &Request{
		Title:             r.Title,
		Description:       r.Description,
		Category:          r.Category,
		Status:            RequestOpen,
		CreatedBy:         reopenedBy,
		ReopenReason:      reason,
		OriginalRequestID: r.ID,
		ReopenedAt:        &at,
	}
}
