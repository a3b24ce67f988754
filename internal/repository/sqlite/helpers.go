package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"forumdesk/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToTimePtr safely converts sql.NullTime to *time.Time
func nullToTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// timePtrToNull safely converts *time.Time to sql.NullTime
func timePtrToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from a nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals v to a nullable JSON string; nil and empty slices
// store as NULL rather than "[]"
func marshalToNull(v []string) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// marshalJSON marshals a required JSON column value
func marshalJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ============================================================================
// Post Row Scanner
// ============================================================================

// postRow holds all columns from a post query for scanning
type postRow struct {
	ID           string
	Title        string
	Body         string
	Author       string
	Thread       string
	CreatedAt    time.Time
	LastEditedAt sql.NullTime
	Deleted      bool
}

// scanArgs returns pointers to all fields for sql.Scan().
// Must match postColumns order exactly.
func (r *postRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Title,
		&r.Body,
		&r.Author,
		&r.Thread,
		&r.CreatedAt,
		&r.LastEditedAt,
		&r.Deleted,
	}
}

// toDomain converts the scanned row to a domain.Post
func (r *postRow) toDomain() *domain.Post {
	return &domain.Post{
		ID:           r.ID,
		Title:        r.Title,
		Body:         r.Body,
		Author:       r.Author,
		Thread:       r.Thread,
		CreatedAt:    r.CreatedAt,
		LastEditedAt: nullToTimePtr(r.LastEditedAt),
		Deleted:      r.Deleted,
	}
}

const postColumns = `id, title, body, author, thread, created_at, last_edited_at, is_deleted`

// ============================================================================
// Reply Row Scanner
// ============================================================================

// replyRow holds all columns from a reply query for scanning
type replyRow struct {
	ID           string
	Body         string
	Author       string
	PostID       string
	CreatedAt    time.Time
	LastEditedAt sql.NullTime
	Deleted      bool
	Read         bool
	Feedback     bool
}

// scanArgs returns pointers to all fields for sql.Scan().
// Must match replyColumns order exactly.
func (r *replyRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Body,
		&r.Author,
		&r.PostID,
		&r.CreatedAt,
		&r.LastEditedAt,
		&r.Deleted,
		&r.Read,
		&r.Feedback,
	}
}

// toDomain converts the scanned row to a domain.Reply
func (r *replyRow) toDomain() *domain.Reply {
	return &domain.Reply{
		ID:           r.ID,
		Body:         r.Body,
		Author:       r.Author,
		PostID:       r.PostID,
		CreatedAt:    r.CreatedAt,
		LastEditedAt: nullToTimePtr(r.LastEditedAt),
		Deleted:      r.Deleted,
		Read:         r.Read,
		Feedback:     r.Feedback,
	}
}

const replyColumns = `id, body, author, post_id, created_at, last_edited_at, is_deleted, is_read, is_feedback`

// ============================================================================
// Request Row Scanner
// ============================================================================

// requestRow holds all columns from a request query for scanning
type requestRow struct {
	ID                string
	Title             string
	Description       string
	Category          sql.NullString
	Status            string
	CreatedBy         string
	ClosedBy          sql.NullString
	ResolutionNotes   sql.NullString
	ReopenReason      sql.NullString
	OriginalRequestID sql.NullString
	CreatedAt         time.Time
	ClosedAt          sql.NullTime
	ReopenedAt        sql.NullTime
}

// scanArgs returns pointers to all fields for sql.Scan().
// Must match requestColumns order exactly.
func (r *requestRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Title,
		&r.Description,
		&r.Category,
		&r.Status,
		&r.CreatedBy,
		&r.ClosedBy,
		&r.ResolutionNotes,
		&r.ReopenReason,
		&r.OriginalRequestID,
		&r.CreatedAt,
		&r.ClosedAt,
		&r.ReopenedAt,
	}
}

// toDomain converts the scanned row to a domain.Request
func (r *requestRow) toDomain() *domain.Request {
	return &domain.Request{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		Category:          domain.RequestCategory(nullToString(r.Category)),
		Status:            domain.RequestStatus(r.Status),
		CreatedBy:         r.CreatedBy,
		ClosedBy:          nullToString(r.ClosedBy),
		ResolutionNotes:   nullToString(r.ResolutionNotes),
		ReopenReason:      nullToString(r.ReopenReason),
		OriginalRequestID: nullToString(r.OriginalRequestID),
		CreatedAt:         r.CreatedAt,
		ClosedAt:          nullToTimePtr(r.ClosedAt),
		ReopenedAt:        nullToTimePtr(r.ReopenedAt),
	}
}

const requestColumns = `id, title, description, category, status, created_by,
	closed_by, resolution_notes, reopen_reason, original_request_id,
	created_at, closed_at, reopened_at`

// ============================================================================
// Parameter Row Scanner
// ============================================================================

// parameterRow holds all columns from a parameter query for scanning
type parameterRow struct {
	ID              string
	Name            string
	Description     string
	Active          bool
	CreatedBy       string
	CreatedAt       time.Time
	RequiredPosts   int
	RequiredReplies int
	TopicsJSON      sql.NullString
	ThreadID        string
	CategoriesJSON  string
}

// scanArgs returns pointers to all fields for sql.Scan().
// Must match parameterColumns order exactly.
func (r *parameterRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Name,
		&r.Description,
		&r.Active,
		&r.CreatedBy,
		&r.CreatedAt,
		&r.RequiredPosts,
		&r.RequiredReplies,
		&r.TopicsJSON,
		&r.ThreadID,
		&r.CategoriesJSON,
	}
}

// toDomain converts the scanned row to a domain.Parameter
func (r *parameterRow) toDomain() (*domain.Parameter, error) {
	p := &domain.Parameter{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Active:          r.Active,
		CreatedBy:       r.CreatedBy,
		CreatedAt:       r.CreatedAt,
		RequiredPosts:   r.RequiredPosts,
		RequiredReplies: r.RequiredReplies,
		ThreadID:        r.ThreadID,
	}

	if err := unmarshalJSONField(r.TopicsJSON, &p.Topics); err != nil {
		return nil, fmt.Errorf("unmarshal topics: %w", err)
	}
	if err := json.Unmarshal([]byte(r.CategoriesJSON), &p.Categories); err != nil {
		return nil, fmt.Errorf("unmarshal categories: %w", err)
	}

	return p, nil
}

const parameterColumns = `id, name, description, active, created_by, created_at,
	required_posts, required_replies, topics, thread_id, categories`
