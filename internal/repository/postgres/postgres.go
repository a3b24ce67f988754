package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"forumdesk/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	author TEXT NOT NULL,
	thread TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	last_edited_at TIMESTAMPTZ,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS replies (
	id TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	author TEXT NOT NULL,
	post_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	last_edited_at TIMESTAMPTZ,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	is_feedback BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS threads (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL,
	created_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS requests (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	category TEXT,
	status TEXT NOT NULL,
	created_by TEXT NOT NULL,
	closed_by TEXT,
	resolution_notes TEXT,
	reopen_reason TEXT,
	original_request_id TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	closed_at TIMESTAMPTZ,
	reopened_at TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS parameters (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	active BOOLEAN NOT NULL DEFAULT FALSE,
	created_by TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	required_posts INTEGER NOT NULL DEFAULT 0,
	required_replies INTEGER NOT NULL DEFAULT 0,
	topics TEXT[] NOT NULL DEFAULT '{}',
	thread_id TEXT NOT NULL,
	categories JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_thread ON posts(thread);
CREATE INDEX IF NOT EXISTS idx_replies_post ON replies(post_id);
CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);
CREATE INDEX IF NOT EXISTS idx_parameters_thread ON parameters(thread_id);
`

// Store implements repository.Store over a PostgreSQL pool. It is the
// shared-database alternative to the embedded sqlite backend.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database, verifies the connection and ensures the
// schema exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	store := &Store{pool: pool}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// --- Posts ---

func (s *Store) LoadAllPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, body, author, thread, created_at, last_edited_at, is_deleted FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Author, &p.Thread, &p.CreatedAt, &p.LastEditedAt, &p.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) SavePost(ctx context.Context, post *domain.Post) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO posts (id, title, body, author, thread, created_at, last_edited_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			author = excluded.author,
			thread = excluded.thread,
			last_edited_at = excluded.last_edited_at,
			is_deleted = excluded.is_deleted
	`, post.ID, post.Title, post.Body, post.Author, post.Thread,
		post.CreatedAt, post.LastEditedAt, post.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "posts", id)
}

// --- Replies ---

func (s *Store) LoadAllReplies(ctx context.Context) ([]domain.Reply, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, body, author, post_id, created_at, last_edited_at, is_deleted, is_read, is_feedback FROM replies`)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	var replies []domain.Reply
	for rows.Next() {
		var r domain.Reply
		if err := rows.Scan(&r.ID, &r.Body, &r.Author, &r.PostID, &r.CreatedAt, &r.LastEditedAt, &r.Deleted, &r.Read, &r.Feedback); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

func (s *Store) SaveReply(ctx context.Context, reply *domain.Reply) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replies (id, body, author, post_id, created_at, last_edited_at, is_deleted, is_read, is_feedback)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			body = excluded.body,
			author = excluded.author,
			post_id = excluded.post_id,
			last_edited_at = excluded.last_edited_at,
			is_deleted = excluded.is_deleted,
			is_read = excluded.is_read,
			is_feedback = excluded.is_feedback
	`, reply.ID, reply.Body, reply.Author, reply.PostID, reply.CreatedAt,
		reply.LastEditedAt, reply.Deleted, reply.Read, reply.Feedback)
	if err != nil {
		return fmt.Errorf("failed to upsert reply: %w", err)
	}
	return nil
}

func (s *Store) DeleteReply(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "replies", id)
}

// --- Threads ---

func (s *Store) LoadAllThreads(ctx context.Context) ([]domain.Thread, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, title, description, status, created_by, created_at FROM threads`)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		var t domain.Thread
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

func (s *Store) SaveThread(ctx context.Context, thread *domain.Thread) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO threads (id, title, description, status, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			status = excluded.status
	`, thread.ID, thread.Title, thread.Description, string(thread.Status),
		thread.CreatedBy, thread.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert thread: %w", err)
	}
	return nil
}

func (s *Store) DeleteThread(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "threads", id)
}

// --- Requests ---

func (s *Store) LoadAllRequests(ctx context.Context) ([]domain.Request, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description, category, status, created_by, closed_by,
			resolution_notes, reopen_reason, original_request_id,
			created_at, closed_at, reopened_at
		FROM requests`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.Request
	for rows.Next() {
		var r domain.Request
		var category, closedBy, notes, reason, originalID *string
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &category, &r.Status,
			&r.CreatedBy, &closedBy, &notes, &reason, &originalID,
			&r.CreatedAt, &r.ClosedAt, &r.ReopenedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		if category != nil {
			r.Category = domain.RequestCategory(*category)
		}
		if closedBy != nil {
			r.ClosedBy = *closedBy
		}
		if notes != nil {
			r.ResolutionNotes = *notes
		}
		if reason != nil {
			r.ReopenReason = *reason
		}
		if originalID != nil {
			r.OriginalRequestID = *originalID
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *Store) SaveRequest(ctx context.Context, request *domain.Request) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO requests (id, title, description, category, status, created_by,
			closed_by, resolution_notes, reopen_reason, original_request_id,
			created_at, closed_at, reopened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			status = excluded.status,
			closed_by = excluded.closed_by,
			resolution_notes = excluded.resolution_notes,
			reopen_reason = excluded.reopen_reason,
			original_request_id = excluded.original_request_id,
			closed_at = excluded.closed_at,
			reopened_at = excluded.reopened_at
	`, request.ID, request.Title, request.Description,
		nullIfEmpty(string(request.Category)), string(request.Status),
		request.CreatedBy, nullIfEmpty(request.ClosedBy),
		nullIfEmpty(request.ResolutionNotes), nullIfEmpty(request.ReopenReason),
		nullIfEmpty(request.OriginalRequestID), request.CreatedAt,
		request.ClosedAt, request.ReopenedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert request: %w", err)
	}
	return nil
}

func (s *Store) DeleteRequest(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "requests", id)
}

// --- Parameters ---

func (s *Store) LoadAllParameters(ctx context.Context) ([]domain.Parameter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, active, created_by, created_at,
			required_posts, required_replies, topics, thread_id, categories
		FROM parameters`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	var parameters []domain.Parameter
	for rows.Next() {
		var p domain.Parameter
		var categoriesJSON []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Active, &p.CreatedBy,
			&p.CreatedAt, &p.RequiredPosts, &p.RequiredReplies, &p.Topics,
			&p.ThreadID, &categoriesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		if err := json.Unmarshal(categoriesJSON, &p.Categories); err != nil {
			return nil, fmt.Errorf("unmarshal categories: %w", err)
		}
		parameters = append(parameters, p)
	}
	return parameters, rows.Err()
}

func (s *Store) SaveParameter(ctx context.Context, parameter *domain.Parameter) error {
	categoriesJSON, err := json.Marshal(parameter.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	topics := parameter.Topics
	if topics == nil {
		topics = []string{}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO parameters (id, name, description, active, created_by, created_at,
			required_posts, required_replies, topics, thread_id, categories)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			active = excluded.active,
			required_posts = excluded.required_posts,
			required_replies = excluded.required_replies,
			topics = excluded.topics,
			thread_id = excluded.thread_id,
			categories = excluded.categories
	`, parameter.ID, parameter.Name, parameter.Description, parameter.Active,
		parameter.CreatedBy, parameter.CreatedAt, parameter.RequiredPosts,
		parameter.RequiredReplies, topics, parameter.ThreadID, categoriesJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert parameter: %w", err)
	}
	return nil
}

func (s *Store) DeleteParameter(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "parameters", id)
}

// deleteByID removes one row by primary key; the table name is always one of
// the fixed schema names.
func (s *Store) deleteByID(ctx context.Context, table, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// nullIfEmpty maps "" to SQL NULL for optional text columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
