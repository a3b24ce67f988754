package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"forumdesk/internal/domain"

	_ "modernc.org/sqlite"
)

// Store implements repository.Store using embedded SQLite
type Store struct {
	db *sql.DB
}

// New opens (and if necessary creates) the database at dbPath. Use
// ":memory:" for an ephemeral store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		author TEXT NOT NULL,
		thread TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_edited_at DATETIME,
		is_deleted INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS replies (
		id TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		author TEXT NOT NULL,
		post_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_edited_at DATETIME,
		is_deleted INTEGER NOT NULL DEFAULT 0,
		is_read INTEGER NOT NULL DEFAULT 0,
		is_feedback INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS threads (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL,
		created_by TEXT NOT NULL,
		created_at DATETIME NOT NULL
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
		created_at DATETIME NOT NULL,
		closed_at DATETIME,
		reopened_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS parameters (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 0,
		created_by TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		required_posts INTEGER NOT NULL DEFAULT 0,
		required_replies INTEGER NOT NULL DEFAULT 0,
		topics JSON,
		thread_id TEXT NOT NULL,
		categories JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_thread ON posts(thread);
	CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author);
	CREATE INDEX IF NOT EXISTS idx_replies_post ON replies(post_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status);
	CREATE INDEX IF NOT EXISTS idx_parameters_thread ON parameters(thread_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// ============================================================================
// Posts
// ============================================================================

// LoadAllPosts returns every persisted post, tombstoned ones included.
func (s *Store) LoadAllPosts(ctx context.Context) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var r postRow
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *r.toDomain())
	}
	return posts, rows.Err()
}

// SavePost upserts the post by id.
func (s *Store) SavePost(ctx context.Context, post *domain.Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, body, author, thread, created_at, last_edited_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			author = excluded.author,
			thread = excluded.thread,
			last_edited_at = excluded.last_edited_at,
			is_deleted = excluded.is_deleted
	`, post.ID, post.Title, post.Body, post.Author, post.Thread,
		post.CreatedAt, timePtrToNull(post.LastEditedAt), post.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}
	return nil
}

// DeletePost removes the row outright. Collections normally tombstone posts
// instead; this exists for administrative cleanup and reports whether a row
// was removed.
func (s *Store) DeletePost(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "posts", id)
}

// ============================================================================
// Replies
// ============================================================================

// LoadAllReplies returns every persisted reply.
func (s *Store) LoadAllReplies(ctx context.Context) ([]domain.Reply, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+replyColumns+` FROM replies`)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	defer rows.Close()

	var replies []domain.Reply
	for rows.Next() {
		var r replyRow
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		replies = append(replies, *r.toDomain())
	}
	return replies, rows.Err()
}

// SaveReply upserts the reply by id.
func (s *Store) SaveReply(ctx context.Context, reply *domain.Reply) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO replies (id, body, author, post_id, created_at, last_edited_at, is_deleted, is_read, is_feedback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			body = excluded.body,
			author = excluded.author,
			post_id = excluded.post_id,
			last_edited_at = excluded.last_edited_at,
			is_deleted = excluded.is_deleted,
			is_read = excluded.is_read,
			is_feedback = excluded.is_feedback
	`, reply.ID, reply.Body, reply.Author, reply.PostID,
		reply.CreatedAt, timePtrToNull(reply.LastEditedAt),
		reply.Deleted, reply.Read, reply.Feedback)
	if err != nil {
		return fmt.Errorf("failed to upsert reply: %w", err)
	}
	return nil
}

// DeleteReply removes the row outright and reports whether one existed.
func (s *Store) DeleteReply(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "replies", id)
}

// ============================================================================
// Threads
// ============================================================================

// LoadAllThreads returns every persisted thread.
func (s *Store) LoadAllThreads(ctx context.Context) ([]domain.Thread, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, status, created_by, created_at FROM threads`)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var threads []domain.Thread
	for rows.Next() {
		var t domain.Thread
		var status string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &status, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		t.Status = domain.ThreadStatus(status)
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// SaveThread upserts the thread by id.
func (s *Store) SaveThread(ctx context.Context, thread *domain.Thread) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO threads (id, title, description, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
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

// DeleteThread removes the thread row and reports whether one existed.
func (s *Store) DeleteThread(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "threads", id)
}

// ============================================================================
// Requests
// ============================================================================

// LoadAllRequests returns every persisted request, closed ones included.
func (s *Store) LoadAllRequests(ctx context.Context) ([]domain.Request, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+requestColumns+` FROM requests`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.Request
	for rows.Next() {
		var r requestRow
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, *r.toDomain())
	}
	return requests, rows.Err()
}

// SaveRequest upserts the request by id.
func (s *Store) SaveRequest(ctx context.Context, request *domain.Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (id, title, description, category, status, created_by,
			closed_by, resolution_notes, reopen_reason, original_request_id,
			created_at, closed_at, reopened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
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
		stringToNull(string(request.Category)), string(request.Status),
		request.CreatedBy, stringToNull(request.ClosedBy),
		stringToNull(request.ResolutionNotes), stringToNull(request.ReopenReason),
		stringToNull(request.OriginalRequestID), request.CreatedAt,
		timePtrToNull(request.ClosedAt), timePtrToNull(request.ReopenedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert request: %w", err)
	}
	return nil
}

// DeleteRequest removes the request row and reports whether one existed.
func (s *Store) DeleteRequest(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "requests", id)
}

// ============================================================================
// Parameters
// ============================================================================

// LoadAllParameters returns every persisted grading parameter.
func (s *Store) LoadAllParameters(ctx context.Context) ([]domain.Parameter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+parameterColumns+` FROM parameters`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	var parameters []domain.Parameter
	for rows.Next() {
		var r parameterRow
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, *p)
	}
	return parameters, rows.Err()
}

// SaveParameter upserts the parameter by id. Topics and categories travel
// as JSON columns; category order is preserved.
func (s *Store) SaveParameter(ctx context.Context, parameter *domain.Parameter) error {
	topicsJSON, err := marshalToNull(parameter.Topics)
	if err != nil {
		return fmt.Errorf("failed to marshal topics: %w", err)
	}
	categoriesJSON, err := marshalJSON(parameter.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO parameters (id, name, description, active, created_by, created_at,
			required_posts, required_replies, topics, thread_id, categories)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
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
		parameter.RequiredReplies, topicsJSON, parameter.ThreadID, categoriesJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert parameter: %w", err)
	}
	return nil
}

// DeleteParameter removes the parameter row and reports whether one existed.
func (s *Store) DeleteParameter(ctx context.Context, id string) (bool, error) {
	return s.deleteByID(ctx, "parameters", id)
}

// deleteByID removes one row by primary key and reports whether a row was
// actually removed. The table name is always one of the fixed schema names.
func (s *Store) deleteByID(ctx context.Context, table, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
