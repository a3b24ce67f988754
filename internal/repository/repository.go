package repository

import (
	"context"

	"forumdesk/internal/domain"
)

// Store is the persistent record behind the in-memory collections. Each
// Save is an idempotent upsert keyed on the entity id; each Delete reports
// whether a row existed. LoadAll calls are used by the cache-sync layer for
// full-collection (re)loads.
type Store interface {
	LoadAllPosts(ctx context.Context) ([]domain.Post, error)
	SavePost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, id string) (bool, error)

	LoadAllReplies(ctx context.Context) ([]domain.Reply, error)
	SaveReply(ctx context.Context, reply *domain.Reply) error
	DeleteReply(ctx context.Context, id string) (bool, error)

	LoadAllThreads(ctx context.Context) ([]domain.Thread, error)
	SaveThread(ctx context.Context, thread *domain.Thread) error
	DeleteThread(ctx context.Context, id string) (bool, error)

	LoadAllRequests(ctx context.Context) ([]domain.Request, error)
	SaveRequest(ctx context.Context, request *domain.Request) error
	DeleteRequest(ctx context.Context, id string) (bool, error)

	LoadAllParameters(ctx context.Context) ([]domain.Parameter, error)
	SaveParameter(ctx context.Context, parameter *domain.Parameter) error
	DeleteParameter(ctx context.Context, id string) (bool, error)

	// Close releases resources
	Close() error
}
