package collection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"forumdesk/internal/domain"
	"forumdesk/internal/repository"
)

// ReplyCollection is the in-memory reply store. Ordinary replies are public
// and sorted oldest first under their post, matching conversational order;
// feedback replies are a private channel between the reply author and the
// parent post's author.
type ReplyCollection struct {
	mu      sync.Mutex
	store   repository.Store
	log     zerolog.Logger
	replies map[string]*domain.Reply
	ids     *idAllocator
	loaded  bool
}

// NewReplyCollection creates an empty collection over store.
func NewReplyCollection(store repository.Store, log zerolog.Logger) *ReplyCollection {
	return &ReplyCollection{
		store:   store,
		log:     log.With().Str("collection", "replies").Logger(),
		replies: make(map[string]*domain.Reply),
		ids:     newIDAllocator(domain.PrefixReply),
	}
}

func (c *ReplyCollection) ensureLoadedLocked(ctx context.Context) {
	if c.loaded {
		return
	}
	replies, err := c.store.LoadAllReplies(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to load replies from store")
		c.replies = make(map[string]*domain.Reply)
		return
	}
	c.install(replies)
}

func (c *ReplyCollection) install(replies []domain.Reply) {
	fresh := make(map[string]*domain.Reply, len(replies))
	ids := newIDAllocator(domain.PrefixReply)
	ids.next = c.ids.next
	for i := range replies {
		r := replies[i]
		fresh[r.ID] = &r
		ids.Observe(r.ID)
	}
	c.replies = fresh
	c.ids = ids
	c.loaded = true
}

// Refresh discards the cache and reloads everything from the store.
func (c *ReplyCollection) Refresh(ctx context.Context) error {
	replies, err := c.store.LoadAllReplies(ctx)
	if err != nil {
		return fmt.Errorf("refresh replies: %w", err)
	}
	c.mu.Lock()
	c.install(replies)
	c.mu.Unlock()
	return nil
}

// Create validates and inserts a new reply, persisting it before reporting
// success. Replies start unread for everyone but their author.
func (c *ReplyCollection) Create(ctx context.Context, body, author, postID string, feedback bool) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	reply := domain.NewReply(body, author, postID, feedback)
	if msg := reply.Validate(); msg != "" {
		return domain.Failure(msg)
	}
	reply.ID = c.ids.NextID()
	reply.CreatedAt = time.Now()

	c.replies[reply.ID] = reply
	if err := c.store.SaveReply(ctx, reply); err != nil {
		delete(c.replies, reply.ID)
		c.log.Error().Err(err).Str("id", reply.ID).Msg("failed to persist reply")
		return domain.Failure("Could not save the reply.")
	}
	return domain.Success(reply.ID)
}

// AddExisting registers an externally sourced record and advances the id
// allocator past its suffix.
func (c *ReplyCollection) AddExisting(reply domain.Reply) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := reply
	c.replies[r.ID] = &r
	c.ids.Observe(r.ID)
}

// GetByID returns a copy of the reply.
func (c *ReplyCollection) GetByID(ctx context.Context, id string) (domain.Reply, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	r, ok := c.replies[id]
	if !ok {
		return domain.Reply{}, false
	}
	return *r, true
}

// ExistsByID reports whether a reply with the id is present.
func (c *ReplyCollection) ExistsByID(ctx context.Context, id string) bool {
	_, ok := c.GetByID(ctx, id)
	return ok
}

// Update replaces the body. Only the author may edit, and a tombstoned
// reply cannot be edited.
func (c *ReplyCollection) Update(ctx context.Context, id, body, actor string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	reply, ok := c.replies[id]
	if !ok {
		return domain.Failure("Reply not found.")
	}
	if reply.Deleted {
		return domain.Failure("You cannot edit a deleted reply.")
	}
	if reply.Author != actor {
		return domain.Failure("You can only edit your own replies.")
	}

	candidate := *reply
	candidate.Body = body
	if msg := candidate.Validate(); msg != "" {
		return domain.Failure(msg)
	}

	prev := *reply
	now := time.Now()
	reply.Body = body
	reply.LastEditedAt = &now
	if err := c.store.SaveReply(ctx, reply); err != nil {
		*reply = prev
		c.log.Error().Err(err).Str("id", id).Msg("failed to persist reply update")
		return domain.Failure("Could not save the reply.")
	}
	return domain.Success(id)
}

// Delete tombstones the reply. Only the author may delete.
func (c *ReplyCollection) Delete(ctx context.Context, id, actor string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	reply, ok := c.replies[id]
	if !ok {
		return domain.Failure("Reply not found.")
	}
	if reply.Deleted {
		return domain.Failure("Reply is already deleted.")
	}
	if reply.Author != actor {
		return domain.Failure("You can only delete your own replies.")
	}

	prev := *reply
	reply.Deleted = true
	if err := c.store.SaveReply(ctx, reply); err != nil {
		*reply = prev
		c.log.Error().Err(err).Str("id", id).Msg("failed to persist reply delete")
		return domain.Failure("Could not delete the reply.")
	}
	return domain.Success(id)
}

// RepliesForPost returns the post's ordinary (non-feedback) replies oldest
// first. Tombstoned replies are included so they can render annotated as
// deleted.
func (c *ReplyCollection) RepliesForPost(ctx context.Context, postID string) []domain.Reply {
	return c.filtered(ctx, oldestFirst, func(r *domain.Reply) bool {
		return r.PostID == postID && !r.Feedback
	})
}

// FeedbackForPost returns the post's feedback replies visible to viewer:
// the feedback channel is private to the reply author and the post author.
func (c *ReplyCollection) FeedbackForPost(ctx context.Context, postID, viewer, postAuthor string) []domain.Reply {
	return c.filtered(ctx, oldestFirst, func(r *domain.Reply) bool {
		return r.PostID == postID && r.Feedback && r.VisibleTo(viewer, postAuthor)
	})
}

// AllOfAuthor returns the author's replies newest first.
func (c *ReplyCollection) AllOfAuthor(ctx context.Context, author string) []domain.Reply {
	return c.filtered(ctx, newestFirst, func(r *domain.Reply) bool {
		return r.Author == author
	})
}

// MarkRead marks the reply read. The operation is idempotent, and a
// viewer's own reply is never unread to them, so marking it is a no-op
// success rather than an error.
func (c *ReplyCollection) MarkRead(ctx context.Context, id, viewer string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	reply, ok := c.replies[id]
	if !ok {
		return domain.Failure("Reply not found.")
	}
	if reply.Read || reply.Author == viewer {
		return domain.Success(id)
	}

	prev := *reply
	reply.Read = true
	if err := c.store.SaveReply(ctx, reply); err != nil {
		*reply = prev
		c.log.Error().Err(err).Str("id", id).Msg("failed to persist read flag")
		return domain.Failure("Could not update the reply.")
	}
	return domain.Success(id)
}

// UnreadCount counts the post's unread replies from the viewer's side.
// The viewer's own replies are excluded: you cannot be unread to yourself.
func (c *ReplyCollection) UnreadCount(ctx context.Context, postID, viewer string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	count := 0
	for _, r := range c.replies {
		if r.PostID == postID && !r.Deleted && !r.Read && r.Author != viewer {
			count++
		}
	}
	return count
}

// Count returns the number of cached replies, tombstones included.
func (c *ReplyCollection) Count(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	return len(c.replies)
}

type replyOrder int

const (
	oldestFirst replyOrder = iota
	newestFirst
)

func (c *ReplyCollection) filtered(ctx context.Context, order replyOrder, keep func(*domain.Reply) bool) []domain.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	var out []domain.Reply
	for _, r := range c.replies {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == oldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
