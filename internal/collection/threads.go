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

// ThreadCollection is the in-memory thread store. Threads are hard-deleted:
// posts reference threads by title, not id, so removal never orphans them.
type ThreadCollection struct {
	mu      sync.Mutex
	store   repository.Store
	log     zerolog.Logger
	threads map[string]*domain.Thread
	ids     *idAllocator
	loaded  bool
}

// NewThreadCollection creates an empty collection over store.
func NewThreadCollection(store repository.Store, log zerolog.Logger) *ThreadCollection {
	return &ThreadCollection{
		store:   store,
		log:     log.With().Str("collection", "threads").Logger(),
		threads: make(map[string]*domain.Thread),
		ids:     newIDAllocator(domain.PrefixThread),
	}
}

func (c *ThreadCollection) ensureLoadedLocked(ctx context.Context) {
	if c.loaded {
		return
	}
	threads, err := c.store.LoadAllThreads(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to load threads from store")
		c.threads = make(map[string]*domain.Thread)
		return
	}
	c.install(threads)
}

func (c *ThreadCollection) install(threads []domain.Thread) {
	fresh := make(map[string]*domain.Thread, len(threads))
	ids := newIDAllocator(domain.PrefixThread)
	ids.next = c.ids.next
	for i := range threads {
		t := threads[i]
		fresh[t.ID] = &t
		ids.Observe(t.ID)
	}
	c.threads = fresh
	c.ids = ids
	c.loaded = true
}

// Refresh discards the cache and reloads everything from the store.
func (c *ThreadCollection) Refresh(ctx context.Context) error {
	threads, err := c.store.LoadAllThreads(ctx)
	if err != nil {
		return fmt.Errorf("refresh threads: %w", err)
	}
	c.mu.Lock()
	c.install(threads)
	c.mu.Unlock()
	return nil
}

// Create validates and inserts a new open thread, persisting it before
// reporting success.
func (c *ThreadCollection) Create(ctx context.Context, title, description, creator string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	thread := domain.NewThread(title, description, creator)
	if msg := thread.Validate(); msg != "" {
		return domain.Failure(msg)
	}
	thread.ID = c.ids.NextID()
	thread.CreatedAt = time.Now()

	c.threads[thread.ID] = thread
	if err := c.store.SaveThread(ctx, thread); err != nil {
		delete(c.threads, thread.ID)
		c.log.Error().Err(err).Str("id", thread.ID).Msg("failed to persist thread")
		return domain.Failure("Could not save the thread.")
	}
	return domain.Success(thread.ID)
}

// AddExisting registers an externally sourced record and advances the id
// allocator past its suffix.
func (c *ThreadCollection) AddExisting(thread domain.Thread) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := thread
	c.threads[t.ID] = &t
	c.ids.Observe(t.ID)
}

// GetByID returns a copy of the thread.
func (c *ThreadCollection) GetByID(ctx context.Context, id string) (domain.Thread, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	t, ok := c.threads[id]
	if !ok {
		return domain.Thread{}, false
	}
	return *t, true
}

// GetByTitle returns the first thread with the exact title.
func (c *ThreadCollection) GetByTitle(ctx context.Context, title string) (domain.Thread, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	for _, t := range c.threads {
		if t.Title == title {
			return *t, true
		}
	}
	return domain.Thread{}, false
}

// Update replaces title, description and optionally the status. Only the
// creator may edit; pass an empty status to leave it unchanged. There is no
// transition guard between Open and Closed beyond ownership.
func (c *ThreadCollection) Update(ctx context.Context, id, title, description, actor string, status domain.ThreadStatus) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	thread, ok := c.threads[id]
	if !ok {
		return domain.Failure("Thread not found.")
	}
	if thread.CreatedBy != actor {
		return domain.Failure("You can only edit your own threads.")
	}

	candidate := *thread
	candidate.Title = title
	candidate.Description = description
	if status != "" {
		candidate.Status = status
	}
	if msg := candidate.Validate(); msg != "" {
		return domain.Failure(msg)
	}

	prev := *thread
	*thread = candidate
	if err := c.store.SaveThread(ctx, thread); err != nil {
		*thread = prev
		c.log.Error().Err(err).Str("id", id).Msg("failed to persist thread update")
		return domain.Failure("Could not save the thread.")
	}
	return domain.Success(id)
}

// Delete removes the thread outright. Only the creator may delete.
func (c *ThreadCollection) Delete(ctx context.Context, id, actor string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	thread, ok := c.threads[id]
	if !ok {
		return domain.Failure("Thread not found.")
	}
	if thread.CreatedBy != actor {
		return domain.Failure("You can only delete your own threads.")
	}

	delete(c.threads, id)
	if _, err := c.store.DeleteThread(ctx, id); err != nil {
		c.threads[id] = thread
		c.log.Error().Err(err).Str("id", id).Msg("failed to delete thread from store")
		return domain.Failure("Could not delete the thread.")
	}
	return domain.Success(id)
}

// AllSorted returns every thread, open ones first, newest first within each
// status group.
func (c *ThreadCollection) AllSorted(ctx context.Context) []domain.Thread {
	return c.filtered(ctx, func(*domain.Thread) bool { return true })
}

// ByCreator returns the creator's threads, sorted like AllSorted.
func (c *ThreadCollection) ByCreator(ctx context.Context, creator string) []domain.Thread {
	return c.filtered(ctx, func(t *domain.Thread) bool { return t.CreatedBy == creator })
}

// Count returns the number of cached threads.
func (c *ThreadCollection) Count(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	return len(c.threads)
}

func (c *ThreadCollection) filtered(ctx context.Context, keep func(*domain.Thread) bool) []domain.Thread {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	var out []domain.Thread
	for _, t := range c.threads {
		if keep(t) {
			out = append(out, *t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status == domain.ThreadOpen
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
