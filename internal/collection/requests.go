package collection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"forumdesk/internal/domain"
	"forumdesk/internal/repository"
)

// RequestCollection is the in-memory support-request store. Requests move
// Open -> Closed once; reopening a closed request creates a brand-new open
// record linked back via OriginalRequestID, so every open/close cycle stays
// on record.
type RequestCollection struct {
	mu       sync.Mutex
	store    repository.Store
	log      zerolog.Logger
	requests map[string]*domain.Request
	ids      *idAllocator
	loaded   bool
}

// NewRequestCollection creates an empty collection over store.
func NewRequestCollection(store repository.Store, log zerolog.Logger) *RequestCollection {
	return &RequestCollection{
		store:    store,
		log:      log.With().Str("collection", "requests").Logger(),
		requests: make(map[string]*domain.Request),
		ids:      newIDAllocator(domain.PrefixRequest),
	}
}

func (c *RequestCollection) ensureLoadedLocked(ctx context.Context) {
	if c.loaded {
		return
	}
	requests, err := c.store.LoadAllRequests(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to load requests from store")
		c.requests = make(map[string]*domain.Request)
		return
	}
	c.install(requests)
}

func (c *RequestCollection) install(requests []domain.Request) {
	fresh := make(map[string]*domain.Request, len(requests))
	ids := newIDAllocator(domain.PrefixRequest)
	ids.next = c.ids.next
	for i := range requests {
		r := requests[i]
		fresh[r.ID] = &r
		ids.Observe(r.ID)
	}
	c.requests = fresh
	c.ids = ids
	c.loaded = true
}

// Refresh discards the cache and reloads everything from the store.
func (c *RequestCollection) Refresh(ctx context.Context) error {
	requests, err := c.store.LoadAllRequests(ctx)
	if err != nil {
		return fmt.Errorf("refresh requests: %w", err)
	}
	c.mu.Lock()
	c.install(requests)
	c.mu.Unlock()
	return nil
}

// Create validates and inserts a new open request, persisting it before
// reporting success.
func (c *RequestCollection) Create(ctx context.Context, title, description string, category domain.RequestCategory, creator string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	request := domain.NewRequest(title, description, category, creator)
	if msg := request.Validate(); msg != "" {
		return domain.Failure(msg)
	}
	request.ID = c.ids.NextID()
	request.CreatedAt = time.Now()

	c.requests[request.ID] = request
	if err := c.store.SaveRequest(ctx, request); err != nil {
		delete(c.requests, request.ID)
		c.log.Error().Err(err).Str("id", request.ID).Msg("failed to persist request")
		return domain.Failure("Could not save the request.")
	}
	return domain.Success(request.ID)
}

// AddExisting registers an externally sourced record and advances the id
// allocator past its suffix.
func (c *RequestCollection) AddExisting(request domain.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := request
	c.requests[r.ID] = &r
	c.ids.Observe(r.ID)
}

// GetByID returns a copy of the request.
func (c *RequestCollection) GetByID(ctx context.Context, id string) (domain.Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	r, ok := c.requests[id]
	if !ok {
		return domain.Request{}, false
	}
	return *r, true
}

// Close moves an open request to Closed. Resolution notes are mandatory
// and a closed request cannot be closed again.
func (c *RequestCollection) Close(ctx context.Context, id, closer, resolutionNotes string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	request, ok := c.requests[id]
	if !ok {
		return domain.Failure("Request not found.")
	}
	if request.Status == domain.RequestClosed {
		return domain.Failure("Request is already closed.")
	}
	if strings.TrimSpace(resolutionNotes) == "" {
		return domain.Failure("Resolution notes are required.")
	}
	if utf8.RuneCountInString(resolutionNotes) > domain.MaxResolutionNotesLen {
		return domain.Failure("Resolution notes cannot exceed 2000 characters.")
	}

	prev := *request
	now := time.Now()
	request.Status = domain.RequestClosed
	request.ClosedBy = closer
	request.ResolutionNotes = resolutionNotes
	request.ClosedAt = &now
	if err := c.store.SaveRequest(ctx, request); err != nil {
		*request = prev
		c.log.Error().Err(err).Str("id", id).Msg("failed to persist request close")
		return domain.Failure("Could not close the request.")
	}
	return domain.Success(id)
}

// Reopen creates a new open request chained to a closed one. Only the
// original creator may reopen, a reason is mandatory, and the closed record
// is never mutated: the new record carries the link in OriginalRequestID.
func (c *RequestCollection) Reopen(ctx context.Context, id, reopener, reason string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	original, ok := c.requests[id]
	if !ok {
		return domain.Failure("Request not found.")
	}
	if original.Status == domain.RequestOpen {
		return domain.Failure("Only closed requests can be reopened.")
	}
	if original.CreatedBy != reopener {
		return domain.Failure("Only the original requester can reopen this request.")
	}
	if strings.TrimSpace(reason) == "" {
		return domain.Failure("A reopen reason is required.")
	}
	if utf8.RuneCountInString(reason) > domain.MaxReopenReasonLen {
		return domain.Failure("Reopen reason cannot exceed 1000 characters.")
	}

	now := time.Now()
	successor := original.Reopened(reopener, reason, now)
	successor.ID = c.ids.NextID()
	successor.CreatedAt = now

	c.requests[successor.ID] = successor
	if err := c.store.SaveRequest(ctx, successor); err != nil {
		delete(c.requests, successor.ID)
		c.log.Error().Err(err).Str("id", successor.ID).Msg("failed to persist reopened request")
		return domain.Failure("Could not reopen the request.")
	}
	return domain.Success(successor.ID)
}

// AllSorted returns every request, open ones first, newest first within
// each status group.
func (c *RequestCollection) AllSorted(ctx context.Context) []domain.Request {
	return c.filtered(ctx, func(*domain.Request) bool { return true })
}

// ByCreator returns the creator's requests, sorted like AllSorted.
func (c *RequestCollection) ByCreator(ctx context.Context, creator string) []domain.Request {
	return c.filtered(ctx, func(r *domain.Request) bool { return r.CreatedBy == creator })
}

// ByStatus returns the requests in the given state, newest first.
func (c *RequestCollection) ByStatus(ctx context.Context, status domain.RequestStatus) []domain.Request {
	return c.filtered(ctx, func(r *domain.Request) bool { return r.Status == status })
}

// Count returns the number of cached requests.
func (c *RequestCollection) Count(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	return len(c.requests)
}

func (c *RequestCollection) filtered(ctx context.Context, keep func(*domain.Request) bool) []domain.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	var out []domain.Request
	for _, r := range c.requests {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status == domain.RequestOpen
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
