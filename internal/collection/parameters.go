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

// ParameterCollection is the in-memory grading-parameter store. Parameters
// own their categories outright; an update replaces the record wholesale, so
// a single invalid category rejects the whole edit and nothing is written.
type ParameterCollection struct {
	mu         sync.Mutex
	store      repository.Store
	log        zerolog.Logger
	parameters map[string]*domain.Parameter
	ids        *idAllocator
	loaded     bool
}

// NewParameterCollection creates an empty collection over store.
func NewParameterCollection(store repository.Store, log zerolog.Logger) *ParameterCollection {
	return &ParameterCollection{
		store:      store,
		log:        log.With().Str("collection", "parameters").Logger(),
		parameters: make(map[string]*domain.Parameter),
		ids:        newIDAllocator(domain.PrefixParameter),
	}
}

func (c *ParameterCollection) ensureLoadedLocked(ctx context.Context) {
	if c.loaded {
		return
	}
	parameters, err := c.store.LoadAllParameters(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to load parameters from store")
		c.parameters = make(map[string]*domain.Parameter)
		return
	}
	c.install(parameters)
}

func (c *ParameterCollection) install(parameters []domain.Parameter) {
	fresh := make(map[string]*domain.Parameter, len(parameters))
	ids := newIDAllocator(domain.PrefixParameter)
	ids.next = c.ids.next
	for i := range parameters {
		p := parameters[i]
		fresh[p.ID] = &p
		ids.Observe(p.ID)
	}
	c.parameters = fresh
	c.ids = ids
	c.loaded = true
}

// Refresh discards the cache and reloads everything from the store.
func (c *ParameterCollection) Refresh(ctx context.Context) error {
	parameters, err := c.store.LoadAllParameters(ctx)
	if err != nil {
		return fmt.Errorf("refresh parameters: %w", err)
	}
	c.mu.Lock()
	c.install(parameters)
	c.mu.Unlock()
	return nil
}

// Create validates and inserts a new parameter from the draft, persisting it
// before reporting success. The draft's ID and CreatedAt are overwritten.
func (c *ParameterCollection) Create(ctx context.Context, draft domain.Parameter) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	if msg := draft.Validate(); msg != "" {
		return domain.Failure(msg)
	}
	parameter := draft
	parameter.ID = c.ids.NextID()
	parameter.CreatedAt = time.Now()

	c.parameters[parameter.ID] = &parameter
	if err := c.store.SaveParameter(ctx, &parameter); err != nil {
		delete(c.parameters, parameter.ID)
		c.log.Error().Err(err).Str("id", parameter.ID).Msg("failed to persist parameter")
		return domain.Failure("Could not save the parameter.")
	}
	return domain.Success(parameter.ID)
}

// AddExisting registers an externally sourced record and advances the id
// allocator past its suffix.
func (c *ParameterCollection) AddExisting(parameter domain.Parameter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := parameter
	c.parameters[p.ID] = &p
	c.ids.Observe(p.ID)
}

// GetByID returns a copy of the parameter.
func (c *ParameterCollection) GetByID(ctx context.Context, id string) (domain.Parameter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	p, ok := c.parameters[id]
	if !ok {
		return domain.Parameter{}, false
	}
	return *p, true
}

// Update replaces the parameter with the draft, keeping the stored identity:
// ID, CreatedBy and CreatedAt survive the edit. Only the creator may edit,
// and a draft with any invalid field or category leaves the record untouched.
func (c *ParameterCollection) Update(ctx context.Context, id string, draft domain.Parameter, actor string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	parameter, ok := c.parameters[id]
	if !ok {
		return domain.Failure("Parameter not found.")
	}
	if parameter.CreatedBy != actor {
		return domain.Failure("You can only edit your own parameters.")
	}

	candidate := draft
	candidate.ID = parameter.ID
	candidate.CreatedBy = parameter.CreatedBy
	candidate.CreatedAt = parameter.CreatedAt
	if msg := candidate.Validate(); msg != "" {
		return domain.Failure(msg)
	}

	prev := *parameter
	*parameter = candidate
	if err := c.store.SaveParameter(ctx, parameter); err != nil {
		*parameter = prev
		c.log.Error().Err(err).Str("id", id).Msg("failed to persist parameter update")
		return domain.Failure("Could not save the parameter.")
	}
	return domain.Success(id)
}

// Delete removes the parameter outright. Only the creator may delete.
func (c *ParameterCollection) Delete(ctx context.Context, id, actor string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	parameter, ok := c.parameters[id]
	if !ok {
		return domain.Failure("Parameter not found.")
	}
	if parameter.CreatedBy != actor {
		return domain.Failure("You can only delete your own parameters.")
	}

	delete(c.parameters, id)
	if _, err := c.store.DeleteParameter(ctx, id); err != nil {
		c.parameters[id] = parameter
		c.log.Error().Err(err).Str("id", id).Msg("failed to delete parameter from store")
		return domain.Failure("Could not delete the parameter.")
	}
	return domain.Success(id)
}

// DeleteSelected removes every listed parameter the actor owns and reports
// how many were removed. Unknown ids and other creators' parameters are
// skipped; a store failure stops the sweep and restores the current record.
func (c *ParameterCollection) DeleteSelected(ctx context.Context, ids []string, actor string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	removed := 0
	for _, id := range ids {
		parameter, ok := c.parameters[id]
		if !ok || parameter.CreatedBy != actor {
			continue
		}
		delete(c.parameters, id)
		if _, err := c.store.DeleteParameter(ctx, id); err != nil {
			c.parameters[id] = parameter
			c.log.Error().Err(err).Str("id", id).Msg("failed to delete parameter from store")
			return removed, fmt.Errorf("delete parameter %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}

// DeleteAllByCreator removes every parameter the creator owns and reports
// how many were removed.
func (c *ParameterCollection) DeleteAllByCreator(ctx context.Context, creator string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	var ids []string
	for id, p := range c.parameters {
		if p.CreatedBy == creator {
			ids = append(ids, id)
		}
	}

	removed := 0
	for _, id := range ids {
		parameter := c.parameters[id]
		delete(c.parameters, id)
		if _, err := c.store.DeleteParameter(ctx, id); err != nil {
			c.parameters[id] = parameter
			c.log.Error().Err(err).Str("id", id).Msg("failed to delete parameter from store")
			return removed, fmt.Errorf("delete parameter %s: %w", id, err)
		}
		removed++
	}
	return removed, nil
}

// AllSorted returns every parameter newest first.
func (c *ParameterCollection) AllSorted(ctx context.Context) []domain.Parameter {
	return c.filtered(ctx, func(*domain.Parameter) bool { return true })
}

// AllActive returns the active parameters newest first.
func (c *ParameterCollection) AllActive(ctx context.Context) []domain.Parameter {
	return c.filtered(ctx, func(p *domain.Parameter) bool { return p.Active })
}

// ByCreator returns the creator's parameters newest first.
func (c *ParameterCollection) ByCreator(ctx context.Context, creator string) []domain.Parameter {
	return c.filtered(ctx, func(p *domain.Parameter) bool { return p.CreatedBy == creator })
}

// ByThread returns the parameters bound to the thread newest first.
func (c *ParameterCollection) ByThread(ctx context.Context, threadID string) []domain.Parameter {
	return c.filtered(ctx, func(p *domain.Parameter) bool { return p.ThreadID == threadID })
}

// Count returns the number of cached parameters.
func (c *ParameterCollection) Count(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	return len(c.parameters)
}

func (c *ParameterCollection) filtered(ctx context.Context, keep func(*domain.Parameter) bool) []domain.Parameter {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	var out []domain.Parameter
	for _, p := range c.parameters {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
