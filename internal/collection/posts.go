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

// MaxSearchKeywordLen bounds search input; longer keywords match nothing.
const MaxSearchKeywordLen = 100

// AllThreadsFilter is the thread filter value that matches every thread.
const AllThreadsFilter = "All"

// PostCollection is the in-memory post store.
type PostCollection struct {
	mu     sync.Mutex
	store  repository.Store
	log    zerolog.Logger
	posts  map[string]*domain.Post
	ids    *idAllocator
	loaded bool
}

// NewPostCollection creates an empty collection over store. Nothing is
// loaded until the first operation touches it.
func NewPostCollection(store repository.Store, log zerolog.Logger) *PostCollection {
	return &PostCollection{
		store: store,
		log:   log.With().Str("collection", "posts").Logger(),
		posts: make(map[string]*domain.Post),
		ids:   newIDAllocator(domain.PrefixPost),
	}
}

// ensureLoadedLocked lazily populates the collection from the store. Called
// with c.mu held. A failed load degrades to an empty collection, is logged,
// and leaves loaded false so the next operation retries.
func (c *PostCollection) ensureLoadedLocked(ctx context.Context) {
	if c.loaded {
		return
	}
	posts, err := c.store.LoadAllPosts(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to load posts from store")
		c.posts = make(map[string]*domain.Post)
		return
	}
	c.install(posts)
}

// install replaces the live map and reseeds the allocator in one step. The
// counter never moves backwards across installs.
func (c *PostCollection) install(posts []domain.Post) {
	fresh := make(map[string]*domain.Post, len(posts))
	ids := newIDAllocator(domain.PrefixPost)
	ids.next = c.ids.next
	for i := range posts {
		p := posts[i]
		fresh[p.ID] = &p
		ids.Observe(p.ID)
	}
	c.posts = fresh
	c.ids = ids
	c.loaded = true
}

// Refresh discards the cache and reloads everything from the store. The
// replacement map is built off to the side and swapped in one step.
func (c *PostCollection) Refresh(ctx context.Context) error {
	posts, err := c.store.LoadAllPosts(ctx)
	if err != nil {
		return fmt.Errorf("refresh posts: %w", err)
	}
	c.mu.Lock()
	c.install(posts)
	c.mu.Unlock()
	return nil
}

// Create validates and inserts a new post, persisting it before reporting
// success. A blank thread falls back to the default thread.
func (c *PostCollection) Create(ctx context.Context, title, body, author, thread string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	post := domain.NewPost(title, body, author, thread)
	if msg := post.Validate(); msg != "" {
		return domain.Failure(msg)
	}
	post.ID = c.ids.NextID()
	post.CreatedAt = time.Now()

	c.posts[post.ID] = post
	if err := c.store.SavePost(ctx, post); err != nil {
		delete(c.posts, post.ID)
		c.log.Error().Err(err).Str("id", post.ID).Msg("failed to persist post")
		return domain.Failure("Could not save the post.")
	}
	return domain.Success(post.ID)
}

// AddExisting registers an externally sourced record and advances the id
// allocator past its suffix.
func (c *PostCollection) AddExisting(post domain.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := post
	c.posts[p.ID] = &p
	c.ids.Observe(p.ID)
}

// GetByID returns a copy of the post, tombstoned or not.
func (c *PostCollection) GetByID(ctx context.Context, id string) (domain.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	p, ok := c.posts[id]
	if !ok {
		return domain.Post{}, false
	}
	return *p, true
}

// ExistsByID reports whether a post with the id is present.
func (c *PostCollection) ExistsByID(ctx context.Context, id string) bool {
	_, ok := c.GetByID(ctx, id)
	return ok
}

// Update replaces the title and body. Only the author may edit, and a
// tombstoned post cannot be edited. The candidate is validated with the
// same rule as creation before anything is committed.
func (c *PostCollection) Update(ctx context.Context, id, title, body, actor string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	post, ok := c.posts[id]
	if !ok {
		return domain.Failure("Post not found.")
	}
	if post.Deleted {
		return domain.Failure("You cannot edit a deleted post.")
	}
	if post.Author != actor {
		return domain.Failure("You can only edit your own posts.")
	}

	candidate := *post
	candidate.Title = title
	candidate.Body = body
	if msg := candidate.Validate(); msg != "" {
		return domain.Failure(msg)
	}

	prev := *post
	now := time.Now()
	post.Title = title
	post.Body = body
	post.LastEditedAt = &now
	if err := c.store.SavePost(ctx, post); err != nil {
		*post = prev
		c.log.Error().Err(err).Str("id", id).Msg("failed to persist post update")
		return domain.Failure("Could not save the post.")
	}
	return domain.Success(id)
}

// Delete tombstones the post; the record stays so replies keep a referent.
// Only the author may delete.
func (c *PostCollection) Delete(ctx context.Context, id, actor string) domain.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	post, ok := c.posts[id]
	if !ok {
		return domain.Failure("Post not found.")
	}
	if post.Deleted {
		return domain.Failure("Post is already deleted.")
	}
	if post.Author != actor {
		return domain.Failure("You can only delete your own posts.")
	}

	prev := *post
	post.Deleted = true
	if err := c.store.SavePost(ctx, post); err != nil {
		*post = prev
		c.log.Error().Err(err).Str("id", id).Msg("failed to persist post delete")
		return domain.Failure("Could not delete the post.")
	}
	return domain.Success(id)
}

// AllOfAuthor returns the author's posts newest first, tombstones included.
func (c *PostCollection) AllOfAuthor(ctx context.Context, author string) []domain.Post {
	return c.filtered(ctx, func(p *domain.Post) bool { return p.Author == author })
}

// AllOfThread returns the posts grouped under the thread name newest first.
// Tombstoned posts are included so they can render annotated as deleted.
func (c *PostCollection) AllOfThread(ctx context.Context, thread string) []domain.Post {
	return c.filtered(ctx, func(p *domain.Post) bool { return p.Thread == thread })
}

// Search returns non-deleted posts whose title or body contains the keyword,
// case-insensitively, newest first. A blank keyword matches nothing rather
// than everything, and an over-length keyword also matches nothing; both are
// deliberate guards. The thread filter narrows the result unless it is empty
// or AllThreadsFilter.
func (c *PostCollection) Search(ctx context.Context, keyword, thread string) []domain.Post {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || utf8.RuneCountInString(keyword) > MaxSearchKeywordLen {
		return nil
	}
	needle := strings.ToLower(keyword)
	return c.filtered(ctx, func(p *domain.Post) bool {
		if p.Deleted {
			return false
		}
		if thread != "" && thread != AllThreadsFilter && p.Thread != thread {
			return false
		}
		return strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Body), needle)
	})
}

// Count returns the number of cached posts, tombstones included.
func (c *PostCollection) Count(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)
	return len(c.posts)
}

func (c *PostCollection) filtered(ctx context.Context, keep func(*domain.Post) bool) []domain.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureLoadedLocked(ctx)

	var out []domain.Post
	for _, p := range c.posts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
