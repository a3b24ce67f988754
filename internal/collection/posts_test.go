package collection

import (
	"context"
	"strings"
	"testing"
	"time"

	"forumdesk/internal/domain"
)

func newTestPosts(t *testing.T) *PostCollection {
	t.Helper()
	return NewPostCollection(newTestStore(t), testLogger())
}

func TestPostCreate(t *testing.T) {
	ctx := context.Background()
	posts := newTestPosts(t)

	result := posts.Create(ctx, "First light", "Hello world", "ada", "General")
	assertSuccess(t, result)
	assertEqual(t, "POST_1", result.ID)
	assertEqual(t, "POST_1", result.String())

	post, ok := posts.GetByID(ctx, "POST_1")
	assertEqual(t, true, ok)
	assertEqual(t, "First light", post.Title)
	assertEqual(t, "ada", post.Author)
	assertEqual(t, false, post.Deleted)
}

func TestPostCreateDefaultsThread(t *testing.T) {
	ctx := context.Background()
	posts := newTestPosts(t)

	result := posts.Create(ctx, "No thread", "Body", "ada", "  ")
	assertSuccess(t, result)

	post, _ := posts.GetByID(ctx, result.ID)
	assertEqual(t, domain.DefaultThread, post.Thread)
}

func TestPostCreateValidation(t *testing.T) {
	ctx := context.Background()
	posts := newTestPosts(t)

	tests := []struct {
		name     string
		title    string
		body     string
		author   string
		expected string
	}{
		{"missing title", "", "body", "ada", "Title is required."},
		{"missing body", "title", "   ", "ada", "Body is required."},
		{"missing author", "title", "body", "", "Author is required."},
		{"title too long", strings.Repeat("x", 101), "body", "ada", "Title cannot exceed 100 characters."},
		{"required beats length", "", strings.Repeat("x", 5001), "ada", "Title is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := posts.Create(ctx, tt.title, tt.body, tt.author, "General")
			assertFailure(t, result, tt.expected)
		})
	}
	assertEqual(t, 0, posts.Count(ctx))
}

func TestPostUpdateOwnership(t *testing.T) {
	ctx := context.Background()
	posts := newTestPosts(t)

	created := posts.Create(ctx, "Original", "Original body", "ada", "General")
	assertSuccess(t, created)

	result := posts.Update(ctx, created.ID, "Hijacked", "Hijacked body", "mallory")
	assertFailure(t, result, "You can only edit your own posts.")

	post, _ := posts.GetByID(ctx, created.ID)
	assertEqual(t, "Original", post.Title)
	assertEqual(t, "Original body", post.Body)
	if post.LastEditedAt != nil {
		t.Fatalf("expected no edit timestamp, got %v", post.LastEditedAt)
	}
}

func TestPostUpdate(t *testing.T) {
	ctx := context.Background()
	posts := newTestPosts(t)

	created := posts.Create(ctx, "Original", "Original body", "ada", "General")
	result := posts.Update(ctx, created.ID, "Edited", "Edited body", "ada")
	assertSuccess(t, result)

	post, _ := posts.GetByID(ctx, created.ID)
	assertEqual(t, "Edited", post.Title)
	if post.LastEditedAt == nil {
		t.Fatal("expected edit timestamp to be set")
	}

	assertFailure(t, posts.Update(ctx, "POST_99", "x", "y", "ada"), "Post not found.")
}

func TestPostSoftDelete(t *testing.T) {
	ctx := context.Background()
	posts := newTestPosts(t)

	created := posts.Create(ctx, "Doomed", "Body", "ada", "General")
	assertFailure(t, posts.Delete(ctx, created.ID, "mallory"), "You can only delete your own posts.")
	assertSuccess(t, posts.Delete(ctx, created.ID, "ada"))

	// The tombstone stays addressable so replies keep a referent.
	post, ok := posts.GetByID(ctx, created.ID)
	assertEqual(t, true, ok)
	assertEqual(t, true, post.Deleted)

	assertFailure(t, posts.Delete(ctx, created.ID, "ada"), "Post is already deleted.")
	assertFailure(t, posts.Update(ctx, created.ID, "x", "y", "ada"), "You cannot edit a deleted post.")

	inThread := posts.AllOfThread(ctx, "General")
	assertEqual(t, 1, len(inThread))
	assertEqual(t, 0, len(posts.Search(ctx, "Doomed", "")))
}

func TestPostSearch(t *testing.T) {
	ctx := context.Background()
	posts := newTestPosts(t)

	assertSuccess(t, posts.Create(ctx, "Hello World", "greetings", "ada", "General"))
	assertSuccess(t, posts.Create(ctx, "Other topic", "nothing here", "bob", "General"))
	assertSuccess(t, posts.Create(ctx, "Help wanted", "say hello back", "bob", "Support"))

	tests := []struct {
		name     string
		keyword  string
		thread   string
		expected int
	}{
		{"matches title and body", "hello", "", 2},
		{"case insensitive", "HELLO", "", 2},
		{"thread filter narrows", "hello", "General", 1},
		{"all threads filter", "hello", AllThreadsFilter, 2},
		{"blank matches nothing", "", "", 0},
		{"whitespace matches nothing", "   ", "", 0},
		{"over-length matches nothing", strings.Repeat("a", 101), "", 0},
		{"no hits", "zebra", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, len(posts.Search(ctx, tt.keyword, tt.thread)))
		})
	}
}

func TestPostListingsNewestFirst(t *testing.T) {
	ctx := context.Background()
	posts := newTestPosts(t)

	posts.AddExisting(domain.Post{ID: "POST_1", Title: "old", Body: "b", Author: "ada", Thread: "General", CreatedAt: time.Now().Add(-time.Hour)})
	posts.AddExisting(domain.Post{ID: "POST_2", Title: "new", Body: "b", Author: "ada", Thread: "General", CreatedAt: time.Now()})

	byAuthor := posts.AllOfAuthor(ctx, "ada")
	assertEqual(t, 2, len(byAuthor))
	assertEqual(t, "POST_2", byAuthor[0].ID)
	assertEqual(t, "POST_1", byAuthor[1].ID)
}

func TestPostIDMonotonicAcrossReload(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := NewPostCollection(store, testLogger())
	assertSuccess(t, first.Create(ctx, "one", "b", "ada", "General"))
	assertSuccess(t, first.Create(ctx, "two", "b", "ada", "General"))

	// A fresh collection over the same store must not reissue ids.
	second := NewPostCollection(store, testLogger())
	result := second.Create(ctx, "three", "b", "ada", "General")
	assertSuccess(t, result)
	assertEqual(t, "POST_3", result.ID)
}

func TestPostCreateRollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{Store: newTestStore(t)}
	posts := NewPostCollection(flaky, testLogger())

	flaky.fail = true
	result := posts.Create(ctx, "doomed", "b", "ada", "General")
	assertFailure(t, result, "Could not save the post.")
	assertEqual(t, 0, posts.Count(ctx))

	flaky.fail = false
	assertSuccess(t, posts.Create(ctx, "fine", "b", "ada", "General"))
	assertEqual(t, 1, posts.Count(ctx))
}

func TestPostUpdateRollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{Store: newTestStore(t)}
	posts := NewPostCollection(flaky, testLogger())

	created := posts.Create(ctx, "stable", "body", "ada", "General")
	assertSuccess(t, created)

	flaky.fail = true
	assertFailure(t, posts.Update(ctx, created.ID, "new", "new body", "ada"), "Could not save the post.")

	post, _ := posts.GetByID(ctx, created.ID)
	assertEqual(t, "stable", post.Title)
	assertEqual(t, "body", post.Body)
	if post.LastEditedAt != nil {
		t.Fatalf("expected rollback to clear edit timestamp, got %v", post.LastEditedAt)
	}
}

func TestPostRefresh(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	posts := NewPostCollection(store, testLogger())
	assertEqual(t, 0, posts.Count(ctx))

	// Simulate another installation writing behind the cache.
	other := NewPostCollection(store, testLogger())
	assertSuccess(t, other.Create(ctx, "external", "b", "bob", "General"))

	assertNoError(t, posts.Refresh(ctx))
	assertEqual(t, 1, posts.Count(ctx))
}
