package collection

import (
	"context"
	"testing"

	"forumdesk/internal/domain"
)

func newTestThreads(t *testing.T) *ThreadCollection {
	t.Helper()
	return NewThreadCollection(newTestStore(t), testLogger())
}

func TestThreadCreate(t *testing.T) {
	ctx := context.Background()
	threads := newTestThreads(t)

	result := threads.Create(ctx, "General", "Anything goes", "ada")
	assertSuccess(t, result)
	assertEqual(t, "THREAD_1", result.ID)

	thread, ok := threads.GetByID(ctx, result.ID)
	assertEqual(t, true, ok)
	assertEqual(t, domain.ThreadOpen, thread.Status)

	assertFailure(t, threads.Create(ctx, "", "desc", "ada"), "Title is required.")
}

func TestThreadGetByTitle(t *testing.T) {
	ctx := context.Background()
	threads := newTestThreads(t)

	assertSuccess(t, threads.Create(ctx, "General", "", "ada"))

	thread, ok := threads.GetByTitle(ctx, "General")
	assertEqual(t, true, ok)
	assertEqual(t, "General", thread.Title)

	_, ok = threads.GetByTitle(ctx, "general")
	assertEqual(t, false, ok)
}

func TestThreadUpdate(t *testing.T) {
	ctx := context.Background()
	threads := newTestThreads(t)

	created := threads.Create(ctx, "General", "Anything", "ada")
	assertFailure(t, threads.Update(ctx, created.ID, "Renamed", "", "mallory", ""), "You can only edit your own threads.")

	// Empty status keeps the current one.
	assertSuccess(t, threads.Update(ctx, created.ID, "Renamed", "New desc", "ada", ""))
	thread, _ := threads.GetByID(ctx, created.ID)
	assertEqual(t, "Renamed", thread.Title)
	assertEqual(t, domain.ThreadOpen, thread.Status)

	assertSuccess(t, threads.Update(ctx, created.ID, "Renamed", "New desc", "ada", domain.ThreadClosed))
	thread, _ = threads.GetByID(ctx, created.ID)
	assertEqual(t, domain.ThreadClosed, thread.Status)

	assertFailure(t, threads.Update(ctx, created.ID, "Renamed", "New desc", "ada", "Archived"), "Status must be Open or Closed.")
}

func TestThreadDelete(t *testing.T) {
	ctx := context.Background()
	threads := newTestThreads(t)

	created := threads.Create(ctx, "Doomed", "", "ada")
	assertFailure(t, threads.Delete(ctx, created.ID, "mallory"), "You can only delete your own threads.")
	assertSuccess(t, threads.Delete(ctx, created.ID, "ada"))

	// Hard delete: the record is gone entirely.
	_, ok := threads.GetByID(ctx, created.ID)
	assertEqual(t, false, ok)
	assertFailure(t, threads.Delete(ctx, created.ID, "ada"), "Thread not found.")
}

func TestThreadDeleteRollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{Store: newTestStore(t)}
	threads := NewThreadCollection(flaky, testLogger())

	created := threads.Create(ctx, "Sticky", "", "ada")
	assertSuccess(t, created)

	flaky.fail = true
	assertFailure(t, threads.Delete(ctx, created.ID, "ada"), "Could not delete the thread.")

	_, ok := threads.GetByID(ctx, created.ID)
	assertEqual(t, true, ok)
}

func TestThreadAllSortedOpenFirst(t *testing.T) {
	ctx := context.Background()
	threads := newTestThreads(t)

	threads.AddExisting(domain.Thread{ID: "THREAD_1", Title: "closed new", Status: domain.ThreadClosed, CreatedBy: "ada", CreatedAt: mustTime(t, "2026-03-01T10:00:00Z")})
	threads.AddExisting(domain.Thread{ID: "THREAD_2", Title: "open old", Status: domain.ThreadOpen, CreatedBy: "ada", CreatedAt: mustTime(t, "2026-01-01T10:00:00Z")})
	threads.AddExisting(domain.Thread{ID: "THREAD_3", Title: "open new", Status: domain.ThreadOpen, CreatedBy: "bob", CreatedAt: mustTime(t, "2026-02-01T10:00:00Z")})

	sorted := threads.AllSorted(ctx)
	assertEqual(t, 3, len(sorted))
	assertEqual(t, "THREAD_3", sorted[0].ID)
	assertEqual(t, "THREAD_2", sorted[1].ID)
	assertEqual(t, "THREAD_1", sorted[2].ID)

	mine := threads.ByCreator(ctx, "ada")
	assertEqual(t, 2, len(mine))
	assertEqual(t, "THREAD_2", mine[0].ID)
}
