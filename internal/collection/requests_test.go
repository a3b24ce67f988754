package collection

import (
	"context"
	"strings"
	"testing"

	"forumdesk/internal/domain"
)

func newTestRequests(t *testing.T) *RequestCollection {
	t.Helper()
	return NewRequestCollection(newTestStore(t), testLogger())
}

func TestRequestCreate(t *testing.T) {
	ctx := context.Background()
	requests := newTestRequests(t)

	result := requests.Create(ctx, "Cannot log in", "Password reset loops forever", domain.CategoryTechnical, "ada")
	assertSuccess(t, result)
	assertEqual(t, "REQUEST_1", result.ID)

	request, ok := requests.GetByID(ctx, result.ID)
	assertEqual(t, true, ok)
	assertEqual(t, domain.RequestOpen, request.Status)

	assertFailure(t, requests.Create(ctx, "t", "d", "Bogus", "ada"), "Unknown request category.")
	assertSuccess(t, requests.Create(ctx, "No category", "is fine", "", "ada"))
}

func TestRequestClose(t *testing.T) {
	ctx := context.Background()
	requests := newTestRequests(t)

	created := requests.Create(ctx, "Broken", "Details", domain.CategoryTechnical, "ada")

	tests := []struct {
		name     string
		id       string
		notes    string
		expected string
	}{
		{"not found", "REQUEST_99", "done", "Request not found."},
		{"notes required", created.ID, "  ", "Resolution notes are required."},
		{"notes too long", created.ID, strings.Repeat("x", 2001), "Resolution notes cannot exceed 2000 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFailure(t, requests.Close(ctx, tt.id, "staff", tt.notes), tt.expected)
		})
	}

	assertSuccess(t, requests.Close(ctx, created.ID, "staff", "Rebooted the server."))
	request, _ := requests.GetByID(ctx, created.ID)
	assertEqual(t, domain.RequestClosed, request.Status)
	assertEqual(t, "staff", request.ClosedBy)
	if request.ClosedAt == nil {
		t.Fatal("expected close timestamp to be set")
	}

	assertFailure(t, requests.Close(ctx, created.ID, "staff", "again"), "Request is already closed.")
}

func TestRequestReopenChain(t *testing.T) {
	ctx := context.Background()
	requests := newTestRequests(t)

	created := requests.Create(ctx, "Broken", "Details", domain.CategoryTechnical, "ada")
	assertFailure(t, requests.Reopen(ctx, created.ID, "ada", "still broken"), "Only closed requests can be reopened.")

	assertSuccess(t, requests.Close(ctx, created.ID, "staff", "Fixed."))

	assertFailure(t, requests.Reopen(ctx, "REQUEST_99", "ada", "r"), "Request not found.")
	assertFailure(t, requests.Reopen(ctx, created.ID, "bob", "r"), "Only the original requester can reopen this request.")
	assertFailure(t, requests.Reopen(ctx, created.ID, "ada", "  "), "A reopen reason is required.")
	assertFailure(t, requests.Reopen(ctx, created.ID, "ada", strings.Repeat("x", 1001)), "Reopen reason cannot exceed 1000 characters.")

	reopened := requests.Reopen(ctx, created.ID, "ada", "still broken")
	assertSuccess(t, reopened)
	if reopened.ID == created.ID {
		t.Fatal("reopen must create a new request, not reuse the closed one")
	}

	// The successor is open and linked back; the original stays closed.
	successor, ok := requests.GetByID(ctx, reopened.ID)
	assertEqual(t, true, ok)
	assertEqual(t, domain.RequestOpen, successor.Status)
	assertEqual(t, created.ID, successor.OriginalRequestID)
	assertEqual(t, "Broken", successor.Title)
	assertEqual(t, "still broken", successor.ReopenReason)
	if successor.ReopenedAt == nil {
		t.Fatal("expected reopen timestamp to be set")
	}

	original, _ := requests.GetByID(ctx, created.ID)
	assertEqual(t, domain.RequestClosed, original.Status)
	assertEqual(t, "Fixed.", original.ResolutionNotes)
}

func TestRequestCloseRollsBackOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyStore{Store: newTestStore(t)}
	requests := NewRequestCollection(flaky, testLogger())

	created := requests.Create(ctx, "Broken", "Details", "", "ada")
	assertSuccess(t, created)

	flaky.fail = true
	assertFailure(t, requests.Close(ctx, created.ID, "staff", "done"), "Could not close the request.")

	request, _ := requests.GetByID(ctx, created.ID)
	assertEqual(t, domain.RequestOpen, request.Status)
	assertEqual(t, "", request.ClosedBy)
}

func TestRequestAllSortedOpenFirst(t *testing.T) {
	ctx := context.Background()
	requests := newTestRequests(t)

	requests.AddExisting(domain.Request{ID: "REQUEST_1", Title: "closed new", Status: domain.RequestClosed, CreatedBy: "ada", CreatedAt: mustTime(t, "2026-03-01T10:00:00Z")})
	requests.AddExisting(domain.Request{ID: "REQUEST_2", Title: "open old", Status: domain.RequestOpen, CreatedBy: "ada", CreatedAt: mustTime(t, "2026-01-01T10:00:00Z")})
	requests.AddExisting(domain.Request{ID: "REQUEST_3", Title: "open new", Status: domain.RequestOpen, CreatedBy: "bob", CreatedAt: mustTime(t, "2026-02-01T10:00:00Z")})

	sorted := requests.AllSorted(ctx)
	assertEqual(t, 3, len(sorted))
	assertEqual(t, "REQUEST_3", sorted[0].ID)
	assertEqual(t, "REQUEST_2", sorted[1].ID)
	assertEqual(t, "REQUEST_1", sorted[2].ID)

	open := requests.ByStatus(ctx, domain.RequestOpen)
	assertEqual(t, 2, len(open))

	mine := requests.ByCreator(ctx, "ada")
	assertEqual(t, 2, len(mine))
	assertEqual(t, "REQUEST_2", mine[0].ID)
}
