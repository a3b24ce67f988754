package collection

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"forumdesk/internal/domain"
	"forumdesk/internal/repository"
	"forumdesk/internal/repository/sqlite"
)

// newTestStore creates an in-memory SQLite store for testing
func newTestStore(t *testing.T) repository.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

// assertSuccess fails the test if the result is a failure
func assertSuccess(t *testing.T, result domain.Result) {
	t.Helper()
	if !result.OK {
		t.Fatalf("expected success, got failure: %s", result.Message)
	}
}

// assertFailure fails the test unless the result carries exactly message
func assertFailure(t *testing.T, result domain.Result, message string) {
	t.Helper()
	if result.OK {
		t.Fatalf("expected failure %q, got success %s", message, result.ID)
	}
	if result.Message != message {
		t.Fatalf("expected failure %q, got %q", message, result.Message)
	}
}

// mustTime parses an RFC 3339 timestamp or fails the test
func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", value, err)
	}
	return parsed
}

var errStoreDown = errors.New("store down")

// flakyStore wraps a working store and fails writes on demand, for
// exercising the rollback paths.
type flakyStore struct {
	repository.Store
	fail bool
}

func (s *flakyStore) SavePost(ctx context.Context, post *domain.Post) error {
	if s.fail {
		return errStoreDown
	}
	return s.Store.SavePost(ctx, post)
}

func (s *flakyStore) SaveReply(ctx context.Context, reply *domain.Reply) error {
	if s.fail {
		return errStoreDown
	}
	return s.Store.SaveReply(ctx, reply)
}

func (s *flakyStore) SaveThread(ctx context.Context, thread *domain.Thread) error {
	if s.fail {
		return errStoreDown
	}
	return s.Store.SaveThread(ctx, thread)
}

func (s *flakyStore) SaveRequest(ctx context.Context, request *domain.Request) error {
	if s.fail {
		return errStoreDown
	}
	return s.Store.SaveRequest(ctx, request)
}

func (s *flakyStore) SaveParameter(ctx context.Context, parameter *domain.Parameter) error {
	if s.fail {
		return errStoreDown
	}
	return s.Store.SaveParameter(ctx, parameter)
}

func (s *flakyStore) DeleteThread(ctx context.Context, id string) (bool, error) {
	if s.fail {
		return false, errStoreDown
	}
	return s.Store.DeleteThread(ctx, id)
}

func (s *flakyStore) DeleteParameter(ctx context.Context, id string) (bool, error) {
	if s.fail {
		return false, errStoreDown
	}
	return s.Store.DeleteParameter(ctx, id)
}
