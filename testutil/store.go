package testutil

import (
	"io"
	"testing"

	"task-management-app/repositories"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *repositories.SQLiteStore {
	t.Helper()

	s, err := repositories.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// Logger discards everything.
func Logger() *log.Logger {
	return log.New(io.Discard)
}

func Tracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("test")
}
