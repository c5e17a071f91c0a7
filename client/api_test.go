package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker/v2"
)

func newTestAPIClient(t *testing.T, h http.Handler) (*API, *FileSessionStore, *atomic.Int32) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sessions := NewFileSessionStore(filepath.Join(t.TempDir(), "session.json"))
	expired := &atomic.Int32{}
	transport := &AuthTransport{
		Sessions:  sessions,
		OnExpired: func() { expired.Add(1) },
	}
	return NewAPI(srv.URL+"/api", transport, 5*time.Second, log.New(io.Discard)), sessions, expired
}

func TestAuthTransportSignsRequests(t *testing.T) {
	var gotAuth string
	api, sessions, _ := newTestAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))

	if err := sessions.Save(Session{Token: "tok-123"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := api.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestAuthTransportExpiresSession(t *testing.T) {
	api, sessions, expired := newTestAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Token is not valid"}`))
	}))
	sessions.Save(Session{Token: "stale"})

	_, err := api.CreateTask(context.Background(), domain.TaskDraft{Title: "x"})
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if _, err := sessions.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("session not cleared: %v", err)
	}
	if expired.Load() != 1 {
		t.Errorf("OnExpired fired %d times, want 1", expired.Load())
	}
}

func TestAPIRetriesIdempotentGet(t *testing.T) {
	var calls atomic.Int32
	api, _, _ := newTestAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"_id":"a","title":"A"}]`))
	}))

	tasks, err := api.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "A" {
		t.Errorf("tasks = %+v", tasks)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}

func TestAPIDoesNotRetryWrites(t *testing.T) {
	var calls atomic.Int32
	api, _, _ := newTestAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"Server error"}`))
	}))

	_, err := api.CreateTask(context.Background(), domain.TaskDraft{Title: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 500 || apiErr.Message != "Server error" {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server saw %d calls, want 1", calls.Load())
	}
}

func TestAPIValidationError(t *testing.T) {
	var calls atomic.Int32
	api, _, _ := newTestAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"field":"title","msg":"Title is required"}]}`))
	}))

	for i := 0; i < 5; i++ {
		_, err := api.CreateTask(context.Background(), domain.TaskDraft{})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("err = %v, want APIError", err)
		}
		if apiErr.Error() != "Title is required" {
			t.Errorf("Error() = %q", apiErr.Error())
		}
	}
	if calls.Load() != 5 {
		t.Errorf("breaker tripped on client errors: %d calls reached the server", calls.Load())
	}
}

func TestAPICircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	api, _, _ := newTestAPIClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		api.DeleteTask(ctx, "x")
	}
	if err := api.DeleteTask(ctx, "x"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("err = %v, want open breaker", err)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d calls, want 3", calls.Load())
	}
}
