package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"github.com/eapache/go-resiliency/retrier"
	"github.com/sony/gobreaker/v2"
)

// APIError is a non 2xx answer of the task API.
type APIError struct {
	Status  int
	Message string
	Fields  []domain.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		msgs := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			msgs = append(msgs, f.Msg)
		}
		return strings.Join(msgs, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status %d", e.Status)
}

// API is a typed client of the task HTTP API. Calls go through a circuit
// breaker; idempotent GETs are also retried on transport and 5xx failures.
type API struct {
	baseURL string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[any]
	retrier *retrier.Retrier
	logger  *log.Logger
}

// NewAPI builds a client for the API mounted at baseURL, for example
// "http://localhost:5000/api". transport is usually an *AuthTransport.
func NewAPI(baseURL string, transport http.RoundTripper, timeout time.Duration, logger *log.Logger) *API {
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "TaskAPI",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker changed state", "name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: isBreakerSuccess,
	})

	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Transport: transport, Timeout: timeout},
		cb:      cb,
		retrier: retrier.New(retrier.ConstantBackoff(3, 100*time.Millisecond), idempotentClassifier{}),
		logger:  logger,
	}
}

// isBreakerSuccess keeps client mistakes from opening the breaker. Only
// transport failures and 5xx answers count.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrSessionExpired) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < http.StatusInternalServerError
	}
	return false
}

type idempotentClassifier struct{}

func (idempotentClassifier) Classify(err error) retrier.Action {
	if err == nil {
		return retrier.Succeed
	}
	if errors.Is(err, ErrSessionExpired) || errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) || errors.Is(err, context.Canceled) {
		return retrier.Fail
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError {
		return retrier.Fail
	}
	return retrier.Retry
}

func (a *API) Register(ctx context.Context, name, email, password string) (Session, error) {
	var s Session
	err := a.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &s)
	return s, err
}

func (a *API) LogIn(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := a.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": password,
	}, &s)
	return s, err
}

func (a *API) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	err := a.get(ctx, "/auth/me", &u)
	return u, err
}

func (a *API) ListTasks(ctx context.Context) (domain.Tasks, error) {
	var tasks domain.Tasks
	err := a.get(ctx, "/tasks", &tasks)
	return tasks, err
}

func (a *API) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	var task domain.Task
	err := a.do(ctx, http.MethodPost, "/tasks", draft, &task)
	return task, err
}

func (a *API) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	var task domain.Task
	err := a.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), patch, &task)
	return task, err
}

func (a *API) DeleteTask(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

func (a *API) ReorderTasks(ctx context.Context, pairs []domain.OrderPair) (domain.Tasks, error) {
	var tasks domain.Tasks
	body := struct {
		Tasks []domain.OrderPair `json:"tasks"`
	}{Tasks: pairs}
	err := a.do(ctx, http.MethodPut, "/tasks/reorder", body, &tasks)
	return tasks, err
}

func (a *API) Activity(ctx context.Context, limit int) (domain.Activities, error) {
	var activities domain.Activities
	path := "/activity"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	err := a.get(ctx, path, &activities)
	return activities, err
}

func (a *API) get(ctx context.Context, path string, out any) error {
	return a.retrier.RunCtx(ctx, func(ctx context.Context) error {
		return a.do(ctx, http.MethodGet, path, nil, out)
	})
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	_, err := a.cb.Execute(func() (any, error) {
		return nil, a.roundTrip(ctx, method, path, body, out)
	})
	return err
}

func (a *API) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return ErrSessionExpired
		}
		a.logger.Debug("request failed", "method", method, "path", path, "err", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	payload := struct {
		Message string              `json:"message"`
		Errors  []domain.FieldError `json:"errors"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
		apiErr.Fields = payload.Errors
	}
	return apiErr
}
