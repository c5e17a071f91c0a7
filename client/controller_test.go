package client

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
)

var errBoom = errors.New("boom")

// fakeAPI is an in-memory TaskAPI. Each fail* field makes the matching
// call return errBoom; deleteGate, when set, blocks DeleteTask until closed.
type fakeAPI struct {
	mu         sync.Mutex
	tasks      domain.Tasks
	listCalls  int
	deleteGate chan struct{}

	failList, failCreate, failUpdate, failDelete, failReorder bool
}

func (f *fakeAPI) ListTasks(context.Context) (domain.Tasks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failList {
		return nil, errBoom
	}
	return f.snapshot(), nil
}

func (f *fakeAPI) CreateTask(_ context.Context, draft domain.TaskDraft) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return domain.Task{}, errBoom
	}
	max, ok := f.tasks.MaxOrder()
	order := 0
	if ok {
		order = max + 1
	}
	task := domain.Task{Id: domain.NewTaskID(), Title: draft.Title, Priority: domain.MEDIUM, Order: order}
	f.tasks = append(f.tasks, &task)
	return task, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return domain.Task{}, errBoom
	}
	for _, t := range f.tasks {
		if t.Id == id {
			t.Apply(patch)
			return *t, nil
		}
	}
	return domain.Task{}, &APIError{Status: 404, Message: "Task not found"}
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	if f.deleteGate != nil {
		<-f.deleteGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errBoom
	}
	for i, t := range f.tasks {
		if t.Id == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: 404, Message: "Task not found"}
}

func (f *fakeAPI) ReorderTasks(_ context.Context, pairs []domain.OrderPair) (domain.Tasks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReorder {
		return nil, errBoom
	}
	for _, p := range pairs {
		for _, t := range f.tasks {
			if t.Id == p.Id {
				t.Order = p.Order
			}
		}
	}
	return f.snapshot(), nil
}

func (f *fakeAPI) snapshot() domain.Tasks {
	out := make(domain.Tasks, 0, len(f.tasks))
	for _, t := range f.tasks {
		task := *t
		out = append(out, &task)
	}
	out.Sort()
	return out
}

func seeded(titles ...string) *fakeAPI {
	f := &fakeAPI{}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range titles {
		f.tasks = append(f.tasks, &domain.Task{Id: domain.NewTaskID(), Title: title, Order: i, CreatedAt: base})
	}
	return f
}

func newTestController(t *testing.T, api TaskAPI) *Controller {
	t.Helper()
	c := NewController(api, log.New(io.Discard))
	if c.State() != Loading {
		t.Fatalf("initial state = %s, want loading", c.State())
	}
	return c
}

func titles(tasks domain.Tasks) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoad(t *testing.T) {
	api := seeded("a", "b")
	c := newTestController(t, api)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.State() != Ready || c.Err() != "" {
		t.Errorf("state %s err %q after Load", c.State(), c.Err())
	}
	if got := titles(c.Tasks()); !equal(got, []string{"a", "b"}) {
		t.Errorf("tasks = %v", got)
	}
}

func TestLoadFailureIsAdvisory(t *testing.T) {
	api := seeded("a")
	api.failList = true
	c := newTestController(t, api)

	if err := c.Load(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("Load err = %v", err)
	}
	if c.State() != Ready {
		t.Errorf("state = %s, want ready", c.State())
	}
	if c.Err() != MsgLoadFailed {
		t.Errorf("Err() = %q", c.Err())
	}

	if _, err := c.Create(context.Background(), domain.TaskDraft{Title: "still works"}); err != nil {
		t.Fatalf("Create after failed load: %v", err)
	}
	if c.Err() != "" {
		t.Errorf("Err() = %q after success, want cleared", c.Err())
	}
}

func TestStatsFollowList(t *testing.T) {
	api := seeded()
	c := newTestController(t, api)
	ctx := context.Background()
	c.Load(ctx)

	first, _ := c.Create(ctx, domain.TaskDraft{Title: "Write spec"})
	second, _ := c.Create(ctx, domain.TaskDraft{Title: "Review spec"})
	if first.Order != 0 || second.Order != 1 {
		t.Errorf("orders = %d, %d, want 0, 1", first.Order, second.Order)
	}

	if _, err := c.Toggle(ctx, first.Id); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	want := domain.Stats{Total: 2, Completed: 1, Pending: 1}
	if got := c.Stats(); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if c.Stats().Percent() != 50 {
		t.Errorf("Percent = %d, want 50", c.Stats().Percent())
	}

	if err := c.Delete(ctx, second.Id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := c.Stats(); got != (domain.Stats{Total: 1, Completed: 1}) {
		t.Errorf("Stats after delete = %+v", got)
	}
}

func TestFailedMutationsKeepState(t *testing.T) {
	api := seeded("a", "b")
	c := newTestController(t, api)
	ctx := context.Background()
	c.Load(ctx)
	before := titles(c.Tasks())
	id := c.Tasks()[0].Id

	api.failCreate, api.failUpdate, api.failDelete = true, true, true

	tests := []struct {
		name string
		call func() error
		msg  string
	}{
		{"create", func() error { _, err := c.Create(ctx, domain.TaskDraft{Title: "x"}); return err }, MsgCreateFailed},
		{"update", func() error { _, err := c.Toggle(ctx, id); return err }, MsgUpdateFailed},
		{"delete", func() error { return c.Delete(ctx, id) }, MsgDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Fatal("call succeeded")
			}
			if c.Err() != tt.msg {
				t.Errorf("Err() = %q, want %q", c.Err(), tt.msg)
			}
			if got := titles(c.Tasks()); !equal(got, before) {
				t.Errorf("tasks = %v, want %v", got, before)
			}
			if c.Tasks()[0].Completed {
				t.Error("failed toggle changed local state")
			}
		})
	}

	if api.listCalls != 1 {
		t.Errorf("list fetched %d times, want only the initial load", api.listCalls)
	}
}

func TestDeleteInFlight(t *testing.T) {
	api := seeded("a")
	api.deleteGate = make(chan struct{})
	c := newTestController(t, api)
	ctx := context.Background()
	c.Load(ctx)
	id := c.Tasks()[0].Id

	done := make(chan error, 1)
	go func() { done <- c.Delete(ctx, id) }()

	deadline := time.Now().Add(2 * time.Second)
	for !c.Deleting(id) {
		if time.Now().After(deadline) {
			t.Fatal("first delete never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := c.Delete(ctx, id); !errors.Is(err, ErrDeleteInFlight) {
		t.Errorf("second Delete err = %v, want ErrDeleteInFlight", err)
	}

	close(api.deleteGate)
	if err := <-done; err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if c.Deleting(id) {
		t.Error("delete still marked in flight")
	}
	if len(c.Tasks()) != 0 {
		t.Errorf("tasks = %v after delete", titles(c.Tasks()))
	}
}

func TestReorderOptimistic(t *testing.T) {
	api := seeded("A", "B", "C")
	c := newTestController(t, api)
	ctx := context.Background()
	c.Load(ctx)
	tasks := c.Tasks()

	err := c.Reorder(ctx, []domain.OrderPair{
		{Id: tasks[2].Id, Order: 0},
		{Id: tasks[1].Id, Order: 1},
		{Id: tasks[0].Id, Order: 2},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if got := titles(c.Tasks()); !equal(got, []string{"C", "B", "A"}) {
		t.Errorf("tasks = %v, want C,B,A", got)
	}
}

func TestReorderFailureRefetches(t *testing.T) {
	api := seeded("A", "B", "C")
	c := newTestController(t, api)
	ctx := context.Background()
	c.Load(ctx)
	api.failReorder = true

	if err := c.Move(ctx, 0, 2); !errors.Is(err, errBoom) {
		t.Fatalf("Move err = %v", err)
	}
	if c.Err() != MsgReorderFailed {
		t.Errorf("Err() = %q", c.Err())
	}
	if api.listCalls != 2 {
		t.Errorf("list fetched %d times, want refetch after failure", api.listCalls)
	}
	if got := titles(c.Tasks()); !equal(got, []string{"A", "B", "C"}) {
		t.Errorf("tasks = %v, want server order restored", got)
	}
}

func TestMove(t *testing.T) {
	tests := []struct {
		from, to int
		want     []string
	}{
		{0, 2, []string{"B", "C", "A"}},
		{2, 0, []string{"C", "A", "B"}},
		{1, 1, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		api := seeded("A", "B", "C")
		c := newTestController(t, api)
		ctx := context.Background()
		c.Load(ctx)

		if err := c.Move(ctx, tt.from, tt.to); err != nil {
			t.Fatalf("Move(%d, %d): %v", tt.from, tt.to, err)
		}
		got := c.Tasks()
		if !equal(titles(got), tt.want) {
			t.Errorf("Move(%d, %d) = %v, want %v", tt.from, tt.to, titles(got), tt.want)
		}
		for i, task := range got {
			if task.Order != i {
				t.Errorf("Move(%d, %d): %s has order %d, want %d", tt.from, tt.to, task.Title, task.Order, i)
			}
		}
	}

	c := newTestController(t, seeded("A"))
	c.Load(context.Background())
	if err := c.Move(context.Background(), 0, 5); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("out of range Move err = %v", err)
	}
}
