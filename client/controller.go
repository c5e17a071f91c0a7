package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
)

// TaskAPI is the part of API the controller drives.
type TaskAPI interface {
	ListTasks(ctx context.Context) (domain.Tasks, error)
	CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ReorderTasks(ctx context.Context, pairs []domain.OrderPair) (domain.Tasks, error)
}

type State int

const (
	Loading State = iota
	Ready
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "ready"
}

const (
	MsgLoadFailed    = "Failed to load tasks. Please try again."
	MsgCreateFailed  = "Failed to create task. Please try again."
	MsgUpdateFailed  = "Failed to update task. Please try again."
	MsgDeleteFailed  = "Failed to delete task. Please try again."
	MsgReorderFailed = "Failed to reorder tasks. Please try again."
)

var (
	ErrDeleteInFlight = errors.New("delete already in progress")
	ErrUnknownTask    = errors.New("task not in list")
)

// Controller holds the session copy of the task list. The error message is
// advisory: it is cleared by the next successful action and never blocks
// further calls. The lock is never held across a network call.
type Controller struct {
	api    TaskAPI
	logger *log.Logger

	mu       sync.Mutex
	state    State
	tasks    domain.Tasks
	errMsg   string
	deleting map[string]struct{}
}

func NewController(api TaskAPI, logger *log.Logger) *Controller {
	return &Controller{
		api:      api,
		logger:   logger,
		state:    Loading,
		tasks:    domain.Tasks{},
		deleting: make(map[string]struct{}),
	}
}

// Load fetches the list. It always ends in Ready; a failure leaves the
// previous list and sets MsgLoadFailed.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.state = Loading
	c.mu.Unlock()

	tasks, err := c.api.ListTasks(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Ready
	if err != nil {
		c.logger.Error("load tasks", "err", err)
		c.errMsg = MsgLoadFailed
		return err
	}
	c.tasks = tasks
	c.errMsg = ""
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the message of the last failed action, or "".
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Tasks returns a copy of the list in display order.
func (c *Controller) Tasks() domain.Tasks {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(domain.Tasks, 0, len(c.tasks))
	for _, t := range c.tasks {
		task := *t
		out = append(out, &task)
	}
	return out
}

// Stats is computed from the list on every call.
func (c *Controller) Stats() domain.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tasks.Stats()
}

func (c *Controller) Create(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	task, err := c.api.CreateTask(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("create task", "err", err)
		c.errMsg = MsgCreateFailed
		return domain.Task{}, err
	}
	created := task
	c.tasks = append(c.tasks, &created)
	c.errMsg = ""
	return task, nil
}

func (c *Controller) Update(ctx context.Context, id string, patch domain.TaskPatch) (domain.Task, error) {
	task, err := c.api.UpdateTask(ctx, id, patch)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Error("update task", "id", id, "err", err)
		c.errMsg = MsgUpdateFailed
		return domain.Task{}, err
	}
	c.replace(task)
	c.errMsg = ""
	return task, nil
}

// Toggle flips the completed flag of a task in the list.
func (c *Controller) Toggle(ctx context.Context, id string) (domain.Task, error) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return domain.Task{}, ErrUnknownTask
	}
	completed := !c.tasks[i].Completed
	c.mu.Unlock()

	return c.Update(ctx, id, domain.TaskPatch{Completed: &completed})
}

// Delete removes a task. While a delete of id is pending a second one
// returns ErrDeleteInFlight without reaching the server.
func (c *Controller) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if _, pending := c.deleting[id]; pending {
		c.mu.Unlock()
		return ErrDeleteInFlight
	}
	c.deleting[id] = struct{}{}
	c.mu.Unlock()

	err := c.api.DeleteTask(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.deleting, id)
	if err != nil {
		c.logger.Error("delete task", "id", id, "err", err)
		c.errMsg = MsgDeleteFailed
		return err
	}
	if i := c.indexOf(id); i >= 0 {
		c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
	}
	c.errMsg = ""
	return nil
}

// Deleting reports whether a delete of id is in flight.
func (c *Controller) Deleting(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.deleting[id]
	return ok
}

// Reorder shows the new order at once and then sends it. Tasks named in
// pairs come first in pair order; the rest keep their relative position. On
// failure the list is refetched from the server.
func (c *Controller) Reorder(ctx context.Context, pairs []domain.OrderPair) error {
	c.mu.Lock()
	c.tasks = c.applyPairs(pairs)
	c.mu.Unlock()

	sorted, err := c.api.ReorderTasks(ctx, pairs)
	if err != nil {
		c.logger.Error("reorder tasks", "err", err)
		c.mu.Lock()
		c.errMsg = MsgReorderFailed
		c.mu.Unlock()

		if tasks, lerr := c.api.ListTasks(ctx); lerr == nil {
			c.mu.Lock()
			c.tasks = tasks
			c.mu.Unlock()
		} else {
			c.logger.Error("refetch after failed reorder", "err", lerr)
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = sorted
	c.errMsg = ""
	return nil
}

// Move takes the task at position from (0 based) to position to and
// renumbers the whole list densely.
func (c *Controller) Move(ctx context.Context, from, to int) error {
	c.mu.Lock()
	n := len(c.tasks)
	if from < 0 || from >= n || to < 0 || to >= n {
		c.mu.Unlock()
		return fmt.Errorf("move %d to %d: %w", from+1, to+1, ErrUnknownTask)
	}
	ids := make([]string, 0, n)
	for _, t := range c.tasks {
		ids = append(ids, t.Id)
	}
	c.mu.Unlock()

	moved := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]string{moved}, ids[to:]...)...)

	pairs := make([]domain.OrderPair, len(ids))
	for i, id := range ids {
		pairs[i] = domain.OrderPair{Id: id, Order: i}
	}
	return c.Reorder(ctx, pairs)
}

func (c *Controller) applyPairs(pairs []domain.OrderPair) domain.Tasks {
	byId := make(map[string]*domain.Task, len(c.tasks))
	for _, t := range c.tasks {
		byId[t.Id] = t
	}

	out := make(domain.Tasks, 0, len(c.tasks))
	placed := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		t, ok := byId[p.Id]
		if !ok || placed[p.Id] {
			continue
		}
		task := *t
		task.Order = p.Order
		out = append(out, &task)
		placed[p.Id] = true
	}
	for _, t := range c.tasks {
		if !placed[t.Id] {
			out = append(out, t)
		}
	}
	return out
}

func (c *Controller) replace(task domain.Task) {
	if i := c.indexOf(task.Id); i >= 0 {
		updated := task
		c.tasks[i] = &updated
	}
}

func (c *Controller) indexOf(id string) int {
	for i, t := range c.tasks {
		if t.Id == id {
			return i
		}
	}
	return -1
}
