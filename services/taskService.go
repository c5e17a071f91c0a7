package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type TaskService struct {
	tasks    domain.TaskRepository
	ordering *OrderingService
	activity *ActivityService
	logger   *log.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewTaskService wires the task operations. activity may be nil, in which
// case nothing is recorded.
func NewTaskService(tasks domain.TaskRepository, ordering *OrderingService, activity *ActivityService, logger *log.Logger, tracer trace.Tracer) *TaskService {
	return &TaskService{
		tasks:    tasks,
		ordering: ordering,
		activity: activity,
		logger:   logger,
		tracer:   tracer,
		now:      now,
	}
}

func (s *TaskService) List(ctx context.Context, owner string) (domain.Tasks, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.List")
	defer span.End()

	if owner == "" {
		return nil, domain.ErrOwnerNotFound()
	}

	tasks, err := s.tasks.GetByUser(ctx, owner)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("tasks", len(tasks)))
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, owner string, draft domain.TaskDraft) (domain.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.Create")
	defer span.End()

	title := strings.TrimSpace(draft.Title)
	v := &domain.ValidationError{}
	if title == "" {
		v.Add("title", "Title is required")
	}
	priority := draft.Priority
	if priority == "" {
		priority = domain.MEDIUM
	}
	if !priority.Valid() {
		v.Add("priority", "Priority must be low, medium or high")
	}
	if err := v.Err(); err != nil {
		return domain.Task{}, err
	}

	order, err := s.ordering.NextOrder(ctx, owner)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Task{}, err
	}

	at := s.now()
	task := domain.Task{
		Id:          domain.NewTaskID(),
		User:        owner,
		Title:       title,
		Description: draft.Description,
		Priority:    priority,
		Completed:   false,
		Order:       order,
		CreatedAt:   at,
		UpdatedAt:   at,
	}

	created, err := s.tasks.Insert(ctx, task)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.record(ctx, owner, created, domain.ActionCreated)
	return created, nil
}

// Update applies a partial update. Omitted fields keep their stored value and
// updatedAt never moves backwards.
func (s *TaskService) Update(ctx context.Context, owner, id string, patch domain.TaskPatch) (domain.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.Update")
	defer span.End()

	v := &domain.ValidationError{}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		v.Add("title", "Title is required")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		v.Add("priority", "Priority must be low, medium or high")
	}
	if err := v.Err(); err != nil {
		return domain.Task{}, err
	}

	if owner == "" {
		return domain.Task{}, domain.ErrOwnerNotFound()
	}

	existing, err := s.tasks.FindByIdAndUser(ctx, id, owner)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Task{}, err
	}

	wasCompleted := existing.Completed
	existing.Apply(patch)
	existing.UpdatedAt = notBefore(s.now(), existing.UpdatedAt)

	updated, err := s.tasks.Update(ctx, *existing)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return domain.Task{}, err
	}

	action := domain.ActionUpdated
	switch {
	case !wasCompleted && updated.Completed:
		action = domain.ActionCompleted
	case wasCompleted && !updated.Completed:
		action = domain.ActionReopened
	}
	s.record(ctx, owner, updated, action)

	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, owner, id string) error {
	ctx, span := s.tracer.Start(ctx, "TaskService.Delete")
	defer span.End()

	if owner == "" {
		return domain.ErrOwnerNotFound()
	}

	// The lookup only feeds the activity entry; Delete itself is owner scoped.
	existing, err := s.tasks.FindByIdAndUser(ctx, id, owner)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.tasks.Delete(ctx, id, owner); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.record(ctx, owner, *existing, domain.ActionDeleted)
	return nil
}

// Reorder applies the pairs and returns the owner's freshly sorted list.
func (s *TaskService) Reorder(ctx context.Context, owner string, pairs []domain.OrderPair) (domain.Tasks, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.Reorder")
	defer span.End()

	applied, err := s.ordering.Reorder(ctx, owner, pairs)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if applied > 0 {
		s.record(ctx, owner, domain.Task{}, domain.ActionReordered)
	}

	return s.List(ctx, owner)
}

func (s *TaskService) record(ctx context.Context, owner string, task domain.Task, action domain.Action) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, owner, task, action)
}
