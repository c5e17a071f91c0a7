package services

import (
	"context"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

type ActivityService struct {
	activity domain.ActivityRepository
	logger   *log.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

func NewActivityService(activity domain.ActivityRepository, logger *log.Logger, tracer trace.Tracer) *ActivityService {
	return &ActivityService{activity: activity, logger: logger, tracer: tracer, now: now}
}

// Record appends an entry for a task mutation. The history is best effort:
// a failing append is logged and never fails the mutation itself.
func (s *ActivityService) Record(ctx context.Context, owner string, task domain.Task, action domain.Action) {
	ctx, span := s.tracer.Start(ctx, "ActivityService.Record")
	defer span.End()

	err := s.activity.Append(ctx, domain.Activity{
		User:      owner,
		Task:      task.Id,
		Action:    action,
		Title:     task.Title,
		CreatedAt: s.now(),
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("activity not recorded", "task", task.Id, "action", action, "err", err)
	}
}

// List returns the newest entries of owner. limit is clamped to
// [1, MaxActivityLimit] and defaults to DefaultActivityLimit.
func (s *ActivityService) List(ctx context.Context, owner string, limit int) (domain.Activities, error) {
	ctx, span := s.tracer.Start(ctx, "ActivityService.List")
	defer span.End()

	if owner == "" {
		return nil, domain.ErrOwnerNotFound()
	}
	switch {
	case limit <= 0:
		limit = DefaultActivityLimit
	case limit > MaxActivityLimit:
		limit = MaxActivityLimit
	}

	activities, err := s.activity.GetByUser(ctx, owner, limit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return activities, nil
}
