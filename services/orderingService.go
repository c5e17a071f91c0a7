package services

import (
	"context"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderingService maintains the per-owner order index. Neither operation is
// transactional: concurrent creates may share an order value and a reorder
// may be applied partially.
type OrderingService struct {
	tasks  domain.TaskRepository
	logger *log.Logger
	tracer trace.Tracer
	now    func() time.Time
}

func NewOrderingService(tasks domain.TaskRepository, logger *log.Logger, tracer trace.Tracer) *OrderingService {
	return &OrderingService{tasks: tasks, logger: logger, tracer: tracer, now: now}
}

// NextOrder returns the order for a new task of owner: one past the current
// maximum, or 0 for the first task.
func (s *OrderingService) NextOrder(ctx context.Context, owner string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.NextOrder")
	defer span.End()

	if owner == "" {
		span.SetStatus(codes.Error, domain.ErrOwnerNotFound().Error())
		return 0, domain.ErrOwnerNotFound()
	}

	max, ok, err := s.tasks.MaxOrder(ctx, owner)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return max + 1, nil
}

// Reorder writes every pair that belongs to owner and returns how many were
// applied. Pairs of other owners and unknown ids are skipped. A store failure
// does not stop the remaining pairs; the first one is returned at the end.
func (s *OrderingService) Reorder(ctx context.Context, owner string, pairs []domain.OrderPair) (int, error) {
	ctx, span := s.tracer.Start(ctx, "OrderingService.Reorder")
	defer span.End()
	span.SetAttributes(attribute.Int("pairs", len(pairs)))

	if owner == "" {
		return 0, domain.ErrOwnerNotFound()
	}

	var (
		applied  int
		firstErr error
		at       = s.now()
	)
	for _, p := range pairs {
		ok, err := s.tasks.SetOrder(ctx, p.Id, owner, p.Order, at)
		if err != nil {
			s.logger.Warn("reorder pair failed", "id", p.Id, "order", p.Order, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !ok {
			s.logger.Debug("reorder pair skipped", "id", p.Id, "owner", owner)
			continue
		}
		applied++
	}

	span.SetAttributes(attribute.Int("applied", applied))
	if firstErr != nil {
		span.SetStatus(codes.Error, firstErr.Error())
	}
	return applied, firstErr
}
