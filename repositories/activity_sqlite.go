package repositories

import (
	"context"
	"fmt"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type activityRow struct {
	User      string    `db:"user"`
	Task      string    `db:"task"`
	Action    string    `db:"action"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"createdAt"`
}

type activitySQLiteRepository struct {
	store  *SQLiteStore
	logger *log.Logger
	tracer trace.Tracer
}

func NewActivitySQLite(store *SQLiteStore, logger *log.Logger, tracer trace.Tracer) domain.ActivityRepository {
	return &activitySQLiteRepository{
		store:  store,
		logger: logger,
		tracer: tracer,
	}
}

func (ar *activitySQLiteRepository) Append(ctx context.Context, activity domain.Activity) error {
	ctx, span := ar.tracer.Start(ctx, "ActivitySQLite.Append")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	_, err := ar.store.db.ExecContext(ctx,
		`INSERT INTO activity ("user", task, action, title, createdAt) VALUES (?, ?, ?, ?, ?)`,
		activity.User, activity.Task, string(activity.Action), activity.Title, activity.CreatedAt.UTC(),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		ar.logger.Error("insert activity", "user", activity.User, "err", err)
		return fmt.Errorf("appending activity: %w", err)
	}
	return nil
}

func (ar *activitySQLiteRepository) GetByUser(ctx context.Context, user string, limit int) (domain.Activities, error) {
	ctx, span := ar.tracer.Start(ctx, "ActivitySQLite.GetByUser")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	var rows []activityRow
	err := ar.store.db.SelectContext(ctx, &rows,
		`SELECT "user", task, action, title, createdAt FROM activity
		 WHERE "user" = ? ORDER BY createdAt DESC, id DESC LIMIT ?`,
		user, limit,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		ar.logger.Error("select activity", "user", user, "err", err)
		return nil, fmt.Errorf("listing activity: %w", err)
	}

	activities := make(domain.Activities, 0, len(rows))
	for _, r := range rows {
		activities = append(activities, domain.Activity{
			User:      r.User,
			Task:      r.Task,
			Action:    domain.Action(r.Action),
			Title:     r.Title,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return activities, nil
}
