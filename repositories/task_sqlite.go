package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const taskColumns = `id, "user", title, description, priority, completed, "order", createdAt, updatedAt`

type taskRow struct {
	Id          string    `db:"id"`
	User        string    `db:"user"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Priority    string    `db:"priority"`
	Completed   bool      `db:"completed"`
	Order       int       `db:"order"`
	CreatedAt   time.Time `db:"createdAt"`
	UpdatedAt   time.Time `db:"updatedAt"`
}

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		Id:          r.Id,
		User:        r.User,
		Title:       r.Title,
		Description: r.Description,
		Priority:    domain.Priority(r.Priority),
		Completed:   r.Completed,
		Order:       r.Order,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type taskSQLiteRepository struct {
	store  *SQLiteStore
	logger *log.Logger
	tracer trace.Tracer
}

func NewTaskSQLite(store *SQLiteStore, logger *log.Logger, tracer trace.Tracer) domain.TaskRepository {
	return &taskSQLiteRepository{
		store:  store,
		logger: logger,
		tracer: tracer,
	}
}

func (tr *taskSQLiteRepository) GetByUser(ctx context.Context, user string) (domain.Tasks, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskSQLite.GetByUser")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	var rows []taskRow
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE "user" = ? ORDER BY "order" ASC, createdAt DESC`
	if err := tr.store.db.SelectContext(ctx, &rows, query, user); err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("select tasks", "user", user, "err", err)
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	tasks := make(domain.Tasks, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

func (tr *taskSQLiteRepository) MaxOrder(ctx context.Context, user string) (int, bool, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskSQLite.MaxOrder")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	var max sql.NullInt64
	if err := tr.store.db.GetContext(ctx, &max, `SELECT MAX("order") FROM tasks WHERE "user" = ?`, user); err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("select max order", "user", user, "err", err)
		return 0, false, fmt.Errorf("reading max order: %w", err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int64), true, nil
}

func (tr *taskSQLiteRepository) Insert(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskSQLite.Insert")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	_, err := tr.store.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Id, task.User, task.Title, task.Description, task.Priority.String(),
		boolToInt(task.Completed), task.Order, task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("insert task", "user", task.User, "err", err)
		return domain.Task{}, fmt.Errorf("inserting task: %w", err)
	}

	tr.logger.Debug("task inserted", "id", task.Id, "order", task.Order)
	return task, nil
}

func (tr *taskSQLiteRepository) FindByIdAndUser(ctx context.Context, id, user string) (*domain.Task, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskSQLite.FindByIdAndUser")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	return tr.get(ctx, id, user)
}

func (tr *taskSQLiteRepository) get(ctx context.Context, id, user string) (*domain.Task, error) {
	var r taskRow
	err := tr.store.db.GetContext(ctx, &r,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND "user" = ?`, id, user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTaskNotFound()
	}
	if err != nil {
		tr.logger.Error("select task", "id", id, "err", err)
		return nil, fmt.Errorf("reading task: %w", err)
	}
	return r.toDomain(), nil
}

func (tr *taskSQLiteRepository) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskSQLite.Update")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	res, err := tr.store.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, priority = ?, completed = ?, updatedAt = ?
		 WHERE id = ? AND "user" = ?`,
		task.Title, task.Description, task.Priority.String(), boolToInt(task.Completed),
		task.UpdatedAt.UTC(), task.Id, task.User,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("update task", "id", task.Id, "err", err)
		return domain.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Task{}, domain.ErrTaskNotFound()
	}

	updated, err := tr.get(ctx, task.Id, task.User)
	if err != nil {
		return domain.Task{}, err
	}
	tr.logger.Debug("task updated", "id", task.Id)
	return *updated, nil
}

func (tr *taskSQLiteRepository) Delete(ctx context.Context, id, user string) error {
	ctx, span := tr.tracer.Start(ctx, "TaskSQLite.Delete")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	res, err := tr.store.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND "user" = ?`, id, user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("delete task", "id", id, "err", err)
		return fmt.Errorf("deleting task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound()
	}

	tr.logger.Debug("task deleted", "id", id)
	return nil
}

func (tr *taskSQLiteRepository) SetOrder(ctx context.Context, id, user string, order int, updatedAt time.Time) (bool, error) {
	ctx, span := tr.tracer.Start(ctx, "TaskSQLite.SetOrder")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	res, err := tr.store.db.ExecContext(ctx,
		`UPDATE tasks SET "order" = ?, updatedAt = ? WHERE id = ? AND "user" = ?`,
		order, updatedAt.UTC(), id, user,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		tr.logger.Error("set task order", "id", id, "err", err)
		return false, fmt.Errorf("setting task order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
