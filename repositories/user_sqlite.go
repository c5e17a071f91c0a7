package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type userRow struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	CreatedAt time.Time `db:"createdAt"`
}

type userSQLiteRepository struct {
	store  *SQLiteStore
	logger *log.Logger
	tracer trace.Tracer
}

func NewUserSQLite(store *SQLiteStore, logger *log.Logger, tracer trace.Tracer) domain.UserRepository {
	return &userSQLiteRepository{
		store:  store,
		logger: logger,
		tracer: tracer,
	}
}

func (ur *userSQLiteRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, span := ur.tracer.Start(ctx, "UserSQLite.Insert")
	defer span.End()
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	if user.Id == "" {
		user.Id = primitive.NewObjectID().Hex()
	}

	_, err := ur.store.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password, createdAt) VALUES (?, ?, ?, ?, ?)`,
		user.Id, user.Name, user.Email, user.Password, user.CreatedAt.UTC(),
	)
	if err != nil {
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return domain.User{}, domain.ErrUserAlreadyExists()
		}
		span.SetStatus(codes.Error, err.Error())
		ur.logger.Error("insert user", "err", err)
		return domain.User{}, fmt.Errorf("inserting user: %w", err)
	}

	return user, nil
}

func (ur *userSQLiteRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := ur.tracer.Start(ctx, "UserSQLite.GetByEmail")
	defer span.End()

	return ur.getWhere(ctx, "email", email)
}

func (ur *userSQLiteRepository) GetById(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := ur.tracer.Start(ctx, "UserSQLite.GetById")
	defer span.End()

	return ur.getWhere(ctx, "id", id)
}

// getWhere looks a user up by one column. column is never caller input.
func (ur *userSQLiteRepository) getWhere(ctx context.Context, column, value string) (*domain.User, error) {
	ctx, cancel := withStoreTimeout(ctx)
	defer cancel()

	var r userRow
	err := ur.store.db.GetContext(ctx, &r,
		`SELECT id, name, email, password, createdAt FROM users WHERE `+column+` = ?`, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound()
	}
	if err != nil {
		ur.logger.Error("select user", column, value, "err", err)
		return nil, fmt.Errorf("reading user: %w", err)
	}

	return &domain.User{
		Id:        r.Id,
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}
