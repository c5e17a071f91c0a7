package domain

import (
	"context"
	"time"
)

// TaskRepository is the Task Store. Every method is scoped by owner; a task
// of another owner behaves exactly like a missing one.
type TaskRepository interface {
	// GetByUser returns the owner's tasks sorted by order asc, createdAt desc.
	GetByUser(ctx context.Context, user string) (Tasks, error)
	// MaxOrder returns the owner's highest order and false if they have no tasks.
	MaxOrder(ctx context.Context, user string) (int, bool, error)
	Insert(ctx context.Context, task Task) (Task, error)
	FindByIdAndUser(ctx context.Context, id, user string) (*Task, error)
	// Update writes every mutable field of task and returns the stored record.
	Update(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id, user string) error
	// SetOrder reports whether a task owned by user matched id.
	SetOrder(ctx context.Context, id, user string, order int, updatedAt time.Time) (bool, error)
}

type UserRepository interface {
	Insert(ctx context.Context, user User) (User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetById(ctx context.Context, id string) (*User, error)
}

type ActivityRepository interface {
	Append(ctx context.Context, activity Activity) error
	// GetByUser returns at most limit entries, newest first.
	GetByUser(ctx context.Context, user string, limit int) (Activities, error)
}
