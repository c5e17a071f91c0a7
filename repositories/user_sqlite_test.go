package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"task-management-app/domain"
	"task-management-app/repositories"
	"task-management-app/testutil"
)

func TestUserSQLite(t *testing.T) {
	repo := repositories.NewUserSQLite(testutil.NewTestStore(t), testutil.Logger(), testutil.Tracer())
	ctx := context.Background()

	user, err := repo.Insert(ctx, domain.User{
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Password:  "hash",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if user.Id == "" {
		t.Fatal("Insert did not assign an id")
	}

	_, err = repo.Insert(ctx, domain.User{Name: "Imposter", Email: "ada@example.com", Password: "x"})
	if !errors.Is(err, domain.ErrUserAlreadyExists()) {
		t.Errorf("duplicate Insert: err = %v, want already exists", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.Id != user.Id || byEmail.Password != "hash" {
		t.Errorf("GetByEmail = %+v", byEmail)
	}

	byId, err := repo.GetById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetById: %v", err)
	}
	if byId.Email != "ada@example.com" {
		t.Errorf("GetById = %+v", byId)
	}

	if _, err := repo.GetByEmail(ctx, "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound()) {
		t.Errorf("GetByEmail unknown: err = %v, want not found", err)
	}
}
