package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"task-management-app/domain"
	"task-management-app/repositories"
	"task-management-app/testutil"
)

type fixture struct {
	tasks    *TaskService
	ordering *OrderingService
	activity *ActivityService
	repo     domain.TaskRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := testutil.NewTestStore(t)
	logger, tracer := testutil.Logger(), testutil.Tracer()

	repo := repositories.NewTaskSQLite(store, logger, tracer)
	ordering := NewOrderingService(repo, logger, tracer)
	activity := NewActivityService(repositories.NewActivitySQLite(store, logger, tracer), logger, tracer)
	return fixture{
		tasks:    NewTaskService(repo, ordering, activity, logger, tracer),
		ordering: ordering,
		activity: activity,
		repo:     repo,
	}
}

func (f fixture) create(t *testing.T, owner, title string) domain.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), owner, domain.TaskDraft{Title: title})
	if err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return task
}

func TestCreateDefaultsAndOrder(t *testing.T) {
	f := newFixture(t)

	first := f.create(t, "u1", "Write spec")
	if first.Title != "Write spec" || first.Priority != domain.MEDIUM || first.Completed || first.Order != 0 {
		t.Errorf("first task = %+v", first)
	}
	if first.Description != "" {
		t.Errorf("Description = %q, want empty", first.Description)
	}

	second := f.create(t, "u1", "Review spec")
	if second.Order != 1 {
		t.Errorf("second Order = %d, want 1", second.Order)
	}

	other := f.create(t, "u2", "Unrelated")
	if other.Order != 0 {
		t.Errorf("other owner's first Order = %d, want 0", other.Order)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		draft domain.TaskDraft
		field string
	}{
		{"empty title", domain.TaskDraft{Title: ""}, "title"},
		{"blank title", domain.TaskDraft{Title: "   \t"}, "title"},
		{"bad priority", domain.TaskDraft{Title: "ok", Priority: "urgent"}, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tasks.Create(context.Background(), "u1", tt.draft)
			var v *domain.ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if len(v.Errors) != 1 || v.Errors[0].Field != tt.field {
				t.Errorf("errors = %+v, want one on %q", v.Errors, tt.field)
			}
		})
	}

	tasks, err := f.tasks.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("rejected creates stored %d tasks", len(tasks))
	}
}

func TestCreateWithoutOwner(t *testing.T) {
	f := newFixture(t)

	_, err := f.tasks.Create(context.Background(), "", domain.TaskDraft{Title: "orphan"})
	if !errors.Is(err, domain.ErrOwnerNotFound()) {
		t.Errorf("err = %v, want owner not found", err)
	}
}

func TestListScopedToOwner(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.create(t, "other", "noise")
	}
	mine := f.create(t, "me", "mine")

	tasks, err := f.tasks.List(context.Background(), "me")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Id != mine.Id {
		t.Errorf("List(me) = %v", tasks)
	}
}

func TestUpdateCompletedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.tasks.Create(ctx, "u1", domain.TaskDraft{Title: "Write spec", Description: "draft", Priority: domain.HIGH})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done := true
	updated, err := f.tasks.Update(ctx, "u1", created.Id, domain.TaskPatch{Completed: &done})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !updated.Completed {
		t.Error("Completed not set")
	}
	if updated.Title != created.Title || updated.Description != created.Description || updated.Priority != created.Priority {
		t.Errorf("untouched fields changed: before %+v after %+v", created, updated)
	}
	if updated.UpdatedAt.Before(created.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v < %v", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestUpdateTimestampMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, "u1", "clock skew")

	f.tasks.now = func() time.Time { return created.UpdatedAt.Add(-time.Hour) }

	title := "renamed"
	updated, err := f.tasks.Update(ctx, "u1", created.Id, domain.TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want held at %v", updated.UpdatedAt, created.UpdatedAt)
	}
}

func TestUpdateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "mine")

	blank := "  "
	var v *domain.ValidationError
	if _, err := f.tasks.Update(ctx, "u1", task.Id, domain.TaskPatch{Title: &blank}); !errors.As(err, &v) {
		t.Errorf("blank title: err = %v, want ValidationError", err)
	}

	done := true
	if _, err := f.tasks.Update(ctx, "u2", task.Id, domain.TaskPatch{Completed: &done}); !errors.Is(err, domain.ErrTaskNotFound()) {
		t.Errorf("other owner: err = %v, want not found", err)
	}
	if _, err := f.tasks.Update(ctx, "u1", domain.NewTaskID(), domain.TaskPatch{Completed: &done}); !errors.Is(err, domain.ErrTaskNotFound()) {
		t.Errorf("unknown id: err = %v, want not found", err)
	}
}

func TestDeleteTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "short lived")

	if err := f.tasks.Delete(ctx, "u2", task.Id); !errors.Is(err, domain.ErrTaskNotFound()) {
		t.Errorf("Delete by other owner: err = %v, want not found", err)
	}
	if err := f.tasks.Delete(ctx, "u1", task.Id); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := f.tasks.Delete(ctx, "u1", task.Id); !errors.Is(err, domain.ErrTaskNotFound()) {
		t.Errorf("second Delete: err = %v, want not found", err)
	}
}

func TestReorderSkipsForeignTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.create(t, "u1", "A")
	b := f.create(t, "u1", "B")
	c := f.create(t, "u1", "C")
	foreign := f.create(t, "u2", "foreign")

	sorted, err := f.tasks.Reorder(ctx, "u1", []domain.OrderPair{
		{Id: a.Id, Order: 2},
		{Id: b.Id, Order: 1},
		{Id: c.Id, Order: 0},
		{Id: foreign.Id, Order: 9},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	want := []string{"C", "B", "A"}
	if len(sorted) != len(want) {
		t.Fatalf("Reorder returned %d tasks, want %d", len(sorted), len(want))
	}
	for i, title := range want {
		if sorted[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, sorted[i].Title, title)
		}
	}

	theirs, err := f.tasks.List(ctx, "u2")
	if err != nil {
		t.Fatalf("List(u2): %v", err)
	}
	if theirs[0].Order != 0 {
		t.Errorf("foreign task order = %d, want unchanged 0", theirs[0].Order)
	}
}

func TestActivityRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.create(t, "u1", "tracked")

	done := true
	if _, err := f.tasks.Update(ctx, "u1", task.Id, domain.TaskPatch{Completed: &done}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := f.tasks.Delete(ctx, "u1", task.Id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	entries, err := f.activity.List(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("List activity: %v", err)
	}

	got := make(map[domain.Action]bool)
	for _, e := range entries {
		got[e.Action] = true
		if e.User != "u1" {
			t.Errorf("entry of %q in u1's history", e.User)
		}
	}
	for _, action := range []domain.Action{domain.ActionCreated, domain.ActionCompleted, domain.ActionDeleted} {
		if !got[action] {
			t.Errorf("missing %s entry in %v", action, entries)
		}
	}
}
