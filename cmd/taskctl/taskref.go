package main

import (
	"fmt"
	"strconv"

	"task-management-app/client"
	"task-management-app/domain"
)

// resolveTask finds the task a command argument names. All-digit
// references are 1-based positions in the displayed list; anything else
// must be a task id.
func resolveTask(tasks domain.Tasks, ref string) (*domain.Task, error) {
	if isAllDigits(ref) {
		n, err := strconv.Atoi(ref)
		if err != nil || n < 1 || n > len(tasks) {
			return nil, fmt.Errorf("no task at position %s: %w", ref, client.ErrUnknownTask)
		}
		return tasks[n-1], nil
	}
	for _, t := range tasks {
		if t.Id == ref {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no task with id %q: %w", ref, client.ErrUnknownTask)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
