package domain

import "time"

type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionCompleted Action = "completed"
	ActionReopened  Action = "reopened"
	ActionDeleted   Action = "deleted"
	ActionReordered Action = "reordered"
)

// Activity is one entry of a user's append-only task history.
type Activity struct {
	User      string    `json:"user"`
	Task      string    `json:"task"`
	Action    Action    `json:"action"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type Activities []Activity
