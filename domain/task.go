package domain

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	Id          string    `json:"_id"`
	User        string    `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Completed   bool      `json:"completed"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Tasks []*Task

// OrderPair is one entry of a reorder request.
type OrderPair struct {
	Id    string `json:"id"`
	Order int    `json:"order"`
}

// TaskDraft is the input of a create. Empty description and priority take
// their defaults.
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// TaskPatch carries a partial update. Nil fields keep their stored value.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
}

// NewTaskID returns a fresh opaque task identifier. Both store backends use
// the same ObjectID hex form so ids stay portable between them.
func NewTaskID() string {
	return primitive.NewObjectID().Hex()
}

func (t *Tasks) ToJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	return encoder.Encode(t)
}

func (t *Tasks) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(t)
}

func (t *Task) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(t)
}

func (t *Task) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(t)
}

// Apply copies every non-nil field of the patch onto the task.
func (t *Task) Apply(p TaskPatch) {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

// Less reports whether a sorts before b: order ascending, then newest first.
func Less(a, b *Task) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Sort orders the list in place by Less. The sort is stable so tasks that
// tie on both keys keep their incoming order.
func (t Tasks) Sort() {
	sort.SliceStable(t, func(i, j int) bool { return Less(t[i], t[j]) })
}

// MaxOrder returns the highest order among the tasks and false when the list
// is empty.
func (t Tasks) MaxOrder() (int, bool) {
	if len(t) == 0 {
		return 0, false
	}
	max := t[0].Order
	for _, task := range t[1:] {
		if task.Order > max {
			max = task.Order
		}
	}
	return max, true
}

// Stats summarises a task list. It is always derived from the list.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func (t Tasks) Stats() Stats {
	s := Stats{Total: len(t)}
	for _, task := range t {
		if task.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// Percent is the completed share rounded to a whole percent.
func (s Stats) Percent() int {
	if s.Total == 0 {
		return 0
	}
	return (s.Completed*100 + s.Total/2) / s.Total
}
