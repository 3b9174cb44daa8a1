package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultProjectID is the protected project every task falls back to.
const DefaultProjectID = "default"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = ""
)

// Rank orders priorities for sorting, highest first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type Type string

const (
	TypeTask Type = "task"
	TypeIdea Type = "idea"
	TypeNote Type = "note"
)

type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurCustom  RecurrenceType = "custom"
)

type Recurrence struct {
	Type        RecurrenceType `json:"type"`
	Interval    int            `json:"interval,omitempty"`
	EndDate     *time.Time     `json:"endDate,omitempty"`
	LastCreated *time.Time     `json:"lastCreated,omitempty"`
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// TimeEntry is one appended slice of logged work. Durations travel as
// whole milliseconds on the wire, matching the 1.0 export format.
type TimeEntry struct {
	Date       time.Time `json:"date"`
	DurationMS int64     `json:"durationMs"`
	Note       string    `json:"note,omitempty"`
}

func (e TimeEntry) Duration() time.Duration {
	return time.Duration(e.DurationMS) * time.Millisecond
}

type Reminder struct {
	ID            string     `json:"id"`
	BeforeMinutes int        `json:"beforeMinutes"`
	Message       string     `json:"message,omitempty"`
	Sent          *time.Time `json:"sent,omitempty"`
}

// Task is the central record: a to-do or idea with scheduling,
// categorization, and tracking metadata.
type Task struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Type        Type        `json:"type"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	Priority    Priority    `json:"priority,omitempty"`
	Category    string      `json:"category,omitempty"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	Subtasks    []Subtask   `json:"subtasks,omitempty"`
	Project     string      `json:"project,omitempty"`
	Recurrence  *Recurrence `json:"recurrence,omitempty"`
	TimeEntries []TimeEntry `json:"timeEntries,omitempty"`
	Reminders   []Reminder  `json:"reminders,omitempty"`
	Archived    bool        `json:"archived,omitempty"`
	ArchivedAt  *time.Time  `json:"archivedAt,omitempty"`
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Template is a creation preset, not a live task.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaskData  Task      `json:"taskData"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewID() string {
	return uuid.NewString()
}

// Normalize fills load defaults and re-establishes the completedAt
// invariant. Safe to call on records imported from older exports.
func (t *Task) Normalize(now time.Time) {
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.Title == "" {
		t.Title = "Untitled"
	}
	if t.Type == "" {
		t.Type = TypeTask
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Project == "" {
		t.Project = DefaultProjectID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	// CompletedAt is non-nil iff the task is completed.
	if t.Status == StatusCompleted {
		if t.CompletedAt == nil {
			ts := now
			t.CompletedAt = &ts
		}
	} else {
		t.CompletedAt = nil
	}
	if !t.Archived {
		t.ArchivedAt = nil
	}
}

// SetStatus transitions status, keeping CompletedAt in sync.
func (t *Task) SetStatus(s Status, now time.Time) {
	t.Status = s
	if s == StatusCompleted {
		ts := now
		t.CompletedAt = &ts
	} else {
		t.CompletedAt = nil
	}
}

// Clone returns a deep copy sharing no pointers or slices with t.
func (t Task) Clone() Task {
	c := t
	c.DueDate = cloneTime(t.DueDate)
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.ArchivedAt = cloneTime(t.ArchivedAt)
	if t.Subtasks != nil {
		c.Subtasks = make([]Subtask, len(t.Subtasks))
		copy(c.Subtasks, t.Subtasks)
	}
	if t.TimeEntries != nil {
		c.TimeEntries = make([]TimeEntry, len(t.TimeEntries))
		copy(c.TimeEntries, t.TimeEntries)
	}
	if t.Reminders != nil {
		c.Reminders = make([]Reminder, len(t.Reminders))
		for i, r := range t.Reminders {
			r.Sent = cloneTime(r.Sent)
			c.Reminders[i] = r
		}
	}
	if t.Recurrence != nil {
		rc := *t.Recurrence
		rc.EndDate = cloneTime(t.Recurrence.EndDate)
		rc.LastCreated = cloneTime(t.Recurrence.LastCreated)
		c.Recurrence = &rc
	}
	return c
}

// CloneTasks deep-copies a whole collection, for snapshotting.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
