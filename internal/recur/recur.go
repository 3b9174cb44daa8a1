// Package recur materializes the next occurrence of completed recurring
// tasks.
package recur

import (
	"time"

	"taskflow/internal/model"
)

// monthlyWindow is the elapsed-time gate for monthly recurrence. The next
// due date uses true calendar-month arithmetic, but the "has enough time
// passed since we last spawned" check approximates a month as 30 days.
const monthlyWindow = 30 * 24 * time.Hour

// Run scans the collection and appends at most one new occurrence per
// eligible task, stamping the original's LastCreated in the same pass so
// a second run in the same tick creates nothing. Tasks with malformed
// recurrence data are skipped; the rest still get processed. Returns the
// grown slice and the number of tasks created.
func Run(tasks []model.Task, now time.Time) ([]model.Task, int) {
	created := 0
	for i := range tasks {
		t := &tasks[i]
		if t.Recurrence == nil || t.Status != model.StatusCompleted || t.DueDate == nil {
			continue
		}
		next, window, ok := nextOccurrence(*t.DueDate, t.Recurrence)
		if !ok {
			continue
		}
		last := t.Recurrence.LastCreated
		shouldCreate := last == nil || now.Sub(*last) >= window
		if !shouldCreate || next.After(now) {
			continue
		}
		if end := t.Recurrence.EndDate; end != nil && next.After(*end) {
			continue
		}
		// Clone before stamping so the new occurrence inherits the
		// pre-stamp lastCreated, and stamp before appending: append may
		// reallocate the backing array, stranding a write through t.
		occ := spawn(*t, next, now)
		stamp := now
		t.Recurrence.LastCreated = &stamp
		tasks = append(tasks, occ)
		created++
	}
	return tasks, created
}

func nextOccurrence(due time.Time, r *model.Recurrence) (next time.Time, window time.Duration, ok bool) {
	switch r.Type {
	case model.RecurDaily:
		return due.AddDate(0, 0, 1), 24 * time.Hour, true
	case model.RecurWeekly:
		return due.AddDate(0, 0, 7), 7 * 24 * time.Hour, true
	case model.RecurMonthly:
		return due.AddDate(0, 1, 0), monthlyWindow, true
	case model.RecurCustom:
		interval := r.Interval
		if interval < 1 {
			interval = 1
		}
		return due.AddDate(0, 0, interval), time.Duration(interval) * 24 * time.Hour, true
	default:
		return time.Time{}, 0, false
	}
}

// spawn builds the next occurrence: fresh id, pending status, due on
// nextDate, subtask completion reset, tracking logs emptied.
func spawn(orig model.Task, nextDate, now time.Time) model.Task {
	t := orig.Clone()
	t.ID = model.NewID()
	t.DueDate = &nextDate
	t.Status = model.StatusPending
	t.CompletedAt = nil
	t.CreatedAt = now
	t.TimeEntries = nil
	t.Reminders = nil
	t.Archived = false
	t.ArchivedAt = nil
	for i := range t.Subtasks {
		t.Subtasks[i].Completed = false
	}
	return t
}
