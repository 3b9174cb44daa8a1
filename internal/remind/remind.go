// Package remind scans tasks for reminders that have come due.
package remind

import (
	"time"

	"taskflow/internal/model"
)

// Notice is a fired reminder, ready for whatever delivery channel the
// caller has. It carries ids only for display; by the time it is shown
// the task may already be gone, and that is fine.
type Notice struct {
	TaskID  string
	Title   string
	Message string
	Due     time.Time
}

// Check walks the live collection and fires any reminder whose trigger
// time has arrived and whose sent stamp does not already cover the
// current trigger. Sent stamps are the only mutation; completed and
// undated tasks are skipped. Returns the fired notices in scan order.
func Check(tasks []model.Task, now time.Time) []Notice {
	var fired []Notice
	for i := range tasks {
		t := &tasks[i]
		if t.DueDate == nil || t.Status == model.StatusCompleted || len(t.Reminders) == 0 {
			continue
		}
		due := *t.DueDate
		for j := range t.Reminders {
			r := &t.Reminders[j]
			trigger := due.Add(-time.Duration(r.BeforeMinutes) * time.Minute)
			if now.Before(trigger) {
				continue
			}
			if r.Sent != nil && !r.Sent.Before(trigger) {
				continue
			}
			msg := r.Message
			if msg == "" {
				msg = "Due " + due.Format("Jan 2 15:04")
			}
			fired = append(fired, Notice{
				TaskID:  t.ID,
				Title:   t.Title,
				Message: msg,
				Due:     due,
			})
			stamp := now
			r.Sent = &stamp
		}
	}
	return fired
}
