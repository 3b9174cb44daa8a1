package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

var now = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

func recurring(recType model.RecurrenceType, dueDate time.Time) model.Task {
	due := dueDate
	completed := now.Add(-time.Hour)
	return model.Task{
		ID:          model.NewID(),
		Title:       "water plants",
		Type:        model.TypeTask,
		Status:      model.StatusCompleted,
		CompletedAt: &completed,
		DueDate:     &due,
		Project:     model.DefaultProjectID,
		Recurrence:  &model.Recurrence{Type: recType},
	}
}

func TestDailyCreatesExactlyOnce(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	tasks := []model.Task{recurring(model.RecurDaily, yesterday)}

	tasks, created := Run(tasks, now)
	require.Equal(t, 1, created)
	require.Len(t, tasks, 2)

	orig, spawned := tasks[0], tasks[1]
	assert.NotNil(t, orig.Recurrence.LastCreated)
	assert.Equal(t, now, *orig.Recurrence.LastCreated)

	assert.NotEqual(t, orig.ID, spawned.ID)
	assert.Equal(t, model.StatusPending, spawned.Status)
	assert.Nil(t, spawned.CompletedAt)
	require.NotNil(t, spawned.DueDate)
	assert.Equal(t, yesterday.AddDate(0, 0, 1), *spawned.DueDate)
	assert.Empty(t, spawned.TimeEntries)
	assert.Empty(t, spawned.Reminders)
	assert.False(t, spawned.Archived)
	require.NotNil(t, spawned.Recurrence)
	assert.Nil(t, spawned.Recurrence.LastCreated, "spawn inherits the pre-stamp value")

	// Same tick, second pass: the stamp blocks a double create.
	tasks, created = Run(tasks, now)
	assert.Equal(t, 0, created)
	assert.Len(t, tasks, 2)
}

func TestCompletedSpawnCatchesUp(t *testing.T) {
	// After the engine has been offline, the chain catches up one link per
	// run: completing an overdue spawn materializes its own successor on
	// the next pass instead of waiting out a full period.
	tasks := []model.Task{recurring(model.RecurDaily, now.AddDate(0, 0, -4))}

	tasks, created := Run(tasks, now)
	require.Equal(t, 1, created)

	spawned := &tasks[1]
	spawned.SetStatus(model.StatusCompleted, now)

	later := now.Add(time.Hour)
	tasks, created = Run(tasks, later)
	require.Equal(t, 1, created, "overdue spawn must continue the chain")
	assert.Equal(t, tasks[1].DueDate.AddDate(0, 0, 1), *tasks[2].DueDate)
}

func TestFutureNextDateDoesNotCreate(t *testing.T) {
	task := recurring(model.RecurDaily, now) // next occurrence is tomorrow
	tasks, created := Run([]model.Task{task}, now)
	assert.Equal(t, 0, created)
	assert.Len(t, tasks, 1)
}

func TestOnlyCompletedTasksSpawn(t *testing.T) {
	task := recurring(model.RecurDaily, now.AddDate(0, 0, -1))
	task.Status = model.StatusPending
	task.CompletedAt = nil

	_, created := Run([]model.Task{task}, now)
	assert.Equal(t, 0, created)
}

func TestNoDueDateIsSkipped(t *testing.T) {
	task := recurring(model.RecurDaily, now)
	task.DueDate = nil

	tasks, created := Run([]model.Task{task}, now)
	assert.Equal(t, 0, created)
	assert.Len(t, tasks, 1)
}

func TestWeeklyElapsedGate(t *testing.T) {
	task := recurring(model.RecurWeekly, now.AddDate(0, 0, -8))
	recent := now.AddDate(0, 0, -3)
	task.Recurrence.LastCreated = &recent

	_, created := Run([]model.Task{task}, now)
	assert.Equal(t, 0, created, "three days since last spawn is inside the weekly window")

	stale := now.AddDate(0, 0, -8)
	task.Recurrence.LastCreated = &stale
	_, created = Run([]model.Task{task}, now)
	assert.Equal(t, 1, created)
}

func TestMonthlyUsesCalendarArithmeticForNextDate(t *testing.T) {
	due := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	task := recurring(model.RecurMonthly, due)

	tasks, created := Run([]model.Task{task}, now)
	require.Equal(t, 1, created)
	assert.Equal(t, due.AddDate(0, 1, 0), *tasks[1].DueDate)
}

func TestCustomInterval(t *testing.T) {
	task := recurring(model.RecurCustom, now.AddDate(0, 0, -4))
	task.Recurrence.Interval = 3

	tasks, created := Run([]model.Task{task}, now)
	require.Equal(t, 1, created)
	assert.Equal(t, task.DueDate.AddDate(0, 0, 3), *tasks[1].DueDate)
}

func TestMalformedRecurrenceSkippedOthersProcessed(t *testing.T) {
	broken := recurring("fortnightly", now.AddDate(0, 0, -1))
	good := recurring(model.RecurDaily, now.AddDate(0, 0, -1))

	tasks, created := Run([]model.Task{broken, good}, now)
	assert.Equal(t, 1, created)
	assert.Len(t, tasks, 3)
	assert.Nil(t, tasks[0].Recurrence.LastCreated)
}

func TestEndDateStopsFurtherOccurrences(t *testing.T) {
	task := recurring(model.RecurDaily, now.AddDate(0, 0, -1))
	end := now.AddDate(0, 0, -1)
	task.Recurrence.EndDate = &end

	_, created := Run([]model.Task{task}, now)
	assert.Equal(t, 0, created)
}

func TestSpawnResetsSubtasksAndCopiesDeep(t *testing.T) {
	task := recurring(model.RecurDaily, now.AddDate(0, 0, -1))
	task.Subtasks = []model.Subtask{
		{ID: "s1", Title: "fill can", Completed: true},
		{ID: "s2", Title: "water", Completed: false},
	}

	tasks, created := Run([]model.Task{task}, now)
	require.Equal(t, 1, created)

	spawned := tasks[1]
	require.Len(t, spawned.Subtasks, 2)
	assert.False(t, spawned.Subtasks[0].Completed)
	assert.False(t, spawned.Subtasks[1].Completed)

	spawned.Subtasks[0].Title = "changed"
	assert.Equal(t, "fill can", tasks[0].Subtasks[0].Title)
}
