package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

// Wednesday, March 18 2026. Week runs Sunday March 15 through Saturday
// March 21; month runs March 1 through March 31.
var now = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

func due(t time.Time) *time.Time { return &t }

func task(id string, dueDate *time.Time) model.Task {
	return model.Task{ID: id, Title: id, Type: model.TypeTask, Status: model.StatusPending, DueDate: dueDate}
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestPeriodToday(t *testing.T) {
	tasks := []model.Task{
		task("late-tonight", due(time.Date(2026, 3, 18, 23, 30, 0, 0, time.UTC))),
		task("tomorrow", due(time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC))),
		task("yesterday", due(time.Date(2026, 3, 17, 23, 59, 0, 0, time.UTC))),
	}
	got := Apply(tasks, Filter{Period: PeriodToday}, now)
	assert.Equal(t, []string{"late-tonight"}, ids(got))
}

func TestPeriodWeekIncludesStartBoundary(t *testing.T) {
	tasks := []model.Task{
		task("week-start", due(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))),
		task("before-week", due(time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC))),
		task("week-end", due(time.Date(2026, 3, 21, 23, 0, 0, 0, time.UTC))),
		task("next-week", due(time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC))),
	}
	got := Apply(tasks, Filter{Period: PeriodWeek, Sort: SortDate}, now)
	assert.Equal(t, []string{"week-start", "week-end"}, ids(got))
}

func TestPeriodMonthAndLater(t *testing.T) {
	inMonth := task("in-month", due(time.Date(2026, 3, 30, 10, 0, 0, 0, time.UTC)))
	nextMonth := task("next-month", due(time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)))
	tasks := []model.Task{inMonth, nextMonth}

	got := Apply(tasks, Filter{Period: PeriodMonth}, now)
	assert.Equal(t, []string{"in-month"}, ids(got))

	got = Apply(tasks, Filter{Period: PeriodLater}, now)
	assert.Equal(t, []string{"next-month"}, ids(got))
}

func TestNoDueDateOnlyInLaterAndAll(t *testing.T) {
	tasks := []model.Task{task("undated", nil)}

	for _, p := range []Period{PeriodToday, PeriodWeek, PeriodMonth} {
		assert.Empty(t, Apply(tasks, Filter{Period: p}, now), "period %s", p)
	}
	assert.Len(t, Apply(tasks, Filter{Period: PeriodLater}, now), 1)
	assert.Len(t, Apply(tasks, Filter{Period: PeriodAll}, now), 1)
}

func TestDueDatedDaysThisMonthLeaveNoGaps(t *testing.T) {
	// Every day of the current month shows up under at least one of
	// today/week/month.
	for day := 1; day <= 31; day++ {
		d := time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
		tasks := []model.Task{task("t", due(d))}
		matched := false
		for _, p := range []Period{PeriodToday, PeriodWeek, PeriodMonth} {
			if len(Apply(tasks, Filter{Period: p}, now)) > 0 {
				matched = true
			}
		}
		assert.True(t, matched, "day %d unmatched", day)
	}
}

func TestArchivedOnlyInArchivePeriod(t *testing.T) {
	archived := task("archived", due(now))
	archived.Archived = true
	live := task("live", due(now))
	tasks := []model.Task{archived, live}

	got := Apply(tasks, Filter{Period: PeriodAll}, now)
	assert.Equal(t, []string{"live"}, ids(got))

	got = Apply(tasks, Filter{Period: PeriodToday}, now)
	assert.Equal(t, []string{"live"}, ids(got))

	got = Apply(tasks, Filter{Period: PeriodArchive}, now)
	assert.Equal(t, []string{"archived"}, ids(got))
}

func TestSearchMatchesTitleDescriptionCategory(t *testing.T) {
	a := task("a", nil)
	a.Title = "Buy groceries"
	b := task("b", nil)
	b.Description = "pick up GROCERY list"
	c := task("c", nil)
	c.Category = "groceries"
	d := task("d", nil)
	d.Title = "unrelated"
	tasks := []model.Task{a, b, c, d}

	got := Apply(tasks, Filter{Period: PeriodAll, Search: "grocer"}, now)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, ids(got))
}

func TestProjectAndCategoryFilters(t *testing.T) {
	a := task("a", nil)
	a.Project = "work"
	a.Category = "deep"
	b := task("b", nil)
	b.Project = "work"
	c := task("c", nil)
	c.Project = "home"
	tasks := []model.Task{a, b, c}

	got := Apply(tasks, Filter{Period: PeriodAll, Project: "work"}, now)
	assert.ElementsMatch(t, []string{"a", "b"}, ids(got))

	got = Apply(tasks, Filter{Period: PeriodAll, Project: ProjectAll}, now)
	assert.Len(t, got, 3)

	got = Apply(tasks, Filter{Period: PeriodAll, Category: "deep"}, now)
	assert.Equal(t, []string{"a"}, ids(got))
}

func TestSortDateUndatedSortEarliest(t *testing.T) {
	past := task("past", due(now.AddDate(0, 0, -10)))
	future := task("future", due(now.AddDate(0, 0, 10)))
	undated := task("undated", nil)
	tasks := []model.Task{future, past, undated}

	got := Apply(tasks, Filter{Period: PeriodAll, Sort: SortDate}, now)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"undated", "past", "future"}, ids(got))
}

func TestSortPriorityDescending(t *testing.T) {
	none := task("none", nil)
	low := task("low", nil)
	low.Priority = model.PriorityLow
	high := task("high", nil)
	high.Priority = model.PriorityHigh
	med := task("med", nil)
	med.Priority = model.PriorityMedium
	tasks := []model.Task{none, low, high, med}

	got := Apply(tasks, Filter{Period: PeriodAll, Sort: SortPriority}, now)
	assert.Equal(t, []string{"high", "med", "low", "none"}, ids(got))
}

func TestSortCategoryEmptyLast(t *testing.T) {
	empty := task("empty", nil)
	zebra := task("zebra", nil)
	zebra.Category = "zebra"
	alpha := task("alpha", nil)
	alpha.Category = "alpha"
	tasks := []model.Task{empty, zebra, alpha}

	got := Apply(tasks, Filter{Period: PeriodAll, Sort: SortCategory}, now)
	assert.Equal(t, []string{"alpha", "zebra", "empty"}, ids(got))
}

func TestSortTitleLocaleAware(t *testing.T) {
	b := task("b", nil)
	b.Title = "banana"
	a := task("a", nil)
	a.Title = "Apple"
	tasks := []model.Task{b, a}

	got := Apply(tasks, Filter{Period: PeriodAll, Sort: SortTitle}, now)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestApplyIsPure(t *testing.T) {
	tasks := []model.Task{
		task("b", due(now.AddDate(0, 0, 2))),
		task("a", due(now.AddDate(0, 0, 1))),
	}
	before := make([]model.Task, len(tasks))
	copy(before, tasks)

	f := Filter{Period: PeriodAll, Sort: SortDate}
	first := Apply(tasks, f, now)
	second := Apply(tasks, f, now)

	assert.Equal(t, first, second)
	assert.Equal(t, before, tasks, "input order must not change")
}
