// Package query derives ordered views of the task collection. Apply is a
// pure function: identical inputs and an identical now yield identical
// output, and the input slice is never mutated.
package query

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskflow/internal/model"
)

type Period string

const (
	PeriodToday   Period = "today"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodLater   Period = "later"
	PeriodArchive Period = "archive"
	PeriodAll     Period = "all"
)

// Periods lists the selectable periods in tab order.
func Periods() []Period {
	return []Period{PeriodAll, PeriodToday, PeriodWeek, PeriodMonth, PeriodLater, PeriodArchive}
}

type Sort string

const (
	SortDate     Sort = "date"
	SortPriority Sort = "priority"
	SortCategory Sort = "category"
	SortTitle    Sort = "title"
)

func Sorts() []Sort {
	return []Sort{SortDate, SortPriority, SortCategory, SortTitle}
}

// ProjectAll disables project filtering.
const ProjectAll = "all"

type Filter struct {
	Period   Period
	Search   string
	Category string
	Project  string
	Sort     Sort
}

var collator = collate.New(language.English, collate.IgnoreCase)

// Apply runs the full pipeline: period filter, archive exclusion, project
// filter, text search, category filter, then a stable sort.
func Apply(tasks []model.Task, f Filter, now time.Time) []model.Task {
	if f.Period == "" {
		f.Period = PeriodAll
	}
	if f.Sort == "" {
		f.Sort = SortDate
	}

	out := make([]model.Task, 0, len(tasks))
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, t := range tasks {
		if !inPeriod(t, f.Period, now) {
			continue
		}
		if t.Archived && f.Period != PeriodArchive {
			continue
		}
		if f.Project != "" && f.Project != ProjectAll && t.Project != f.Project {
			continue
		}
		if search != "" && !matchesSearch(t, search) {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		out = append(out, t)
	}

	sortTasks(out, f.Sort)
	return out
}

// inPeriod evaluates the mutually exclusive due-date windows against the
// current moment, in local time. Tasks without a due date belong only to
// "later" and "all".
func inPeriod(t model.Task, p Period, now time.Time) bool {
	if p == PeriodArchive {
		return t.Archived
	}
	if t.DueDate == nil {
		return p == PeriodLater || p == PeriodAll
	}

	due := *t.DueDate
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -int(today.Weekday())) // week starts Sunday
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)

	switch p {
	case PeriodToday:
		return startOfDay(due).Equal(today)
	case PeriodWeek:
		return !due.Before(weekStart) && due.Before(weekStart.AddDate(0, 0, 7))
	case PeriodMonth:
		return !due.Before(monthStart) && due.Before(nextMonth)
	case PeriodLater:
		return due.After(nextMonth)
	case PeriodAll:
		return true
	default:
		return true
	}
}

func matchesSearch(t model.Task, search string) bool {
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.Description), search) ||
		strings.Contains(strings.ToLower(t.Category), search)
}

func sortTasks(tasks []model.Task, key Sort) {
	switch key {
	case SortPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		})
	case SortCategory:
		sort.SliceStable(tasks, func(i, j int) bool {
			a, b := tasks[i].Category, tasks[j].Category
			// Uncategorized tasks sort after everything else.
			if (a == "") != (b == "") {
				return b == ""
			}
			return collator.CompareString(a, b) < 0
		})
	case SortTitle:
		sort.SliceStable(tasks, func(i, j int) bool {
			return collator.CompareString(tasks[i].Title, tasks[j].Title) < 0
		})
	default: // SortDate
		sort.SliceStable(tasks, func(i, j int) bool {
			return dueOrEpoch(tasks[i]).Before(dueOrEpoch(tasks[j]))
		})
	}
}

// dueOrEpoch maps a missing due date to the Unix epoch so undated tasks
// sort before any dated ones.
func dueOrEpoch(t model.Task) time.Time {
	if t.DueDate == nil {
		return time.Unix(0, 0)
	}
	return *t.DueDate
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
