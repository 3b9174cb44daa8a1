// Package stats folds the task collection into read-only aggregates.
package stats

import (
	"fmt"
	"math"
	"time"

	"taskflow/internal/model"
)

// UncategorizedBucket collects tasks with no category.
const UncategorizedBucket = "Uncategorized"

type Summary struct {
	Total          int
	Completed      int
	CompletionRate int // rounded percent, 0 when Total is 0
	Overdue        int
	ByCategory     map[string]int
	ByPriority     map[string]int
	TotalTime      time.Duration
	CompletedWeek  int // trailing 7 days by completedAt
	CompletedMonth int // trailing 30 days by completedAt
	AvgPerDay      float64
}

// Compute folds over the non-archived tasks. Pure: neither the collection
// nor its records are modified.
func Compute(tasks []model.Task, now time.Time) Summary {
	s := Summary{
		ByCategory: map[string]int{},
		ByPriority: map[string]int{
			string(model.PriorityHigh):   0,
			string(model.PriorityMedium): 0,
			string(model.PriorityLow):    0,
			"none":                       0,
		},
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	monthAgo := now.Add(-30 * 24 * time.Hour)

	for _, t := range tasks {
		if t.Archived {
			continue
		}
		s.Total++
		if t.Status == model.StatusCompleted {
			s.Completed++
		}
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != model.StatusCompleted {
			s.Overdue++
		}

		cat := t.Category
		if cat == "" {
			cat = UncategorizedBucket
		}
		s.ByCategory[cat]++

		pri := string(t.Priority)
		if pri == "" {
			pri = "none"
		}
		s.ByPriority[pri]++

		for _, e := range t.TimeEntries {
			s.TotalTime += e.Duration()
		}

		if t.CompletedAt != nil {
			if !t.CompletedAt.Before(weekAgo) {
				s.CompletedWeek++
			}
			if !t.CompletedAt.Before(monthAgo) {
				s.CompletedMonth++
			}
		}
	}

	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	// Fixed 30-day divisor, even when the dataset is younger than that.
	s.AvgPerDay = float64(s.CompletedMonth) / 30

	return s
}

// FormatDuration renders a duration the way the tracker displays logged
// time: "2h 5m", "3m 20s", or "45s".
func FormatDuration(d time.Duration) string {
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
