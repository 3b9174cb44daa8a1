package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"taskflow/internal/dates"
	"taskflow/internal/model"
	"taskflow/internal/query"
	"taskflow/internal/stats"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("taskflow")
	b.WriteString("\n\n")

	if m.mode == modeStats {
		b.WriteString(m.renderStats())
		b.WriteString("\n")
		b.WriteString(m.status)
		return b.String()
	}

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString("Nothing here. Press 'a' to add a task.")
		b.WriteString("\n")
	} else {
		now := time.Now()
		for i, t := range m.visible {
			cursor := " "
			if m.cursor == i && m.mode == modeList {
				cursor = ">"
			}

			checkbox := "[ ]"
			if t.Status == "completed" {
				checkbox = "[x]"
			} else if t.Status == "in-progress" {
				checkbox = "[~]"
			}

			extras := make([]string, 0, 4)
			if t.DueDate != nil {
				due := dates.FormatNatural(*t.DueDate, now)
				if t.DueDate.Before(now) && t.Status != "completed" {
					due += " (overdue)"
				}
				extras = append(extras, "due:"+due)
			}
			if t.Priority != "" {
				extras = append(extras, "prio:"+string(t.Priority))
			}
			if t.Category != "" {
				extras = append(extras, "cat:"+t.Category)
			}
			if t.Project != "" && t.Project != "default" {
				extras = append(extras, "proj:"+t.Project)
			}
			if t.Recurrence != nil {
				extras = append(extras, "repeats")
			}
			if len(t.Subtasks) > 0 {
				done := 0
				for _, st := range t.Subtasks {
					if st.Completed {
						done++
					}
				}
				extras = append(extras, fmt.Sprintf("sub:%d/%d", done, len(t.Subtasks)))
			}
			if total := totalLogged(t.TimeEntries); total > 0 {
				extras = append(extras, "logged:"+stats.FormatDuration(total))
			}

			body := fmt.Sprintf("%s %s %s", cursor, checkbox, t.Title)
			if t.Type != "task" {
				body += " (" + string(t.Type) + ")"
			}
			if len(extras) > 0 {
				body += " [" + strings.Join(extras, " | ") + "]"
			}
			b.WriteString(body)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch m.mode {
	case modeForm:
		b.WriteString(fmt.Sprintf("%s (%d/%d): ", formFields()[m.form.index], m.form.index+1, len(formFields())))
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeSearch:
		b.WriteString("Search: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeLogTime:
		b.WriteString("Log time: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case modeImport:
		b.WriteString("Import: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderTabs() string {
	var parts []string
	for _, p := range query.Periods() {
		label := string(p)
		if p == m.state.Filter.Period {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	line := strings.Join(parts, "  ")
	line += "   sort:" + string(m.state.Filter.Sort)
	if m.state.Filter.Search != "" {
		line += fmt.Sprintf("   search:%q", m.state.Filter.Search)
	}
	return line
}

func (m Model) renderStats() string {
	s := m.state.Stats()
	var b strings.Builder

	b.WriteString("Statistics\n\n")
	b.WriteString(fmt.Sprintf("Total: %d   Completed: %d (%d%%)   Overdue: %d\n\n",
		s.Total, s.Completed, s.CompletionRate, s.Overdue))

	b.WriteString("By category:\n")
	cats := make([]string, 0, len(s.ByCategory))
	for c := range s.ByCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		b.WriteString(fmt.Sprintf("  %-20s %d\n", c, s.ByCategory[c]))
	}

	b.WriteString("\nBy priority:\n")
	for _, p := range []string{"high", "medium", "low", "none"} {
		b.WriteString(fmt.Sprintf("  %-20s %d\n", p, s.ByPriority[p]))
	}

	if s.TotalTime > 0 {
		b.WriteString("\nTime logged: " + stats.FormatDuration(s.TotalTime) + "\n")
	}

	b.WriteString(fmt.Sprintf("\nCompleted last 7 days: %d\n", s.CompletedWeek))
	b.WriteString(fmt.Sprintf("Completed last 30 days: %d\n", s.CompletedMonth))
	b.WriteString(fmt.Sprintf("Average per day: %.1f\n", s.AvgPerDay))
	return b.String()
}

func (m Model) renderHelp() string {
	k := m.cfg.Keys
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s toggle • %s delete • %s archive • %s search • %s period • %s sort • %s undo • %s redo • %s stats • %s log • %s export • %s import • %s clear done • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Toggle, k.Delete, k.Archive, k.Search,
		k.Period, k.Sort, k.Undo, k.Redo, k.Stats, k.LogTime, k.Export, k.Import, k.ClearDone, k.Quit)
}

func totalLogged(entries []model.TimeEntry) time.Duration {
	var total time.Duration
	for _, e := range entries {
		total += e.Duration()
	}
	return total
}
