package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/app"
	"taskflow/internal/config"
	"taskflow/internal/dates"
	"taskflow/internal/model"
	"taskflow/internal/query"
	"taskflow/internal/stats"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeSearch
	modeLogTime
	modeImport
	modeStats
)

// formState walks the user through the editable fields one input at a
// time, reusing the single textinput between them.
type formState struct {
	editID     string // empty when adding
	title      string
	descr      string
	due        string
	priority   string
	category   string
	recurrence string
	index      int
}

type Model struct {
	state      *app.State
	cfg        config.Config
	visible    []model.Task
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *model.Task
	form       *formState
	logTimeID  string
}

type engineTickMsg time.Time

func Run(state *app.State, cfg config.Config) error {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		state:  state,
		cfg:    cfg,
		status: "Press 'a' to add, space to toggle, '?' keys in help line below.",
		input:  ti,
		mode:   modeList,
	}
	m.state.Filter.Period = query.Period(cfg.DefaultPeriod)
	m.state.Filter.Sort = query.Sort(cfg.DefaultSort)
	m.refresh()

	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) engineInterval() time.Duration {
	return time.Duration(m.cfg.EngineIntervalSecs) * time.Second
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.engineInterval(), func(t time.Time) tea.Msg {
		return engineTickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case engineTickMsg:
		created, notices := m.state.RunEngines()
		if created > 0 {
			m.status = fmt.Sprintf("%d recurring task(s) created", created)
		}
		for _, n := range notices {
			m.status = fmt.Sprintf("Reminder: %s - %s", n.Title, n.Message)
		}
		m.refresh()
		return m, m.tick()
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateFormMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearchMode(msg.String(), msg)
		case modeLogTime:
			return m.updateLogTimeMode(msg.String(), msg)
		case modeImport:
			return m.updateImportMode(msg.String(), msg)
		case modeStats:
			m.mode = modeList
			m.status = ""
			return m, nil
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m *Model) refresh() {
	m.visible = m.state.Visible()
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m Model) current() *model.Task {
	if len(m.visible) == 0 {
		return nil
	}
	t := m.visible[m.cursor]
	return &t
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down:
		if len(m.visible) > 0 {
			m.cursor = clampCursor(m.cursor+1, len(m.visible))
		}
	case m.cfg.Keys.Up:
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}
	case m.cfg.Keys.Add:
		m.form = &formState{}
		m.startFormField()
		m.status = "New task: fill each field, Enter to advance, Esc to cancel"
	case m.cfg.Keys.Edit:
		t := m.current()
		if t == nil {
			m.status = "No tasks to edit"
			return m, nil
		}
		m.form = formFromTask(*t)
		m.startFormField()
		m.status = "Edit task: Enter to advance, Esc to cancel"
	case m.cfg.Keys.Toggle:
		t := m.current()
		if t == nil {
			return m, nil
		}
		if err := m.state.ToggleComplete(t.ID); err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.status = "Toggled task"
		m.refresh()
	case m.cfg.Keys.Delete:
		t := m.current()
		if t == nil {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = t
		m.status = fmt.Sprintf("Delete %q? y/n", t.Title)
	case m.cfg.Keys.Archive:
		t := m.current()
		if t == nil {
			return m, nil
		}
		var err error
		if t.Archived {
			err = m.state.UnarchiveTask(t.ID)
			m.status = "Task restored from archive"
		} else {
			err = m.state.ArchiveTask(t.ID)
			m.status = "Task archived"
		}
		if err != nil {
			m.status = fmt.Sprintf("archive failed: %v", err)
		}
		m.refresh()
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.SetValue(m.state.Filter.Search)
		m.input.Placeholder = "Search title/description/category"
		m.input.Focus()
		m.status = "Search: Enter to apply, Esc to clear"
	case m.cfg.Keys.Period:
		m.state.Filter.Period = nextPeriod(m.state.Filter.Period)
		m.cursor = 0
		m.refresh()
		m.status = "Period: " + string(m.state.Filter.Period)
	case m.cfg.Keys.Sort:
		m.state.Filter.Sort = nextSort(m.state.Filter.Sort)
		m.refresh()
		m.status = "Sort: " + string(m.state.Filter.Sort)
	case m.cfg.Keys.Undo:
		if err := m.state.Undo(); err != nil {
			m.status = "Nothing to undo"
		} else {
			m.status = "Undone"
		}
		m.refresh()
	case m.cfg.Keys.Redo:
		if err := m.state.Redo(); err != nil {
			m.status = "Nothing to redo"
		} else {
			m.status = "Redone"
		}
		m.refresh()
	case m.cfg.Keys.Stats:
		m.mode = modeStats
		m.status = "Any key to close"
	case m.cfg.Keys.LogTime:
		t := m.current()
		if t == nil {
			m.status = "No task selected"
			return m, nil
		}
		m.mode = modeLogTime
		m.logTimeID = t.ID
		m.input.SetValue("")
		m.input.Placeholder = "Duration, e.g. 1h30m or 25m"
		m.input.Focus()
		m.status = fmt.Sprintf("Log time for %q", t.Title)
	case m.cfg.Keys.Export:
		name := fmt.Sprintf("taskflow-export-%s.json", time.Now().Format("2006-01-02"))
		path := filepath.Join(m.cfg.ExportDir, name)
		if err := m.state.ExportToFile(path); err != nil {
			m.status = fmt.Sprintf("export failed: %v", err)
		} else {
			m.status = "Exported to " + path
		}
	case m.cfg.Keys.Import:
		m.mode = modeImport
		m.input.SetValue("")
		m.input.Placeholder = "Path to an exported .json file"
		m.input.Focus()
		m.status = "Import: Enter to load, Esc to cancel"
	case m.cfg.Keys.ClearDone:
		n := m.state.ClearCompleted()
		if n == 0 {
			m.status = "No completed tasks to clear"
		} else {
			m.status = fmt.Sprintf("%d completed task(s) cleared", n)
		}
		m.refresh()
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
	case "y", "Y":
		if m.pendingDel != nil {
			if err := m.state.DeleteTask(m.pendingDel.ID); err != nil {
				m.status = fmt.Sprintf("delete failed: %v", err)
			} else {
				m.status = "Deleted task"
			}
		}
		m.confirmDel = false
		m.pendingDel = nil
		m.refresh()
	}
	return m, nil
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.state.Filter.Search = ""
		m.mode = modeList
		m.input.Blur()
		m.refresh()
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.state.Filter.Search = strings.TrimSpace(m.input.Value())
		m.mode = modeList
		m.cursor = 0
		m.input.Blur()
		m.refresh()
		if m.state.Filter.Search == "" {
			m.status = "Search cleared"
		} else {
			m.status = fmt.Sprintf("Searching %q", m.state.Filter.Search)
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateLogTimeMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		d, err := time.ParseDuration(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.status = "Invalid duration, try 1h30m or 25m"
			return m, nil
		}
		if err := m.state.LogTime(m.logTimeID, d, ""); err != nil {
			m.status = fmt.Sprintf("log failed: %v", err)
			return m, nil
		}
		m.mode = modeList
		m.input.Blur()
		m.refresh()
		m.status = "Logged " + stats.FormatDuration(d)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateImportMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		n, err := m.state.ImportFromFile(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.status = fmt.Sprintf("import failed: %v", err)
			return m, nil
		}
		m.mode = modeList
		m.cursor = 0
		m.input.Blur()
		m.refresh()
		m.status = fmt.Sprintf("Imported %d task(s)", n)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func formFields() []string {
	return []string{
		"title",
		"description",
		"due (today / tomorrow / in 3 days / 2026-01-15)",
		"priority (high/medium/low, blank for none)",
		"category",
		"repeat (daily/weekly/monthly/every N days, blank for none)",
	}
}

func formFromTask(t model.Task) *formState {
	f := &formState{
		editID:   t.ID,
		title:    t.Title,
		descr:    t.Description,
		priority: string(t.Priority),
		category: t.Category,
	}
	if t.DueDate != nil {
		f.due = t.DueDate.Format("2006-01-02 15:04")
	}
	if t.Recurrence != nil {
		switch t.Recurrence.Type {
		case model.RecurCustom:
			f.recurrence = fmt.Sprintf("every %d days", t.Recurrence.Interval)
		default:
			f.recurrence = string(t.Recurrence.Type)
		}
	}
	return f
}

func (f formState) value() string {
	switch f.index {
	case 0:
		return f.title
	case 1:
		return f.descr
	case 2:
		return f.due
	case 3:
		return f.priority
	case 4:
		return f.category
	case 5:
		return f.recurrence
	}
	return ""
}

func (f *formState) setValue(v string) {
	switch f.index {
	case 0:
		f.title = v
	case 1:
		f.descr = v
	case 2:
		f.due = v
	case 3:
		f.priority = v
	case 4:
		f.category = v
	case 5:
		f.recurrence = v
	}
}

func (m *Model) startFormField() {
	m.input.SetValue(m.form.value())
	m.input.Placeholder = formFields()[m.form.index]
	m.input.Focus()
	m.mode = modeForm
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setValue(strings.TrimSpace(m.input.Value()))
		if m.form.index < len(formFields())-1 {
			m.form.index++
			m.startFormField()
			return m, nil
		}
		return m.saveForm()
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	f := m.form
	due, err := dates.ParseNatural(f.due, time.Now())
	if err != nil {
		m.status = fmt.Sprintf("due date invalid: %v", err)
		f.index = 2
		m.startFormField()
		return m, nil
	}
	priority, ok := parsePriority(f.priority)
	if !ok {
		m.status = "priority must be high, medium, low, or blank"
		f.index = 3
		m.startFormField()
		return m, nil
	}
	recurrence, ok := parseRecurrence(f.recurrence)
	if !ok {
		m.status = "repeat must be daily, weekly, monthly, every N days, or blank"
		f.index = 5
		m.startFormField()
		return m, nil
	}

	draft := app.Draft{
		Title:       f.title,
		Description: f.descr,
		DueDate:     due,
		Priority:    priority,
		Category:    f.category,
		Recurrence:  recurrence,
	}

	if f.editID == "" {
		_, err = m.state.AddTask(draft)
	} else {
		err = m.state.UpdateTask(f.editID, draft)
	}
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		f.index = 0
		m.startFormField()
		return m, nil
	}

	m.form = nil
	m.mode = modeList
	m.input.Blur()
	m.refresh()
	if f.editID == "" {
		m.cursor = clampCursor(len(m.visible)-1, len(m.visible))
		m.status = "Added task"
	} else {
		m.status = "Saved task"
	}
	return m, nil
}

func parsePriority(v string) (model.Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return model.PriorityNone, true
	case "high", "h":
		return model.PriorityHigh, true
	case "medium", "m":
		return model.PriorityMedium, true
	case "low", "l":
		return model.PriorityLow, true
	}
	return model.PriorityNone, false
}

func parseRecurrence(v string) (*model.Recurrence, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "":
		return nil, true
	case "daily":
		return &model.Recurrence{Type: model.RecurDaily}, true
	case "weekly":
		return &model.Recurrence{Type: model.RecurWeekly}, true
	case "monthly":
		return &model.Recurrence{Type: model.RecurMonthly}, true
	}
	var n int
	if _, err := fmt.Sscanf(v, "every %d days", &n); err == nil && n > 0 {
		return &model.Recurrence{Type: model.RecurCustom, Interval: n}, true
	}
	return nil, false
}

func nextPeriod(p query.Period) query.Period {
	periods := query.Periods()
	for i, cur := range periods {
		if cur == p {
			return periods[(i+1)%len(periods)]
		}
	}
	return periods[0]
}

func nextSort(s query.Sort) query.Sort {
	sorts := query.Sorts()
	for i, cur := range sorts {
		if cur == s {
			return sorts[(i+1)%len(sorts)]
		}
	}
	return sorts[0]
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
