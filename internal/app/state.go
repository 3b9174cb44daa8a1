// Package app holds the application state object: the live task
// collection, its companion stores, and every mutation the UI can ask
// for. Each mutating operation updates memory first, records an undo
// snapshot, then persists best-effort; a failed write never unwinds an
// in-memory change.
package app

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"taskflow/internal/history"
	"taskflow/internal/model"
	"taskflow/internal/query"
	"taskflow/internal/recur"
	"taskflow/internal/remind"
	"taskflow/internal/stats"
	"taskflow/internal/storage"
)

var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrNotFound        = errors.New("task not found")
	ErrDefaultProject  = errors.New("default project cannot be deleted")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Repository is the persistence channel. *storage.Store satisfies it;
// tests substitute an in-memory fake.
type Repository interface {
	SaveItems([]model.Task) error
	LoadItems() ([]model.Task, error)
	SaveProjects([]model.Project) error
	LoadProjects() ([]model.Project, error)
	SaveTemplates([]model.Template) error
	LoadTemplates() ([]model.Template, error)
}

// Notifier is the user-facing notice channel. Optional collaborators get
// the no-op default instead of being probed for at call time.
type Notifier interface {
	Toast(level, message string)
}

type nopNotifier struct{}

func (nopNotifier) Toast(string, string) {}

// Draft carries the user-editable fields of a task through create and
// edit operations.
type Draft struct {
	Title       string
	Description string
	Type        model.Type
	DueDate     *time.Time
	Priority    model.Priority
	Category    string
	Status      model.Status
	Project     string
	Subtasks    []model.Subtask
	Recurrence  *model.Recurrence
}

type State struct {
	repo      Repository
	notify    Notifier
	now       func() time.Time
	tasks     []model.Task
	projects  []model.Project
	templates []model.Template
	history   *history.Stack

	// Filter is the active view configuration; the UI mutates it
	// directly and calls Visible.
	Filter query.Filter
}

func NewState(repo Repository, historyLimit int) *State {
	return &State{
		repo:    repo,
		notify:  nopNotifier{},
		now:     time.Now,
		history: history.New(historyLimit),
		Filter:  query.Filter{Period: query.PeriodAll, Sort: query.SortDate},
	}
}

func (s *State) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	s.notify = n
}

// SetClock overrides the time source, for tests.
func (s *State) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Load reads every store, normalizes the records, seeds the default
// project and the initial history snapshot, and runs the engines once.
func (s *State) Load() error {
	items, err := s.repo.LoadItems()
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	now := s.now()
	for i := range items {
		items[i].Normalize(now)
	}
	s.tasks = items

	if s.projects, err = s.repo.LoadProjects(); err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	s.ensureDefaultProject()

	if s.templates, err = s.repo.LoadTemplates(); err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	s.history.Record("load", s.tasks)
	s.RunEngines()
	return nil
}

func (s *State) ensureDefaultProject() {
	for _, p := range s.projects {
		if p.ID == model.DefaultProjectID {
			return
		}
	}
	s.projects = append([]model.Project{{
		ID:        model.DefaultProjectID,
		Name:      "Default",
		Color:     "#6366f1",
		CreatedAt: s.now(),
	}}, s.projects...)
	s.persistProjects()
}

// Tasks exposes the live collection for read-only use.
func (s *State) Tasks() []model.Task { return s.tasks }

func (s *State) Projects() []model.Project { return s.projects }

func (s *State) Templates() []model.Template { return s.templates }

// Visible runs the query pipeline over the active filter.
func (s *State) Visible() []model.Task {
	return query.Apply(s.tasks, s.Filter, s.now())
}

func (s *State) Stats() stats.Summary {
	return stats.Compute(s.tasks, s.now())
}

// Categories returns the distinct non-empty categories, sorted.
func (s *State) Categories() []string {
	seen := map[string]struct{}{}
	for _, t := range s.tasks {
		if t.Category != "" {
			seen[t.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func (s *State) CanUndo() bool { return s.history.CanUndo() }
func (s *State) CanRedo() bool { return s.history.CanRedo() }

func (s *State) AddTask(d Draft) (model.Task, error) {
	if d.Title == "" {
		return model.Task{}, ErrEmptyTitle
	}
	now := s.now()
	t := model.Task{
		ID:          model.NewID(),
		Title:       d.Title,
		Description: d.Description,
		Type:        d.Type,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		Category:    d.Category,
		Status:      d.Status,
		Project:     d.Project,
		Subtasks:    d.Subtasks,
		Recurrence:  d.Recurrence,
		CreatedAt:   now,
	}
	t.Normalize(now)
	s.tasks = append(s.tasks, t)
	s.commit("add")
	return t, nil
}

func (s *State) UpdateTask(id string, d Draft) error {
	if d.Title == "" {
		return ErrEmptyTitle
	}
	t, err := s.findTask(id)
	if err != nil {
		return err
	}
	t.Title = d.Title
	t.Description = d.Description
	if d.Type != "" {
		t.Type = d.Type
	}
	t.DueDate = d.DueDate
	t.Priority = d.Priority
	t.Category = d.Category
	if d.Project != "" {
		t.Project = d.Project
	}
	// A draft without subtasks leaves the existing checklist alone; the
	// edit form does not carry them.
	if d.Subtasks != nil {
		t.Subtasks = d.Subtasks
	}
	t.Recurrence = d.Recurrence
	if d.Status != "" {
		t.SetStatus(d.Status, s.now())
	}
	s.commit("edit")
	return nil
}

func (s *State) DeleteTask(id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.commit("delete")
	return nil
}

func (s *State) ToggleComplete(id string) error {
	t, err := s.findTask(id)
	if err != nil {
		return err
	}
	if t.Status == model.StatusCompleted {
		t.SetStatus(model.StatusPending, s.now())
	} else {
		t.SetStatus(model.StatusCompleted, s.now())
	}
	s.commit("toggle")
	return nil
}

func (s *State) ArchiveTask(id string) error {
	t, err := s.findTask(id)
	if err != nil {
		return err
	}
	now := s.now()
	t.Archived = true
	t.ArchivedAt = &now
	s.commit("archive")
	return nil
}

func (s *State) UnarchiveTask(id string) error {
	t, err := s.findTask(id)
	if err != nil {
		return err
	}
	t.Archived = false
	t.ArchivedAt = nil
	s.commit("unarchive")
	return nil
}

// MarkAllComplete completes every incomplete task in the current view and
// returns how many it touched.
func (s *State) MarkAllComplete() int {
	now := s.now()
	touched := 0
	for _, v := range s.Visible() {
		if v.Status == model.StatusCompleted {
			continue
		}
		if t, err := s.findTask(v.ID); err == nil {
			t.SetStatus(model.StatusCompleted, now)
			touched++
		}
	}
	if touched > 0 {
		s.commit("complete all")
	}
	return touched
}

// ClearCompleted hard-removes completed tasks from the whole collection.
func (s *State) ClearCompleted() int {
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.Status == model.StatusCompleted {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	if removed > 0 {
		s.commit("clear completed")
	}
	return removed
}

// LogTime appends to the task's append-only time log.
func (s *State) LogTime(id string, d time.Duration, note string) error {
	if d <= 0 {
		return ErrInvalidDuration
	}
	t, err := s.findTask(id)
	if err != nil {
		return err
	}
	t.TimeEntries = append(t.TimeEntries, model.TimeEntry{
		Date:       s.now(),
		DurationMS: d.Milliseconds(),
		Note:       note,
	})
	s.commit("log time")
	return nil
}

// ToggleSubtask flips one subtask; parent status is untouched.
func (s *State) ToggleSubtask(taskID, subID string) error {
	t, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			s.commit("subtask")
			return nil
		}
	}
	return ErrNotFound
}

func (s *State) AddReminder(taskID string, beforeMinutes int, message string) error {
	t, err := s.findTask(taskID)
	if err != nil {
		return err
	}
	t.Reminders = append(t.Reminders, model.Reminder{
		ID:            model.NewID(),
		BeforeMinutes: beforeMinutes,
		Message:       message,
	})
	s.commit("reminder")
	return nil
}

func (s *State) AddProject(name, color string) model.Project {
	p := model.Project{
		ID:        model.NewID(),
		Name:      name,
		Color:     color,
		CreatedAt: s.now(),
	}
	s.projects = append(s.projects, p)
	s.persistProjects()
	return p
}

// DeleteProject removes a project and reassigns its tasks to the default
// project. The default project itself is protected.
func (s *State) DeleteProject(id string) error {
	if id == model.DefaultProjectID {
		return ErrDefaultProject
	}
	idx := -1
	for i, p := range s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrProjectNotFound
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	for i := range s.tasks {
		if s.tasks[i].Project == id {
			s.tasks[i].Project = model.DefaultProjectID
		}
	}
	if s.Filter.Project == id {
		s.Filter.Project = ""
	}
	s.commit("delete project")
	s.persistProjects()
	return nil
}

// SaveTemplate captures a task's creation fields as a reusable preset.
func (s *State) SaveTemplate(name, fromTaskID string) (model.Template, error) {
	t, err := s.findTask(fromTaskID)
	if err != nil {
		return model.Template{}, err
	}
	if name == "" {
		name = t.Title + " Template"
	}
	data := t.Clone()
	data.ID = ""
	data.Status = ""
	data.DueDate = nil
	data.CompletedAt = nil
	data.CreatedAt = time.Time{}
	data.TimeEntries = nil
	data.Reminders = nil
	data.Archived = false
	data.ArchivedAt = nil
	for i := range data.Subtasks {
		data.Subtasks[i].Completed = false
	}
	tpl := model.Template{
		ID:        model.NewID(),
		Name:      name,
		TaskData:  data,
		CreatedAt: s.now(),
	}
	s.templates = append(s.templates, tpl)
	s.persistTemplates()
	return tpl, nil
}

func (s *State) DeleteTemplate(id string) error {
	for i, tpl := range s.templates {
		if tpl.ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			s.persistTemplates()
			return nil
		}
	}
	return ErrNotFound
}

// ApplyTemplate turns a template back into a draft for the add flow.
func (s *State) ApplyTemplate(id string) (Draft, error) {
	for _, tpl := range s.templates {
		if tpl.ID == id {
			data := tpl.TaskData.Clone()
			return Draft{
				Title:       data.Title,
				Description: data.Description,
				Type:        data.Type,
				Priority:    data.Priority,
				Category:    data.Category,
				Project:     data.Project,
				Subtasks:    data.Subtasks,
				Recurrence:  data.Recurrence,
			}, nil
		}
	}
	return Draft{}, ErrNotFound
}

// Undo swaps the whole collection for the snapshot at the history cursor.
func (s *State) Undo() error {
	snap, err := s.history.Undo()
	if err != nil {
		return err
	}
	s.tasks = snap
	s.persistItems()
	return nil
}

func (s *State) Redo() error {
	snap, err := s.history.Redo()
	if err != nil {
		return err
	}
	s.tasks = snap
	s.persistItems()
	return nil
}

// RunEngines performs one recurrence pass and one reminder scan,
// persisting only when something actually changed. Called once on load
// and again on every engine tick.
func (s *State) RunEngines() (created int, notices []remind.Notice) {
	now := s.now()
	s.tasks, created = recur.Run(s.tasks, now)
	notices = remind.Check(s.tasks, now)
	if created > 0 || len(notices) > 0 {
		s.persistItems()
	}
	for _, n := range notices {
		s.notify.Toast("info", fmt.Sprintf("Reminder: %s - %s", n.Title, n.Message))
	}
	if created > 0 {
		s.notify.Toast("success", fmt.Sprintf("%d recurring task(s) created", created))
	}
	return created, notices
}

func (s *State) Export() ([]byte, error) {
	return storage.Export(s.tasks)
}

func (s *State) ExportToFile(path string) error {
	return storage.ExportToFile(s.tasks, path)
}

// Import replaces the collection with the payload's valid items. On any
// format error the existing collection is untouched.
func (s *State) Import(data []byte) (int, error) {
	items, err := storage.Import(data)
	if err != nil {
		return 0, err
	}
	now := s.now()
	for i := range items {
		items[i].Normalize(now)
	}
	s.tasks = items
	s.commit("import")
	return len(items), nil
}

func (s *State) ImportFromFile(path string) (int, error) {
	items, err := storage.ImportFromFile(path)
	if err != nil {
		return 0, err
	}
	now := s.now()
	for i := range items {
		items[i].Normalize(now)
	}
	s.tasks = items
	s.commit("import")
	return len(items), nil
}

func (s *State) findTask(id string) (*model.Task, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &s.tasks[idx], nil
}

func (s *State) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// commit records the post-mutation snapshot and persists best-effort.
func (s *State) commit(label string) {
	s.history.Record(label, s.tasks)
	s.persistItems()
}

func (s *State) persistItems() {
	if err := s.repo.SaveItems(s.tasks); err != nil {
		log.Printf("app: saving items failed: %v", err)
		s.notify.Toast("error", "Saving failed; changes kept in memory")
	}
}

func (s *State) persistProjects() {
	if err := s.repo.SaveProjects(s.projects); err != nil {
		log.Printf("app: saving projects failed: %v", err)
	}
}

func (s *State) persistTemplates() {
	if err := s.repo.SaveTemplates(s.templates); err != nil {
		log.Printf("app: saving templates failed: %v", err)
	}
}
