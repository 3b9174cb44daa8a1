// Package history keeps a bounded, linear undo/redo log of full-collection
// snapshots. The stack owns its snapshots outright: everything recorded is
// deep-copied on the way in and deep-copied again on the way out.
package history

import (
	"errors"
	"time"

	"taskflow/internal/model"
)

const DefaultLimit = 50

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

type entry struct {
	label string
	tasks []model.Task
	at    time.Time
}

type Stack struct {
	entries []entry
	cursor  int
	limit   int
}

func New(limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{cursor: -1, limit: limit}
}

// Record appends a snapshot. Any redo tail past the cursor is discarded
// first. When the cap is exceeded the oldest entry is evicted and the
// cursor deliberately stays put, reproducing the observed behavior of the
// shipped version: once capped, the usable undo depth is limit-1.
func (s *Stack) Record(label string, tasks []model.Task) {
	if s.cursor < len(s.entries)-1 {
		s.entries = s.entries[:s.cursor+1]
	}
	s.entries = append(s.entries, entry{
		label: label,
		tasks: model.CloneTasks(tasks),
		at:    time.Now(),
	})
	if len(s.entries) > s.limit {
		s.entries = s.entries[1:]
	} else {
		s.cursor++
	}
}

// Undo returns the snapshot at the cursor and steps back.
func (s *Stack) Undo() ([]model.Task, error) {
	if s.cursor < 0 {
		return nil, ErrNothingToUndo
	}
	snap := s.entries[s.cursor].tasks
	s.cursor--
	return model.CloneTasks(snap), nil
}

// Redo steps forward and returns that snapshot.
func (s *Stack) Redo() ([]model.Task, error) {
	if s.cursor >= len(s.entries)-1 {
		return nil, ErrNothingToRedo
	}
	s.cursor++
	return model.CloneTasks(s.entries[s.cursor].tasks), nil
}

func (s *Stack) CanUndo() bool { return s.cursor >= 0 }

func (s *Stack) CanRedo() bool { return s.cursor < len(s.entries)-1 }

func (s *Stack) Len() int { return len(s.entries) }
