// Package session owns the in-progress question set: the mutable draft state
// and the lifecycle controller that guards every transition around it.
package session

import (
	"time"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

// Store holds the current draft. Selection and reveal follow the contract of
// the study surface: a selection may be overwritten freely until the question
// is revealed, and a reveal is permanent.
type Store struct {
	draft model.Draft
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Begin installs a freshly generated question set.
func (s *Store) Begin(questions []model.Question, notes string, startedAt time.Time) {
	s.draft = model.Draft{
		Questions: questions,
		Notes:     notes,
		StartedAt: startedAt,
	}
}

// Reset clears the draft and the saved flag.
func (s *Store) Reset() {
	s.draft = model.Draft{}
}

// SetAnswer records the selected option. It is a silent no-op when the
// question is already revealed or either index is out of range.
func (s *Store) SetAnswer(index, option int) {
	if index < 0 || index >= len(s.draft.Questions) {
		return
	}
	q := &s.draft.Questions[index]
	if q.Revealed {
		return
	}
	if option < 0 || option >= len(q.Options) {
		return
	}
	selected := option
	q.UserAnswer = &selected
}

// Reveal locks in the answer of one question. It is a silent no-op when no
// answer is selected yet, and idempotent once revealed.
func (s *Store) Reveal(index int) {
	if index < 0 || index >= len(s.draft.Questions) {
		return
	}
	q := &s.draft.Questions[index]
	if q.UserAnswer == nil {
		return
	}
	q.Revealed = true
}

// MarkSaved flags the draft as persisted and records the end timestamp.
func (s *Store) MarkSaved(endedAt time.Time) {
	s.draft.Saved = true
	s.draft.EndedAt = endedAt
}

// Saved reports whether the current set has already been persisted.
func (s *Store) Saved() bool {
	return s.draft.Saved
}

// Notes returns the source notes of the current draft.
func (s *Store) Notes() string {
	return s.draft.Notes
}

// StartedAt returns the generation timestamp of the current draft.
func (s *Store) StartedAt() time.Time {
	return s.draft.StartedAt
}

// Len returns the number of questions in the draft.
func (s *Store) Len() int {
	return len(s.draft.Questions)
}

// Question returns a copy of the question at index.
func (s *Store) Question(index int) (model.Question, bool) {
	if index < 0 || index >= len(s.draft.Questions) {
		return model.Question{}, false
	}
	return s.draft.Questions[index], true
}

// Questions returns a copy of the whole question set.
func (s *Store) Questions() []model.Question {
	out := make([]model.Question, len(s.draft.Questions))
	copy(out, s.draft.Questions)
	return out
}

// Unanswered counts questions without a selected answer.
func (s *Store) Unanswered() int {
	n := 0
	for _, q := range s.draft.Questions {
		if !q.Answered() {
			n++
		}
	}
	return n
}

// Unrevealed counts questions not yet revealed.
func (s *Store) Unrevealed() int {
	n := 0
	for _, q := range s.draft.Questions {
		if !q.Revealed {
			n++
		}
	}
	return n
}

// CorrectCount counts revealed questions answered correctly.
func (s *Store) CorrectCount() int {
	n := 0
	for _, q := range s.draft.Questions {
		if q.Revealed && q.Correct() {
			n++
		}
	}
	return n
}
