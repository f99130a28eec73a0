// Package model defines shared data structures.
package model

import "time"

// QuestionKind identifies the question format.
type QuestionKind string

// Supported question kinds.
const (
	KindMultipleChoice QuestionKind = "mcq"
	KindTrueFalse      QuestionKind = "truefalse"
)

// Difficulty identifies the requested question difficulty.
type Difficulty string

// Supported difficulties.
const (
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// Question is one generated question in the current draft.
type Question struct {
	ID           *int64 // nil until persisted
	Prompt       string
	Options      []string
	CorrectIndex int
	Kind         QuestionKind
	Difficulty   Difficulty
	UserAnswer   *int
	Revealed     bool
}

// Answered reports whether the user has selected an option.
func (q Question) Answered() bool {
	return q.UserAnswer != nil
}

// Correct reports whether the selected option is the correct one.
func (q Question) Correct() bool {
	return q.UserAnswer != nil && *q.UserAnswer == q.CorrectIndex
}

// Draft is the in-progress question set before it is persisted.
type Draft struct {
	Questions []Question
	Notes     string
	StartedAt time.Time
	EndedAt   time.Time // zero until save computes it
	Saved     bool
}

// SessionRecord is a persisted study session as returned by the backend.
type SessionRecord struct {
	ID              int64
	Title           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	TotalQuestions  int
	CorrectAnswers  int
	ScorePercent    int
	DurationSeconds float64
}

// CardDetail is one stored question of a persisted session.
type CardDetail struct {
	ID            int64
	Prompt        string
	Options       []string
	CorrectAnswer int
	UserAnswer    *int
	IsCorrect     bool
	Kind          QuestionKind
	Difficulty    Difficulty
}

// User is the authenticated account.
type User struct {
	ID    int64
	Email string
}

// TierInfo is the subscription quota snapshot from the backend.
type TierInfo struct {
	Tier              string
	RemainingSessions int
	ResetInSeconds    int64
}

// Filter selects a subset of the session history for analytics.
// Zero values mean "all".
type Filter struct {
	Days int // keep sessions from the last N calendar days
	Last int // then keep the most recent N of the remainder
}

// GroupAccuracy is an accuracy bucket of the type/difficulty breakdown.
type GroupAccuracy struct {
	Label   string
	Total   int
	Correct int
}

// Accuracy returns correct/total as a percentage, 0 when the bucket is empty.
func (g GroupAccuracy) Accuracy() float64 {
	if g.Total == 0 {
		return 0
	}
	return float64(g.Correct) / float64(g.Total) * 100
}

// Breakdown groups accuracy by question kind and by difficulty.
type Breakdown struct {
	Kinds        []GroupAccuracy
	Difficulties []GroupAccuracy
}

// Phase is the lifecycle state of the current question set.
type Phase int

// Lifecycle phases, in order of normal progression.
const (
	PhaseEmpty Phase = iota
	PhaseGenerating
	PhaseReady
	PhaseAnswering
	PhaseAllAnswered
	PhaseSaving
	PhaseSaved
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseGenerating:
		return "generating"
	case PhaseReady:
		return "ready"
	case PhaseAnswering:
		return "answering"
	case PhaseAllAnswered:
		return "all-answered"
	case PhaseSaving:
		return "saving"
	case PhaseSaved:
		return "saved"
	default:
		return "unknown"
	}
}
