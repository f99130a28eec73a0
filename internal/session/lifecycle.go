package session

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/api"
	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

// Generation count limits accepted by the backend. Out-of-range requests are
// rejected with a message, never clamped.
const (
	MinQuestions = 1
	MaxQuestions = 12
)

// ValidationError is a user-facing rejection raised before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IncompleteError rejects a save while questions remain unanswered or
// unrevealed. Both counts are reported so the user knows exactly what is left.
type IncompleteError struct {
	Unanswered int
	Unrevealed int
}

func (e *IncompleteError) Error() string {
	parts := []string{}
	if e.Unanswered > 0 {
		parts = append(parts, fmt.Sprintf("%d unanswered", e.Unanswered))
	}
	if e.Unrevealed > 0 {
		parts = append(parts, fmt.Sprintf("%d unrevealed", e.Unrevealed))
	}
	if len(parts) == 0 {
		return "cannot save yet"
	}
	return "cannot save yet: " + strings.Join(parts, ", ")
}

// GenerateIntent is a validated generation request. The token identifies the
// in-flight call; a completion carrying an older token is stale and dropped.
type GenerateIntent struct {
	Token   uint64
	Request api.GenerateRequest
}

// SaveIntent is a validated save request.
type SaveIntent struct {
	Token   uint64
	EndedAt time.Time
	Payload api.SavePayload
}

// Controller drives the question-set lifecycle:
//
//	Empty -> Generating -> Ready -> Answering -> AllAnswered -> Saving -> Saved
//
// with Generating falling back to Empty and Saving to AllAnswered on failure.
// All mutation happens on the caller's event loop; the controller never blocks
// and never performs I/O itself. Network calls are bracketed by Begin*/
// Complete* pairs around whatever transport the caller uses.
type Controller struct {
	store *Store
	phase model.Phase
	token uint64
	now   func() time.Time
}

// NewController creates a controller around an empty store.
func NewController() *Controller {
	return &Controller{
		store: NewStore(),
		phase: model.PhaseEmpty,
		now:   time.Now,
	}
}

// SetClock overrides the time source. Tests use this to pin durations.
func (c *Controller) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() model.Phase {
	return c.phase
}

// Store exposes the underlying draft store for read access.
func (c *Controller) Store() *Store {
	return c.store
}

// BeginGenerate validates the request and enters Generating. The returned
// intent carries the request the caller must send and the token its
// completion must echo.
func (c *Controller) BeginGenerate(notes string, count int, kind model.QuestionKind, difficulty model.Difficulty) (GenerateIntent, error) {
	if c.phase == model.PhaseGenerating || c.phase == model.PhaseSaving {
		return GenerateIntent{}, &ValidationError{Message: "another request is still in flight"}
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return GenerateIntent{}, &ValidationError{Message: "enter some study notes first"}
	}
	if count < MinQuestions || count > MaxQuestions {
		return GenerateIntent{}, &ValidationError{
			Message: fmt.Sprintf("number of questions must be between %d and %d", MinQuestions, MaxQuestions),
		}
	}
	c.token++
	c.phase = model.PhaseGenerating
	return GenerateIntent{
		Token: c.token,
		Request: api.GenerateRequest{
			Notes:      notes,
			Count:      count,
			Kind:       kind,
			Difficulty: difficulty,
			StartedAt:  c.now(),
		},
	}, nil
}

// CompleteGenerate applies the outcome of a generation call. Stale tokens are
// dropped. On failure the controller rolls back to Empty and the caller
// surfaces the error verbatim.
func (c *Controller) CompleteGenerate(intent GenerateIntent, questions []model.Question, err error) {
	if intent.Token != c.token {
		return
	}
	if err != nil {
		c.phase = model.PhaseEmpty
		return
	}
	c.store.Begin(questions, intent.Request.Notes, intent.Request.StartedAt)
	c.phase = model.PhaseReady
}

// SelectAnswer records an option choice. Selecting again before reveal
// overwrites; a revealed question rejects the change.
func (c *Controller) SelectAnswer(index, option int) error {
	q, ok := c.store.Question(index)
	if !ok {
		return &ValidationError{Message: "no such question"}
	}
	if q.Revealed {
		return &ValidationError{Message: "answer is locked in"}
	}
	if option < 0 || option >= len(q.Options) {
		return &ValidationError{Message: "no such option"}
	}
	c.store.SetAnswer(index, option)
	c.recomputePhase()
	return nil
}

// RevealQuestion locks in one answer and triggers correctness feedback. A
// question with no selection is rejected with a prompt, not silently.
func (c *Controller) RevealQuestion(index int) error {
	q, ok := c.store.Question(index)
	if !ok {
		return &ValidationError{Message: "no such question"}
	}
	if !q.Answered() {
		return &ValidationError{Message: "select an answer before revealing"}
	}
	c.store.Reveal(index)
	c.recomputePhase()
	return nil
}

// BeginSave validates save eligibility and enters Saving. A set that has
// already been persisted is rejected locally, without a network call.
func (c *Controller) BeginSave() (SaveIntent, error) {
	if c.store.Saved() || c.phase == model.PhaseSaved {
		return SaveIntent{}, &ValidationError{Message: "this session is already saved"}
	}
	if c.phase == model.PhaseSaving {
		return SaveIntent{}, &ValidationError{Message: "save already in progress"}
	}
	if c.store.Len() == 0 {
		return SaveIntent{}, &ValidationError{Message: "nothing to save"}
	}
	unanswered := c.store.Unanswered()
	unrevealed := c.store.Unrevealed()
	if unanswered > 0 || unrevealed > 0 {
		return SaveIntent{}, &IncompleteError{Unanswered: unanswered, Unrevealed: unrevealed}
	}
	endedAt := c.now()
	c.token++
	c.phase = model.PhaseSaving
	return SaveIntent{
		Token:   c.token,
		EndedAt: endedAt,
		Payload: api.SavePayload{
			Questions: c.store.Questions(),
			Notes:     c.store.Notes(),
			StartedAt: c.store.StartedAt(),
			EndedAt:   endedAt,
		},
	}, nil
}

// CompleteSave applies the outcome of a save call. Failure rolls back to
// AllAnswered so the save stays retryable; success pins the set as Saved.
func (c *Controller) CompleteSave(intent SaveIntent, err error) {
	if intent.Token != c.token {
		return
	}
	if err != nil {
		c.phase = model.PhaseAllAnswered
		return
	}
	c.store.MarkSaved(intent.EndedAt)
	c.phase = model.PhaseSaved
}

// NewSession discards the draft and returns to Empty. Any in-flight call is
// invalidated by bumping the token.
func (c *Controller) NewSession() {
	c.token++
	c.store.Reset()
	c.phase = model.PhaseEmpty
}

// Score returns revealed-correct count, total, and the rounded percentage.
func (c *Controller) Score() (correct, total, percent int) {
	correct = c.store.CorrectCount()
	total = c.store.Len()
	if total > 0 {
		percent = int(math.Round(float64(correct) / float64(total) * 100))
	}
	return correct, total, percent
}

// ScoreLine renders the score the way the results banner shows it.
func (c *Controller) ScoreLine() string {
	correct, total, percent := c.Score()
	return fmt.Sprintf("Score: %d/%d (%d%%)", correct, total, percent)
}

func (c *Controller) recomputePhase() {
	switch c.phase {
	case model.PhaseEmpty, model.PhaseGenerating, model.PhaseSaving, model.PhaseSaved:
		return
	}
	if c.store.Len() == 0 {
		c.phase = model.PhaseEmpty
		return
	}
	if c.store.Unanswered() == 0 && c.store.Unrevealed() == 0 {
		c.phase = model.PhaseAllAnswered
		return
	}
	answered := c.store.Len() - c.store.Unanswered()
	if answered > 0 || c.store.Unrevealed() < c.store.Len() {
		c.phase = model.PhaseAnswering
		return
	}
	c.phase = model.PhaseReady
}
