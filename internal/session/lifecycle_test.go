package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

func testQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Prompt:       fmt.Sprintf("question %d", i+1),
			Options:      []string{"alpha", "beta", "gamma", "delta"},
			CorrectIndex: i % 4,
			Kind:         model.KindMultipleChoice,
			Difficulty:   model.DifficultyNormal,
		}
	}
	return qs
}

func generateReady(t *testing.T, c *Controller, n int) {
	t.Helper()
	intent, err := c.BeginGenerate("photosynthesis notes", n, model.KindMultipleChoice, model.DifficultyNormal)
	if err != nil {
		t.Fatalf("begin generate: %v", err)
	}
	c.CompleteGenerate(intent, testQuestions(n), nil)
	if c.Phase() != model.PhaseReady {
		t.Fatalf("expected ready, got %s", c.Phase())
	}
}

func TestBeginGenerateValidation(t *testing.T) {
	c := NewController()

	if _, err := c.BeginGenerate("   \n ", 5, model.KindMultipleChoice, model.DifficultyNormal); err == nil {
		t.Fatalf("expected rejection for empty notes")
	} else if err.Error() != "enter some study notes first" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	for _, count := range []int{0, -1, 13, 100} {
		_, err := c.BeginGenerate("notes", count, model.KindMultipleChoice, model.DifficultyNormal)
		if err == nil {
			t.Fatalf("expected rejection for count %d", count)
		}
		if err.Error() != "number of questions must be between 1 and 12" {
			t.Fatalf("unexpected message for count %d: %q", count, err.Error())
		}
	}
	if c.Phase() != model.PhaseEmpty {
		t.Fatalf("rejected requests must not change phase, got %s", c.Phase())
	}
}

func TestBeginGenerateRejectsWhileInFlight(t *testing.T) {
	c := NewController()
	if _, err := c.BeginGenerate("notes", 3, model.KindMultipleChoice, model.DifficultyNormal); err != nil {
		t.Fatalf("begin generate: %v", err)
	}
	if _, err := c.BeginGenerate("notes", 3, model.KindMultipleChoice, model.DifficultyNormal); err == nil {
		t.Fatalf("expected rejection while generating")
	}
}

func TestCompleteGenerateFailureRollsBack(t *testing.T) {
	c := NewController()
	intent, err := c.BeginGenerate("notes", 3, model.KindMultipleChoice, model.DifficultyNormal)
	if err != nil {
		t.Fatalf("begin generate: %v", err)
	}
	c.CompleteGenerate(intent, nil, errors.New("backend down"))
	if c.Phase() != model.PhaseEmpty {
		t.Fatalf("expected rollback to empty, got %s", c.Phase())
	}
	if c.Store().Len() != 0 {
		t.Fatalf("failed generation must not install questions")
	}
}

func TestStaleGenerateCompletionDropped(t *testing.T) {
	c := NewController()
	stale, err := c.BeginGenerate("notes", 3, model.KindMultipleChoice, model.DifficultyNormal)
	if err != nil {
		t.Fatalf("begin generate: %v", err)
	}
	c.NewSession()
	fresh, err := c.BeginGenerate("fresh notes", 2, model.KindTrueFalse, model.DifficultyHard)
	if err != nil {
		t.Fatalf("begin generate: %v", err)
	}

	// The stale completion arrives after a newer request started.
	c.CompleteGenerate(stale, testQuestions(3), nil)
	if c.Phase() != model.PhaseGenerating {
		t.Fatalf("stale completion must be dropped, got %s", c.Phase())
	}
	if c.Store().Len() != 0 {
		t.Fatalf("stale completion must not install questions")
	}

	c.CompleteGenerate(fresh, testQuestions(2), nil)
	if c.Phase() != model.PhaseReady || c.Store().Len() != 2 {
		t.Fatalf("fresh completion must apply, got %s with %d questions", c.Phase(), c.Store().Len())
	}
}

func TestAnswerRevealAndScore(t *testing.T) {
	c := NewController()
	generateReady(t, c, 3)

	for i := 0; i < 3; i++ {
		if err := c.SelectAnswer(i, i%4); err != nil {
			t.Fatalf("select answer %d: %v", i, err)
		}
		if err := c.RevealQuestion(i); err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
	}
	if c.Phase() != model.PhaseAllAnswered {
		t.Fatalf("expected all-answered, got %s", c.Phase())
	}
	if got := c.ScoreLine(); got != "Score: 3/3 (100%)" {
		t.Fatalf("unexpected score line: %q", got)
	}
}

func TestSelectAnswerOverwriteUntilReveal(t *testing.T) {
	c := NewController()
	generateReady(t, c, 1)

	if err := c.SelectAnswer(0, 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := c.SelectAnswer(0, 0); err != nil {
		t.Fatalf("overwrite before reveal: %v", err)
	}
	if err := c.RevealQuestion(0); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	err := c.SelectAnswer(0, 2)
	if err == nil {
		t.Fatalf("expected rejection after reveal")
	}
	if err.Error() != "answer is locked in" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	q, _ := c.Store().Question(0)
	if q.UserAnswer == nil || *q.UserAnswer != 0 {
		t.Fatalf("revealed answer must stay at 0, got %v", q.UserAnswer)
	}
}

func TestRevealRequiresAnswer(t *testing.T) {
	c := NewController()
	generateReady(t, c, 1)

	err := c.RevealQuestion(0)
	if err == nil {
		t.Fatalf("expected rejection without a selection")
	}
	if err.Error() != "select an answer before revealing" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	q, _ := c.Store().Question(0)
	if q.Revealed {
		t.Fatalf("question must not reveal without an answer")
	}
}

func TestBeginSaveRejectsIncompleteSet(t *testing.T) {
	c := NewController()
	generateReady(t, c, 4)

	for i := 0; i < 4; i++ {
		if err := c.SelectAnswer(i, 0); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := c.RevealQuestion(i); err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
	}

	_, err := c.BeginSave()
	if err == nil {
		t.Fatalf("expected rejection with 2 unrevealed")
	}
	var incomplete *IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteError, got %T", err)
	}
	if incomplete.Unanswered != 0 || incomplete.Unrevealed != 2 {
		t.Fatalf("unexpected counts: %+v", incomplete)
	}
	if err.Error() != "cannot save yet: 2 unrevealed" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestBeginSaveRejectsEmptySet(t *testing.T) {
	c := NewController()
	if _, err := c.BeginSave(); err == nil {
		t.Fatalf("expected rejection on empty set")
	} else if err.Error() != "nothing to save" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestSaveLifecycle(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := base
	c := NewController()
	c.SetClock(func() time.Time { return clock })

	generateReady(t, c, 2)
	for i := 0; i < 2; i++ {
		if err := c.SelectAnswer(i, 0); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if err := c.RevealQuestion(i); err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
	}

	clock = base.Add(90 * time.Second)
	intent, err := c.BeginSave()
	if err != nil {
		t.Fatalf("begin save: %v", err)
	}
	if c.Phase() != model.PhaseSaving {
		t.Fatalf("expected saving, got %s", c.Phase())
	}
	if !intent.Payload.StartedAt.Equal(base) {
		t.Fatalf("unexpected start time: %v", intent.Payload.StartedAt)
	}
	if !intent.EndedAt.Equal(base.Add(90 * time.Second)) {
		t.Fatalf("unexpected end time: %v", intent.EndedAt)
	}

	// Failure rolls back so the save can be retried.
	c.CompleteSave(intent, errors.New("backend down"))
	if c.Phase() != model.PhaseAllAnswered {
		t.Fatalf("expected retryable all-answered, got %s", c.Phase())
	}
	if c.Store().Saved() {
		t.Fatalf("failed save must not mark the set saved")
	}

	retry, err := c.BeginSave()
	if err != nil {
		t.Fatalf("retry save: %v", err)
	}
	c.CompleteSave(retry, nil)
	if c.Phase() != model.PhaseSaved {
		t.Fatalf("expected saved, got %s", c.Phase())
	}
	if !c.Store().Saved() {
		t.Fatalf("successful save must mark the set saved")
	}
}

func TestDuplicateSaveRejectedLocally(t *testing.T) {
	c := NewController()
	generateReady(t, c, 2)
	for i := 0; i < 2; i++ {
		if err := c.SelectAnswer(i, 0); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if err := c.RevealQuestion(i); err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
	}

	saves := 0
	intent, err := c.BeginSave()
	if err != nil {
		t.Fatalf("begin save: %v", err)
	}
	saves++
	c.CompleteSave(intent, nil)

	// The second save never produces an intent, so no network call happens.
	if _, err := c.BeginSave(); err == nil {
		t.Fatalf("expected duplicate save rejection")
	} else if err.Error() != "this session is already saved" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if saves != 1 {
		t.Fatalf("expected exactly one save, got %d", saves)
	}
}

func TestNewSessionInvalidatesInFlightSave(t *testing.T) {
	c := NewController()
	generateReady(t, c, 1)
	if err := c.SelectAnswer(0, 0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := c.RevealQuestion(0); err != nil {
		t.Fatalf("reveal: %v", err)
	}
	intent, err := c.BeginSave()
	if err != nil {
		t.Fatalf("begin save: %v", err)
	}

	c.NewSession()
	c.CompleteSave(intent, nil)
	if c.Phase() != model.PhaseEmpty {
		t.Fatalf("stale save completion must be dropped, got %s", c.Phase())
	}
	if c.Store().Saved() {
		t.Fatalf("discarded draft must not become saved")
	}
}

func TestScorePercentRounds(t *testing.T) {
	c := NewController()
	generateReady(t, c, 3)

	// Two correct out of three: 66.67 rounds to 67.
	for i := 0; i < 3; i++ {
		option := i % 4
		if i == 2 {
			option = (i + 1) % 4
		}
		if err := c.SelectAnswer(i, option); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if err := c.RevealQuestion(i); err != nil {
			t.Fatalf("reveal %d: %v", i, err)
		}
	}
	correct, total, percent := c.Score()
	if correct != 2 || total != 3 || percent != 67 {
		t.Fatalf("unexpected score: %d/%d (%d%%)", correct, total, percent)
	}
}
