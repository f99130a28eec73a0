package api

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

// The generation backend is not deterministic about field names, so the raw
// shapes below accept every spelling seen in the wild and normalization picks
// the first one present. Anything still missing after that is rejected.

type rawQuestion struct {
	ID            *int64   `json:"id"`
	Question      string   `json:"question"`
	Prompt        string   `json:"prompt"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	Choices       []string `json:"choices"`
	CorrectCamel  *int     `json:"correctAnswer"`
	CorrectSnake  *int     `json:"correct_answer"`
	Answer        *int     `json:"answer"`
	KindCamel     string   `json:"questionType"`
	KindSnake     string   `json:"question_type"`
	KindBare      string   `json:"type"`
	Difficulty    string   `json:"difficulty"`
	DifficultyAlt string   `json:"level"`
}

type rawSession struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	CreatedAt          string   `json:"created_at"`
	CreatedAtFormatted string   `json:"created_at_formatted"`
	UpdatedAt          string   `json:"updated_at"`
	TotalQuestions     int      `json:"total_questions"`
	CorrectAnswers     int      `json:"correct_answers"`
	ScorePercentage    float64  `json:"score_percentage"`
	SessionDuration    *float64 `json:"session_duration"`
}

type rawCard struct {
	ID            int64           `json:"id"`
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer int             `json:"correct_answer"`
	UserAnswer    *int            `json:"user_answer"`
	IsCorrect     bool            `json:"is_correct"`
	QuestionType  string          `json:"question_type"`
	Difficulty    string          `json:"difficulty"`
}

type rawBucket struct {
	QuestionType   string `json:"question_type"`
	Difficulty     string `json:"difficulty"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
}

// timeLayouts covers RFC 3339 plus the MySQL and HTTP-date renderings the
// backend has been seen emitting.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	http.TimeFormat,
	time.RFC1123Z,
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func normalizeKind(value string, fallback model.QuestionKind) model.QuestionKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "mcq", "multiple_choice", "multiple-choice", "multiplechoice":
		return model.KindMultipleChoice
	case "truefalse", "true_false", "true-false", "tf":
		return model.KindTrueFalse
	default:
		return fallback
	}
}

func normalizeDifficulty(value string, fallback model.Difficulty) model.Difficulty {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "normal", "easy", "medium":
		return model.DifficultyNormal
	case "hard", "difficult":
		return model.DifficultyHard
	default:
		return fallback
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstInt(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// normalizeQuestion converts one backend question into the canonical shape,
// filling kind and difficulty from the request when the payload omits them.
func normalizeQuestion(raw json.RawMessage, kind model.QuestionKind, difficulty model.Difficulty) (model.Question, error) {
	var rq rawQuestion
	if err := json.Unmarshal(raw, &rq); err != nil {
		return model.Question{}, fmt.Errorf("failed to decode question: %w", err)
	}
	prompt := firstNonEmpty(rq.Question, rq.Prompt, rq.Text)
	if prompt == "" {
		return model.Question{}, fmt.Errorf("question has no prompt")
	}
	options := rq.Options
	if len(options) == 0 {
		options = rq.Choices
	}
	if len(options) < 2 {
		return model.Question{}, fmt.Errorf("question %q has %d options", prompt, len(options))
	}
	correct := firstInt(rq.CorrectCamel, rq.CorrectSnake, rq.Answer)
	if correct == nil {
		return model.Question{}, fmt.Errorf("question %q has no correct answer", prompt)
	}
	if *correct < 0 || *correct >= len(options) {
		return model.Question{}, fmt.Errorf("question %q correct index %d out of range", prompt, *correct)
	}
	return model.Question{
		ID:           rq.ID,
		Prompt:       prompt,
		Options:      options,
		CorrectIndex: *correct,
		Kind:         normalizeKind(firstNonEmpty(rq.KindCamel, rq.KindSnake, rq.KindBare), kind),
		Difficulty:   normalizeDifficulty(firstNonEmpty(rq.Difficulty, rq.DifficultyAlt), difficulty),
	}, nil
}

// normalizeSession converts a backend session row into a SessionRecord. A
// missing duration is derived from updated_at - created_at in whole seconds
// and never goes negative.
func normalizeSession(raw rawSession) (model.SessionRecord, error) {
	if raw.ID == 0 {
		return model.SessionRecord{}, fmt.Errorf("session has no id")
	}
	createdAt, err := parseTime(firstNonEmpty(raw.CreatedAtFormatted, raw.CreatedAt))
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("session %d: %w", raw.ID, err)
	}
	updatedAt := createdAt
	if raw.UpdatedAt != "" {
		if parsed, err := parseTime(raw.UpdatedAt); err == nil {
			updatedAt = parsed
		}
	}
	duration := 0.0
	if raw.SessionDuration != nil {
		duration = *raw.SessionDuration
	} else {
		duration = math.Trunc(updatedAt.Sub(createdAt).Seconds())
	}
	if duration < 0 {
		duration = 0
	}
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = "Study Session " + createdAt.Format("2006-01-02 15:04")
	}
	return model.SessionRecord{
		ID:              raw.ID,
		Title:           title,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
		TotalQuestions:  raw.TotalQuestions,
		CorrectAnswers:  raw.CorrectAnswers,
		ScorePercent:    int(math.Round(raw.ScorePercentage)),
		DurationSeconds: duration,
	}, nil
}

// normalizeCard converts a stored flashcard row. Options arrive either as a
// JSON array or as a JSON-encoded string of one.
func normalizeCard(raw rawCard) (model.CardDetail, error) {
	options, err := decodeOptions(raw.Options)
	if err != nil {
		return model.CardDetail{}, fmt.Errorf("card %d: %w", raw.ID, err)
	}
	if strings.TrimSpace(raw.Question) == "" {
		return model.CardDetail{}, fmt.Errorf("card %d has no question", raw.ID)
	}
	return model.CardDetail{
		ID:            raw.ID,
		Prompt:        raw.Question,
		Options:       options,
		CorrectAnswer: raw.CorrectAnswer,
		UserAnswer:    raw.UserAnswer,
		IsCorrect:     raw.IsCorrect,
		Kind:          normalizeKind(raw.QuestionType, model.KindMultipleChoice),
		Difficulty:    normalizeDifficulty(raw.Difficulty, model.DifficultyNormal),
	}, nil
}

func decodeOptions(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("card has no options")
	}
	var options []string
	if err := json.Unmarshal(raw, &options); err == nil {
		return options, nil
	}
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("failed to decode options")
	}
	if err := json.Unmarshal([]byte(encoded), &options); err != nil {
		return nil, fmt.Errorf("failed to decode options string: %w", err)
	}
	return options, nil
}

func normalizeBuckets(buckets []rawBucket) []model.GroupAccuracy {
	out := make([]model.GroupAccuracy, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, model.GroupAccuracy{
			Label:   firstNonEmpty(b.QuestionType, b.Difficulty),
			Total:   b.TotalQuestions,
			Correct: b.CorrectAnswers,
		})
	}
	return out
}
