// Package api implements the HTTP client for the study-buddy backend.
//
// Every endpoint answers a uniform {status, message} envelope. Any non-success
// status, non-2xx code, or transport failure is recoverable: the caller keeps
// its local state and may retry. HTTP 401 is reported as ErrAuthRequired so
// the UI can reopen the sign-in gate.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

const defaultTimeout = 60 * time.Second

// Client talks to the study-buddy backend. Authentication rides on the
// session cookie held by the jar.
type Client struct {
	baseURL string
	http    *http.Client
	logf    func(format string, args ...any)
}

// New creates a client for the given base URL.
func New(baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server URL is empty")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout, Jar: jar},
		logf:    func(string, ...any) {},
	}, nil
}

// SetLogf installs a diagnostic log function used for dropped payloads.
func (c *Client) SetLogf(logf func(format string, args ...any)) {
	if logf != nil {
		c.logf = logf
	}
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e envelope) check(op string) error {
	if e.Status == "success" {
		return nil
	}
	return &BackendError{Op: op, Message: e.Message}
}

// do issues one request and decodes the JSON body into out. The backend sends
// its envelope on error codes too, so the body is decoded before the status
// code is judged.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthRequired
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return fmt.Errorf("unexpected status: %s", resp.Status)
			}
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates by email and returns the user.
func (c *Client) Login(ctx context.Context, email string) (model.User, error) {
	var resp struct {
		envelope
		User struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	req := map[string]string{"email": email}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return model.User{}, err
	}
	if err := resp.check("auth/login"); err != nil {
		return model.User{}, err
	}
	return model.User{ID: resp.User.ID, Email: resp.User.Email}, nil
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	var resp envelope
	if err := c.do(ctx, http.MethodGet, "/auth/logout", nil, &resp); err != nil {
		return err
	}
	return resp.check("auth/logout")
}

// Status reports whether the session cookie is still authenticated.
func (c *Client) Status(ctx context.Context) (model.User, bool, error) {
	var resp struct {
		Authenticated bool `json:"authenticated"`
		User          *struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/status", nil, &resp); err != nil {
		return model.User{}, false, err
	}
	if !resp.Authenticated || resp.User == nil {
		return model.User{}, false, nil
	}
	return model.User{ID: resp.User.ID, Email: resp.User.Email}, true, nil
}

// TierInfo fetches the current quota snapshot.
func (c *Client) TierInfo(ctx context.Context) (model.TierInfo, error) {
	var resp struct {
		envelope
		TierInfo struct {
			Tier              string `json:"tier"`
			RemainingSessions int    `json:"remaining_sessions"`
			ResetIn           int64  `json:"reset_in"`
		} `json:"tier_info"`
	}
	if err := c.do(ctx, http.MethodGet, "/user/tier-info", nil, &resp); err != nil {
		return model.TierInfo{}, err
	}
	if err := resp.check("user/tier-info"); err != nil {
		return model.TierInfo{}, err
	}
	return model.TierInfo{
		Tier:              resp.TierInfo.Tier,
		RemainingSessions: resp.TierInfo.RemainingSessions,
		ResetInSeconds:    resp.TierInfo.ResetIn,
	}, nil
}

// GenerateRequest carries the parameters of a generation call.
type GenerateRequest struct {
	Notes      string
	Count      int
	Kind       model.QuestionKind
	Difficulty model.Difficulty
	StartedAt  time.Time
}

// GenerateQuestions asks the backend for a fresh question set. Responses are
// normalized through the adapter in decode.go; malformed questions are logged
// and dropped rather than silently defaulted.
func (c *Client) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]model.Question, error) {
	body := map[string]any{
		"notes":              req.Notes,
		"num_questions":      req.Count,
		"question_type":      string(req.Kind),
		"difficulty":         string(req.Difficulty),
		"session_start_time": req.StartedAt.Format(time.RFC3339),
	}
	var resp struct {
		envelope
		Questions []json.RawMessage `json:"questions"`
		Source    string            `json:"source"`
	}
	if err := c.do(ctx, http.MethodPost, "/generate_questions", body, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("generate_questions"); err != nil {
		return nil, err
	}
	questions := make([]model.Question, 0, len(resp.Questions))
	for i, raw := range resp.Questions {
		q, err := normalizeQuestion(raw, req.Kind, req.Difficulty)
		if err != nil {
			c.logf("dropping malformed question %d from %s: %v", i, resp.Source, err)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("backend returned no usable questions")
	}
	return questions, nil
}

// SavePayload is the answered question set submitted for persistence.
type SavePayload struct {
	Questions []model.Question
	Notes     string
	StartedAt time.Time
	EndedAt   time.Time
}

// SaveSession persists a fully answered and revealed question set.
func (c *Client) SaveSession(ctx context.Context, payload SavePayload) error {
	cards := make([]map[string]any, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		cards = append(cards, map[string]any{
			"question":      q.Prompt,
			"options":       q.Options,
			"correctAnswer": q.CorrectIndex,
			"userAnswer":    q.UserAnswer,
			"questionType":  string(q.Kind),
			"difficulty":    string(q.Difficulty),
		})
	}
	body := map[string]any{
		"flashcards":         cards,
		"notes":              payload.Notes,
		"session_start_time": payload.StartedAt.Format(time.RFC3339),
		"session_end_time":   payload.EndedAt.Format(time.RFC3339),
		"session_duration":   payload.EndedAt.Sub(payload.StartedAt).Seconds(),
	}
	var resp envelope
	if err := c.do(ctx, http.MethodPost, "/save_flashcards", body, &resp); err != nil {
		return err
	}
	return resp.check("save_flashcards")
}

// ListSessions fetches the full session history for the authenticated user.
func (c *Client) ListSessions(ctx context.Context) ([]model.SessionRecord, error) {
	var resp struct {
		envelope
		Sessions []rawSession `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/list_sessions", nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("list_sessions"); err != nil {
		return nil, err
	}
	records := make([]model.SessionRecord, 0, len(resp.Sessions))
	for i, raw := range resp.Sessions {
		record, err := normalizeSession(raw)
		if err != nil {
			c.logf("dropping malformed session %d: %v", i, err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteSession removes one persisted session.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	var resp envelope
	path := fmt.Sprintf("/delete_session/%d", id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return err
	}
	return resp.check("delete_session")
}

// GetFlashcards fetches the stored questions of one session.
func (c *Client) GetFlashcards(ctx context.Context, sessionID int64) ([]model.CardDetail, error) {
	var resp struct {
		envelope
		Flashcards []rawCard `json:"flashcards"`
	}
	path := fmt.Sprintf("/get_flashcards/%d", sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.check("get_flashcards"); err != nil {
		return nil, err
	}
	cards := make([]model.CardDetail, 0, len(resp.Flashcards))
	for i, raw := range resp.Flashcards {
		card, err := normalizeCard(raw)
		if err != nil {
			c.logf("dropping malformed flashcard %d: %v", i, err)
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// TypeDifficultyBreakdown asks the backend to aggregate accuracy by question
// kind and difficulty over exactly the given session ids.
func (c *Client) TypeDifficultyBreakdown(ctx context.Context, sessionIDs []int64) (model.Breakdown, error) {
	if sessionIDs == nil {
		sessionIDs = []int64{}
	}
	body := map[string]any{"session_ids": sessionIDs}
	var resp struct {
		envelope
		Data struct {
			QuestionTypes []rawBucket `json:"question_types"`
			Difficulties  []rawBucket `json:"difficulties"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/analytics/type-difficulty-filtered", body, &resp); err != nil {
		return model.Breakdown{}, err
	}
	if err := resp.check("analytics/type-difficulty-filtered"); err != nil {
		return model.Breakdown{}, err
	}
	return model.Breakdown{
		Kinds:        normalizeBuckets(resp.Data.QuestionTypes),
		Difficulties: normalizeBuckets(resp.Data.Difficulties),
	}, nil
}
