package analytics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

func record(id int64, createdAt time.Time, score, questions int, duration float64) model.SessionRecord {
	return model.SessionRecord{
		ID:              id,
		CreatedAt:       createdAt,
		ScorePercent:    score,
		TotalQuestions:  questions,
		DurationSeconds: duration,
	}
}

func TestSummarizeEmptyIsAllZeros(t *testing.T) {
	s := Summarize(nil)
	if s.Sessions != 0 || s.AvgScore != 0 || s.TotalQuestions != 0 || s.SuccessRate != 0 {
		t.Fatalf("expected zeros, got %+v", s)
	}
	if math.IsNaN(s.AvgScore) || math.IsNaN(s.SuccessRate) {
		t.Fatalf("empty summary must not produce NaN")
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	records := []model.SessionRecord{
		record(1, now, 100, 5, 120),
		record(2, now, 80, 4, 60),
		record(3, now, 50, 6, 300),
	}
	s := Summarize(records)
	if s.Sessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", s.Sessions)
	}
	// (100+80+50)/3 = 76.666... rounds to one decimal.
	if s.AvgScore != 76.7 {
		t.Fatalf("expected avg 76.7, got %v", s.AvgScore)
	}
	if s.TotalQuestions != 15 {
		t.Fatalf("expected 15 questions, got %d", s.TotalQuestions)
	}
	// Two of three sessions at or above the 80 threshold.
	if math.Abs(s.SuccessRate-66.666666) > 0.001 {
		t.Fatalf("expected success rate ~66.67, got %v", s.SuccessRate)
	}
}

func TestComputeTimeUsageGuardsZeroDenominators(t *testing.T) {
	u := ComputeTimeUsage(nil)
	if u.TotalSeconds != 0 || u.AvgSessionSeconds != 0 || u.QuestionsPerHour != 0 || u.AvgSecondsPerQuestion != 0 {
		t.Fatalf("expected zeros, got %+v", u)
	}

	// A session with zero duration must not divide by zero.
	u = ComputeTimeUsage([]model.SessionRecord{record(1, time.Now(), 100, 5, 0)})
	if u.QuestionsPerHour != 0 {
		t.Fatalf("zero duration must yield 0 questions/hour, got %v", u.QuestionsPerHour)
	}
	if u.AvgSecondsPerQuestion != 0 {
		t.Fatalf("expected 0 seconds/question, got %v", u.AvgSecondsPerQuestion)
	}

	// A session with zero questions must not divide by zero either.
	u = ComputeTimeUsage([]model.SessionRecord{record(1, time.Now(), 0, 0, 600)})
	if u.AvgSecondsPerQuestion != 0 {
		t.Fatalf("zero questions must yield 0 seconds/question, got %v", u.AvgSecondsPerQuestion)
	}
	if u.QuestionsPerHour != 0 {
		t.Fatalf("expected 0 questions/hour, got %v", u.QuestionsPerHour)
	}
}

func TestComputeTimeUsage(t *testing.T) {
	now := time.Now()
	u := ComputeTimeUsage([]model.SessionRecord{
		record(1, now, 100, 6, 600),
		record(2, now, 80, 6, 1200),
	})
	if u.TotalSeconds != 1800 {
		t.Fatalf("expected 1800s total, got %v", u.TotalSeconds)
	}
	if u.AvgSessionSeconds != 900 {
		t.Fatalf("expected 900s avg, got %v", u.AvgSessionSeconds)
	}
	if u.QuestionsPerHour != 24 {
		t.Fatalf("expected 24 questions/hour, got %v", u.QuestionsPerHour)
	}
	if u.AvgSecondsPerQuestion != 150 {
		t.Fatalf("expected 150s/question, got %v", u.AvgSecondsPerQuestion)
	}
}

func TestApplyFilterWindowThenRecency(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	records := []model.SessionRecord{
		record(1, now.AddDate(0, 0, -20), 50, 5, 60),
		record(2, now.AddDate(0, 0, -6), 60, 5, 60),
		record(3, now.AddDate(0, 0, -4), 70, 5, 60),
		record(4, now.AddDate(0, 0, -2), 80, 5, 60),
		record(5, now.AddDate(0, 0, -1), 90, 5, 60),
	}

	// Days drops the 20-day-old session first, then Last keeps the 2 newest
	// of the remainder.
	got := ApplyFilter(records, model.Filter{Days: 7, Last: 2}, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID != 4 || got[1].ID != 5 {
		t.Fatalf("expected ids 4,5 ascending, got %d,%d", got[0].ID, got[1].ID)
	}
}

func TestApplyFilterIdempotent(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	records := []model.SessionRecord{
		record(3, now.AddDate(0, 0, -1), 70, 5, 60),
		record(1, now.AddDate(0, 0, -3), 50, 5, 60),
		record(2, now.AddDate(0, 0, -2), 60, 5, 60),
	}
	filter := model.Filter{Days: 7, Last: 2}
	once := ApplyFilter(records, filter, now)
	twice := ApplyFilter(once, filter, now)
	if len(once) != len(twice) {
		t.Fatalf("filter not idempotent: %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("filter not idempotent at %d: %d vs %d", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestApplyFilterZeroMeansAll(t *testing.T) {
	now := time.Now()
	records := []model.SessionRecord{
		record(2, now.Add(-time.Hour), 60, 5, 60),
		record(1, now.AddDate(0, 0, -400), 50, 5, 60),
	}
	got := ApplyFilter(records, model.Filter{}, now)
	if len(got) != 2 {
		t.Fatalf("zero filter must keep everything, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("expected ascending creation order, got %d,%d", got[0].ID, got[1].ID)
	}
}

func TestTrendMetrics(t *testing.T) {
	now := time.Now()
	records := []model.SessionRecord{
		record(1, now, 80, 4, 200),
		record(2, now.Add(time.Hour), 100, 0, 90),
	}

	points := Trend(records, TimeMetricDuration)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Score != 80 || points[0].TimeValue != 200 {
		t.Fatalf("unexpected first point: %+v", points[0])
	}

	points = Trend(records, TimeMetricPerQuestion)
	if points[0].TimeValue != 50 {
		t.Fatalf("expected 50s/question, got %v", points[0].TimeValue)
	}
	// Zero questions must not divide by zero.
	if points[1].TimeValue != 0 {
		t.Fatalf("expected 0 for zero-question session, got %v", points[1].TimeValue)
	}

	if got := Trend(nil, TimeMetricDuration); len(got) != 0 {
		t.Fatalf("empty subset must yield an empty series")
	}
}

func TestBuildSnapshotViewsAgree(t *testing.T) {
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	records := []model.SessionRecord{
		record(1, now.AddDate(0, 0, -30), 50, 5, 60),
		record(2, now.AddDate(0, 0, -2), 80, 5, 120),
		record(3, now.AddDate(0, 0, -1), 100, 5, 180),
	}
	snap := BuildSnapshot(records, model.Filter{Days: 7}, TimeMetricDuration, now)
	if len(snap.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(snap.Sessions))
	}
	if snap.Summary.Sessions != len(snap.Sessions) {
		t.Fatalf("summary disagrees with subset: %d vs %d", snap.Summary.Sessions, len(snap.Sessions))
	}
	if len(snap.Trend) != len(snap.Sessions) {
		t.Fatalf("trend disagrees with subset: %d vs %d", len(snap.Trend), len(snap.Sessions))
	}
	if snap.Time.TotalSeconds != 300 {
		t.Fatalf("expected 300s over the subset, got %v", snap.Time.TotalSeconds)
	}
	ids := snap.SessionIDs()
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 3 {
		t.Fatalf("unexpected subset ids: %v", ids)
	}
}

type fakeFetcher struct {
	calls int
	ids   []int64
}

func (f *fakeFetcher) TypeDifficultyBreakdown(_ context.Context, sessionIDs []int64) (model.Breakdown, error) {
	f.calls++
	f.ids = sessionIDs
	return model.Breakdown{
		Kinds: []model.GroupAccuracy{{Label: "mcq", Total: 10, Correct: 7}},
	}, nil
}

func TestFetchBreakdownSkipsEmptySubset(t *testing.T) {
	fetcher := &fakeFetcher{}
	got, err := FetchBreakdown(context.Background(), fetcher, Snapshot{})
	if err != nil {
		t.Fatalf("fetch breakdown: %v", err)
	}
	if fetcher.calls != 0 {
		t.Fatalf("empty subset must not call the backend")
	}
	if len(got.Kinds) != 0 || len(got.Difficulties) != 0 {
		t.Fatalf("expected empty breakdown, got %+v", got)
	}
}

func TestFetchBreakdownSendsSubsetIDs(t *testing.T) {
	now := time.Now()
	snap := BuildSnapshot([]model.SessionRecord{
		record(7, now, 80, 5, 60),
		record(9, now.Add(time.Hour), 90, 5, 60),
	}, model.Filter{}, TimeMetricDuration, now)

	fetcher := &fakeFetcher{}
	got, err := FetchBreakdown(context.Background(), fetcher, snap)
	if err != nil {
		t.Fatalf("fetch breakdown: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected one call, got %d", fetcher.calls)
	}
	if len(fetcher.ids) != 2 || fetcher.ids[0] != 7 || fetcher.ids[1] != 9 {
		t.Fatalf("unexpected ids sent: %v", fetcher.ids)
	}
	if got.Kinds[0].Accuracy() != 70 {
		t.Fatalf("expected 70%% accuracy, got %v", got.Kinds[0].Accuracy())
	}
}
