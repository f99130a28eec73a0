// Package analytics derives summary statistics, time metrics, and trend
// series from the session history. Every function is pure over the record
// subset it is given; filtering decides the subset first, and all derived
// views are rebuilt together from that one subset so they can never disagree
// about which filter they reflect.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

// SuccessThreshold is the score a session needs to count as a success.
const SuccessThreshold = 80

// Summary aggregates scores over a session subset.
type Summary struct {
	Sessions       int
	AvgScore       float64 // mean score percentage, one decimal
	TotalQuestions int
	SuccessRate    float64 // percentage of sessions at or above SuccessThreshold
}

// TimeUsage aggregates study time over a session subset. All divisions guard
// a zero denominator and yield 0 instead of NaN or Inf.
type TimeUsage struct {
	TotalSeconds          float64
	AvgSessionSeconds     float64
	QuestionsPerHour      float64
	AvgSecondsPerQuestion float64
}

// TimeMetric selects the time-derived series of the trend.
type TimeMetric int

// Available time metrics.
const (
	TimeMetricDuration TimeMetric = iota
	TimeMetricPerQuestion
)

// TrendPoint is one session of the trend series, in creation order.
type TrendPoint struct {
	CreatedAt time.Time
	Score     float64
	TimeValue float64
}

// Snapshot bundles every derived view computed from one filtered subset.
type Snapshot struct {
	Filter   model.Filter
	Sessions []model.SessionRecord // ascending by creation time
	Summary  Summary
	Time     TimeUsage
	Trend    []TrendPoint
}

// Summarize computes the score summary. An empty subset yields all zeros.
func Summarize(records []model.SessionRecord) Summary {
	s := Summary{Sessions: len(records)}
	if len(records) == 0 {
		return s
	}
	scoreSum := 0
	successes := 0
	for _, r := range records {
		scoreSum += r.ScorePercent
		s.TotalQuestions += r.TotalQuestions
		if r.ScorePercent >= SuccessThreshold {
			successes++
		}
	}
	s.AvgScore = math.Round(float64(scoreSum)/float64(len(records))*10) / 10
	s.SuccessRate = float64(successes) / float64(len(records)) * 100
	return s
}

// ComputeTimeUsage computes the time metrics. An empty subset yields zeros.
func ComputeTimeUsage(records []model.SessionRecord) TimeUsage {
	var u TimeUsage
	questions := 0
	for _, r := range records {
		u.TotalSeconds += r.DurationSeconds
		questions += r.TotalQuestions
	}
	if len(records) > 0 {
		u.AvgSessionSeconds = u.TotalSeconds / float64(len(records))
	}
	if u.TotalSeconds > 0 {
		u.QuestionsPerHour = float64(questions) / (u.TotalSeconds / 3600)
	}
	if questions > 0 {
		u.AvgSecondsPerQuestion = u.TotalSeconds / float64(questions)
	}
	return u
}

// ApplyFilter selects the session subset: the calendar window drops sessions
// older than Days first, then Last keeps the most recent of the remainder.
// The result is sorted ascending by creation time. Applying the same filter
// twice returns the same subset.
func ApplyFilter(records []model.SessionRecord, filter model.Filter, now time.Time) []model.SessionRecord {
	out := make([]model.SessionRecord, 0, len(records))
	var cutoff time.Time
	if filter.Days > 0 {
		cutoff = now.AddDate(0, 0, -filter.Days)
	}
	for _, r := range records {
		if filter.Days > 0 && r.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if filter.Last > 0 && len(out) > filter.Last {
		out = out[len(out)-filter.Last:]
	}
	return out
}

// Trend emits one point per session over the given subset, which must already
// be in ascending creation order. Zero sessions yield an empty series.
func Trend(records []model.SessionRecord, metric TimeMetric) []TrendPoint {
	points := make([]TrendPoint, 0, len(records))
	for _, r := range records {
		value := r.DurationSeconds
		if metric == TimeMetricPerQuestion {
			value = 0
			if r.TotalQuestions > 0 {
				value = r.DurationSeconds / float64(r.TotalQuestions)
			}
		}
		points = append(points, TrendPoint{
			CreatedAt: r.CreatedAt,
			Score:     float64(r.ScorePercent),
			TimeValue: value,
		})
	}
	return points
}

// BuildSnapshot filters the records and recomputes every derived view from
// the same subset.
func BuildSnapshot(records []model.SessionRecord, filter model.Filter, metric TimeMetric, now time.Time) Snapshot {
	subset := ApplyFilter(records, filter, now)
	return Snapshot{
		Filter:   filter,
		Sessions: subset,
		Summary:  Summarize(subset),
		Time:     ComputeTimeUsage(subset),
		Trend:    Trend(subset, metric),
	}
}

// SessionIDs returns the ids of the filtered subset, for the remote
// type/difficulty aggregation.
func (s Snapshot) SessionIDs() []int64 {
	ids := make([]int64, len(s.Sessions))
	for i, r := range s.Sessions {
		ids[i] = r.ID
	}
	return ids
}
