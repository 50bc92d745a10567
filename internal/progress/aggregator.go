// Package progress turns raw key result values into completion percentages
// and rolls them up the goal hierarchy. The functions in this file are pure;
// Service wires them to the store.
package progress

import (
	"math"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

// KeyResultProgress is current/target as a percentage clamped to [0, 100].
// A non-positive target means no measurable progress yet and yields 0.
func KeyResultProgress(m goal.Measure) float64 {
	if m.TargetValue <= 0 {
		return 0
	}
	return clamp(m.CurrentValue / m.TargetValue * 100)
}

// AmbitionProgress is the unweighted mean over the ambition's key results.
// Ambition key results carry no weights, so each counts the same.
func AmbitionProgress(krs []goal.KeyResult) float64 {
	if len(krs) == 0 {
		return 0
	}
	var sum float64
	for _, kr := range krs {
		sum += KeyResultProgress(kr.Measure)
	}
	return sum / float64(len(krs))
}

// Member is one weighted entry of an objective set.
type Member struct {
	Progress float64
	Weight   float64
}

// WeightedObjectiveProgress is Σ(min(p,100)·w/100) / Σ(w/100), or 0 when the
// weights add up to nothing.
func WeightedObjectiveProgress(members []Member) float64 {
	var contribution, total float64
	for _, m := range members {
		if m.Weight <= 0 {
			continue
		}
		w := m.Weight / 100
		contribution += math.Min(m.Progress, 100) * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return contribution / total
}

// Members converts quarterly key results into weighted members.
func Members(krs []goal.QuarterlyKeyResult) []Member {
	out := make([]Member, len(krs))
	for i, kr := range krs {
		out[i] = Member{Progress: KeyResultProgress(kr.Measure), Weight: kr.Weight}
	}
	return out
}

// OverallProgress is the unweighted mean of per-ambition progress values.
func OverallProgress(ambitions []float64) float64 {
	if len(ambitions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range ambitions {
		sum += p
	}
	return sum / float64(len(ambitions))
}

// Percent rounds a progress value to the integer shown to clients.
func Percent(p float64) int {
	return int(math.Round(clamp(p)))
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
