// Package quality scores goal statements: the SMART rubric for key results,
// a confidence heuristic for any free-text goal, and optional model-generated
// suggestions layered on top.
package quality

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	criterionPoints  = 20
	minSpecificTitle = 10
	maxAchievable    = 1_000_000
	smartValidScore  = 80
)

// KeyResultCandidate is a key result as typed by the user, possibly incomplete.
type KeyResultCandidate struct {
	Title       string
	Description string
	TargetValue *float64
	Unit        string
	Deadline    *time.Time
}

type SMARTResult struct {
	Specific        bool     `json:"specific"`
	Measurable      bool     `json:"measurable"`
	Achievable      bool     `json:"achievable"`
	Relevant        bool     `json:"relevant"`
	TimeBound       bool     `json:"time_bound"`
	Score           int      `json:"score"`
	Valid           bool     `json:"valid"`
	Recommendations []string `json:"recommendations"`
}

// ScoreSMART awards 20 points per satisfied criterion. Relevant only checks
// that both title and description exist; it does not compare the key result
// with its ambition.
func ScoreSMART(c KeyResultCandidate, now time.Time) SMARTResult {
	title := strings.TrimSpace(c.Title)
	desc := strings.TrimSpace(c.Description)
	unit := strings.TrimSpace(c.Unit)

	r := SMARTResult{Recommendations: []string{}}

	r.Specific = utf8.RuneCountInString(title) >= minSpecificTitle && desc != ""
	if !r.Specific {
		r.Recommendations = append(r.Recommendations,
			"Make it specific: use a title of at least 10 characters and describe what exactly will be achieved.")
	}

	r.Measurable = c.TargetValue != nil && unit != ""
	if !r.Measurable {
		r.Recommendations = append(r.Recommendations,
			"Make it measurable: set a target value and the unit it is counted in (km, books, R$).")
	}

	r.Achievable = c.TargetValue != nil && *c.TargetValue > 0 && *c.TargetValue < maxAchievable
	if !r.Achievable {
		r.Recommendations = append(r.Recommendations,
			"Make it achievable: choose a target greater than zero and below 1,000,000.")
	}

	r.Relevant = title != "" && desc != ""
	if !r.Relevant {
		r.Recommendations = append(r.Recommendations,
			"Make it relevant: explain in the description why this result matters for the ambition.")
	}

	r.TimeBound = c.Deadline != nil && c.Deadline.After(now)
	if !r.TimeBound {
		if c.Deadline == nil {
			r.Recommendations = append(r.Recommendations, "Make it time-bound: add a deadline.")
		} else {
			r.Recommendations = append(r.Recommendations, "Make it time-bound: the deadline has already passed, pick a future date.")
		}
	}

	for _, ok := range []bool{r.Specific, r.Measurable, r.Achievable, r.Relevant, r.TimeBound} {
		if ok {
			r.Score += criterionPoints
		}
	}
	r.Valid = r.Score >= smartValidScore
	return r
}
