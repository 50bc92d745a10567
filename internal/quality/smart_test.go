package quality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var evalTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestSMARTFullScore(t *testing.T) {
	r := ScoreSMART(KeyResultCandidate{
		Title:       "Save for a flat",
		Description: "Put money aside every month",
		TargetValue: ptr(500000.0),
		Unit:        "€",
		Deadline:    ptr(evalTime.AddDate(1, 0, 0)),
	}, evalTime)

	assert.Equal(t, 100, r.Score)
	assert.True(t, r.Valid)
	assert.Empty(t, r.Recommendations)
}

func TestSMARTWithoutDeadline(t *testing.T) {
	r := ScoreSMART(KeyResultCandidate{
		Title:       "Save for a flat",
		Description: "Put money aside every month",
		TargetValue: ptr(500000.0),
		Unit:        "€",
	}, evalTime)

	assert.False(t, r.TimeBound)
	assert.LessOrEqual(t, r.Score, 80)
	assert.Len(t, r.Recommendations, 1)
}

func TestSMARTCriteria(t *testing.T) {
	base := func() KeyResultCandidate {
		return KeyResultCandidate{
			Title:       "Run a marathon",
			Description: "Finish the city marathon",
			TargetValue: ptr(42.0),
			Unit:        "km",
			Deadline:    ptr(evalTime.Add(24 * time.Hour)),
		}
	}

	tests := []struct {
		name   string
		mutate func(*KeyResultCandidate)
		check  func(SMARTResult) bool
	}{
		{"short title is not specific", func(c *KeyResultCandidate) { c.Title = "Run" }, func(r SMARTResult) bool { return !r.Specific && r.Relevant }},
		{"missing unit is not measurable", func(c *KeyResultCandidate) { c.Unit = " " }, func(r SMARTResult) bool { return !r.Measurable && r.Achievable }},
		{"zero target is not achievable", func(c *KeyResultCandidate) { c.TargetValue = ptr(0.0) }, func(r SMARTResult) bool { return !r.Achievable && r.Measurable }},
		{"huge target is not achievable", func(c *KeyResultCandidate) { c.TargetValue = ptr(1_000_000.0) }, func(r SMARTResult) bool { return !r.Achievable }},
		{"missing target fails both", func(c *KeyResultCandidate) { c.TargetValue = nil }, func(r SMARTResult) bool { return !r.Achievable && !r.Measurable }},
		{"no description fails specific and relevant", func(c *KeyResultCandidate) { c.Description = "" }, func(r SMARTResult) bool { return !r.Specific && !r.Relevant }},
		{"deadline now is not in the future", func(c *KeyResultCandidate) { c.Deadline = ptr(evalTime) }, func(r SMARTResult) bool { return !r.TimeBound }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			r := ScoreSMART(c, evalTime)
			assert.True(t, tt.check(r), "%+v", r)

			passed := 0
			for _, ok := range []bool{r.Specific, r.Measurable, r.Achievable, r.Relevant, r.TimeBound} {
				if ok {
					passed++
				}
			}
			assert.Equal(t, passed*20, r.Score)
			assert.Len(t, r.Recommendations, 5-passed)
		})
	}
}
