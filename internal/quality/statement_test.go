package quality

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatementPenaltiesStack(t *testing.T) {
	r := ScoreStatement(Statement{Title: "x"}, evalTime)

	assert.LessOrEqual(t, r.Confidence, 65)
	assert.False(t, r.Valid)
	assert.Contains(t, r.Issues, "title is too short")
	assert.Contains(t, r.Issues, "description is too short")
}

func TestStatementWellFormed(t *testing.T) {
	r := ScoreStatement(Statement{
		Title:       "Increase savings by 20%",
		Description: "Move part of every salary into the index fund",
		Deadline:    ptr(evalTime.AddDate(0, 6, 0)),
	}, evalTime)

	assert.Equal(t, 100, r.Confidence)
	assert.True(t, r.Valid)
	assert.Empty(t, r.Issues)
	assert.Empty(t, r.Warnings)
}

func TestStatementWarnings(t *testing.T) {
	long := "Read " + strings.Repeat("many books ", 10) + "12"
	r := ScoreStatement(Statement{
		Title:       long,
		Description: "A long enough description here",
		Deadline:    ptr(evalTime.Add(-time.Hour)),
	}, evalTime)

	assert.Equal(t, 60, r.Confidence)
	assert.Len(t, r.Warnings, 2)
	assert.Empty(t, r.Issues)
}

func TestStatementRecognizesVerbsAndQuantities(t *testing.T) {
	tests := []struct {
		title    string
		verb     bool
		quantity bool
	}{
		{"Running 10 km every week", true, true},
		{"Reduced costs", true, false},
		{"Economizar mil reais", true, true},
		{"Ganhar R$ 500", true, true},
		{"A better website", false, false},
		{"Double the revenue", true, false},
		{"Sell half the stock", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.verb, hasActionVerb(tt.title))
			assert.Equal(t, tt.quantity, hasQuantity(tt.title))
		})
	}
}
