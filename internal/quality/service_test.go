package quality

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

func newTestService(a Advisor) *service {
	s := NewService(a, nil).(*service)
	s.now = func() time.Time { return evalTime }
	return s
}

func TestReviewMergesAdvisorSuggestions(t *testing.T) {
	s := newTestService(&fakeAdvisor{out: []string{"Pick a unit such as km", "Add a deadline."}})

	resp := s.Review(context.Background(), ReviewRequest{
		Kind:  goal.EntityKeyResult,
		Title: "Run more",
	})

	require.NotNil(t, resp.SMART)
	assert.True(t, resp.AdvisorUsed)
	assert.Contains(t, resp.Suggestions, "Pick a unit such as km")
	assert.Greater(t, len(resp.Suggestions), 2)
}

func TestReviewFallsBackToHeuristics(t *testing.T) {
	s := newTestService(&fakeAdvisor{err: errors.New("unreachable")})

	resp := s.Review(context.Background(), ReviewRequest{Kind: goal.EntityAmbition, Title: "x"})

	assert.False(t, resp.AdvisorUsed)
	assert.Nil(t, resp.SMART)
	assert.Equal(t, resp.Statement.Suggestions, resp.Suggestions)
	assert.False(t, resp.Statement.Valid)
}

func TestReviewDeduplicatesSuggestions(t *testing.T) {
	dup := "Move the deadline to a future date."
	s := newTestService(&fakeAdvisor{out: []string{"  " + "move the deadline to a future date." + " ", "Be bold"}})

	resp := s.Review(context.Background(), ReviewRequest{
		Kind:        goal.EntityObjective,
		Title:       "Launch 3 products",
		Description: "Ship the three side projects to production",
		Deadline:    &util.LocalDateTime{Time: evalTime.AddDate(0, 0, -1)},
	})

	assert.Equal(t, []string{dup, "Be bold"}, resp.Suggestions)
}

func TestSMARTUsesClock(t *testing.T) {
	s := newTestService(nil)
	target := 10.0

	r := s.SMART(SMARTRequest{
		Title:       "Read ten books",
		Description: "Fiction and non-fiction",
		TargetValue: &target,
		Unit:        "books",
		Deadline:    &util.LocalDateTime{Time: evalTime.Add(time.Hour)},
	})
	assert.Equal(t, 100, r.Score)
}
