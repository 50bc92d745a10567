package quality

import (
	"context"
	"time"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

// Candidate is what the advisor sees: a partial goal plus optional context
// about the user.
type Candidate struct {
	Kind        goal.EntityType `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	TargetValue *float64        `json:"target_value,omitempty"`
	Unit        string          `json:"unit,omitempty"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Profile     string          `json:"profile,omitempty"`
}

// Advisor returns free-text suggestions for a candidate. Callers treat every
// error as "no suggestions".
type Advisor interface {
	Suggest(ctx context.Context, c Candidate) ([]string, error)
}

// NoopAdvisor is used when no model is configured.
type NoopAdvisor struct{}

func (NoopAdvisor) Suggest(context.Context, Candidate) ([]string, error) { return nil, nil }
