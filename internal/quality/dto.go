package quality

import (
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type SMARTRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	TargetValue *float64            `json:"target_value"`
	Unit        string              `json:"unit"`
	Deadline    *util.LocalDateTime `json:"deadline"`
}

func (r SMARTRequest) candidate() KeyResultCandidate {
	return KeyResultCandidate{
		Title:       r.Title,
		Description: r.Description,
		TargetValue: r.TargetValue,
		Unit:        r.Unit,
		Deadline:    util.ToTimePtr(r.Deadline),
	}
}

type StatementRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Deadline    *util.LocalDateTime `json:"deadline"`
}

func (r StatementRequest) statement() Statement {
	return Statement{Title: r.Title, Description: r.Description, Deadline: util.ToTimePtr(r.Deadline)}
}

type ReviewRequest struct {
	Kind        goal.EntityType     `json:"kind"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	TargetValue *float64            `json:"target_value"`
	Unit        string              `json:"unit"`
	Deadline    *util.LocalDateTime `json:"deadline"`
	Profile     string              `json:"profile"`
}

type ReviewResponse struct {
	Statement StatementResult `json:"statement"`
	// SMART is only filled for key results.
	SMART       *SMARTResult `json:"smart,omitempty"`
	Suggestions []string     `json:"suggestions"`
	AdvisorUsed bool         `json:"advisor_used"`
}
