package objective

import (
	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type CreateObjectiveDTO struct {
	ID          *uuid.UUID    `json:"id"`
	AmbitionID  *uuid.UUID    `json:"ambition_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Quarter     *goal.Quarter `json:"quarter"`
	Year        int           `json:"year"`
}

type UpdateObjectiveDTO struct {
	AmbitionID    *uuid.UUID    `json:"ambition_id"`
	ClearAmbition bool          `json:"clear_ambition"`
	Title         *string       `json:"title"`
	Description   *string       `json:"description"`
	Quarter       *goal.Quarter `json:"quarter"`
	Year          *int          `json:"year"`
}

type CreateQuarterlyKeyResultDTO struct {
	ID           *uuid.UUID          `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	TargetValue  float64             `json:"target_value"`
	CurrentValue float64             `json:"current_value"`
	Unit         string              `json:"unit"`
	Deadline     *util.LocalDateTime `json:"deadline"`
	Weight       *float64            `json:"weight"`
}

type UpdateQuarterlyKeyResultDTO struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	TargetValue   *float64            `json:"target_value"`
	Unit          *string             `json:"unit"`
	Deadline      *util.LocalDateTime `json:"deadline"`
	ClearDeadline bool                `json:"clear_deadline"`
	Weight        *float64            `json:"weight"`
}

type QuarterlyKeyResultResponse struct {
	goal.QuarterlyKeyResult
	Progress int `json:"progress"`
}

type ObjectiveResponse struct {
	goal.QuarterlyObjective
	Progress   int                          `json:"progress"`
	KeyResults []QuarterlyKeyResultResponse `json:"key_results"`
}

// defaultWeight splits the objective evenly when the client sends none.
const defaultWeight = 100.0
