package ambition

import (
	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type CreateAmbitionDTO struct {
	ID          *uuid.UUID     `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Year        int            `json:"year"`
	Category    *goal.Category `json:"category"`
	Priority    *goal.Priority `json:"priority"`
}

type UpdateAmbitionDTO struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Year        *int           `json:"year"`
	Category    *goal.Category `json:"category"`
	Priority    *goal.Priority `json:"priority"`
}

type CreateKeyResultDTO struct {
	ID           *uuid.UUID          `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	TargetValue  float64             `json:"target_value"`
	CurrentValue float64             `json:"current_value"`
	Unit         string              `json:"unit"`
	Deadline     *util.LocalDateTime `json:"deadline"`
}

// UpdateKeyResultDTO leaves current_value out; it moves through the progress
// endpoint so every change lands in the snapshot ledger.
type UpdateKeyResultDTO struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	TargetValue   *float64            `json:"target_value"`
	Unit          *string             `json:"unit"`
	Deadline      *util.LocalDateTime `json:"deadline"`
	ClearDeadline bool                `json:"clear_deadline"`
}

type KeyResultResponse struct {
	goal.KeyResult
	Progress int `json:"progress"`
}

type AmbitionResponse struct {
	goal.Ambition
	Progress   int                 `json:"progress"`
	KeyResults []KeyResultResponse `json:"key_results"`
}

func idOrNew(id *uuid.UUID) uuid.UUID {
	if id != nil && *id != uuid.Nil {
		return *id
	}
	return uuid.New()
}
