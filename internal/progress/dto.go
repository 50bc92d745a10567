package progress

import (
	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

type UpdateValueDTO struct {
	Value *float64 `json:"value"`
}

type KeyResultProgressResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	CurrentValue float64   `json:"current_value"`
	TargetValue  float64   `json:"target_value"`
	Unit         string    `json:"unit"`
	Weight       *float64  `json:"weight,omitempty"`
	Progress     int       `json:"progress"`
}

type ProgressResponse struct {
	ID         uuid.UUID                   `json:"id"`
	EntityType goal.EntityType             `json:"entity_type"`
	Title      string                      `json:"title"`
	Progress   int                         `json:"progress"`
	KeyResults []KeyResultProgressResponse `json:"key_results"`
}

type EntityProgress struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Progress int       `json:"progress"`
}

type ActionStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	Overdue  int            `json:"overdue"`
}

type DashboardResponse struct {
	OverallProgress int              `json:"overall_progress"`
	Ambitions       []EntityProgress `json:"ambitions"`
	Objectives      []EntityProgress `json:"objectives"`
	Actions         ActionStats      `json:"actions"`
}
