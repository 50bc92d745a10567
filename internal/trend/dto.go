package trend

import (
	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

type TrendResponse struct {
	EntityID   uuid.UUID       `json:"entity_id"`
	EntityType goal.EntityType `json:"entity_type"`
	Result
	Series []Point `json:"series"`
}
