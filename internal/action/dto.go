package action

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type CreateActionDTO struct {
	// ID is generated by the client so retries after a timeout are safe.
	ID                   *uuid.UUID          `json:"id"`
	QuarterlyKeyResultID *uuid.UUID          `json:"quarterly_key_result_id"`
	ObjectiveID          *uuid.UUID          `json:"objective_id"`
	Title                string              `json:"title"`
	Description          string              `json:"description"`
	Priority             *goal.Priority      `json:"priority"`
	Deadline             *util.LocalDateTime `json:"deadline"`
}

func (d CreateActionDTO) toAction(userID uuid.UUID) *goal.Action {
	a := &goal.Action{
		UserID:               userID,
		QuarterlyKeyResultID: d.QuarterlyKeyResultID,
		ObjectiveID:          d.ObjectiveID,
		Title:                d.Title,
		Description:          d.Description,
		Status:               goal.StatusTodo,
		Priority:             goal.PriorityMedium,
		Deadline:             util.ToTimePtr(d.Deadline),
	}
	if d.ID != nil {
		a.ID = *d.ID
	} else {
		a.ID = uuid.New()
	}
	if d.Priority != nil {
		a.Priority = *d.Priority
	}
	a.ResolveBoard()
	return a
}

// UpdateActionDTO changes descriptive fields only; status and position go
// through Move and Reposition.
type UpdateActionDTO struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	Priority      *goal.Priority      `json:"priority"`
	Deadline      *util.LocalDateTime `json:"deadline"`
	ClearDeadline bool                `json:"clear_deadline"`
}

func (d UpdateActionDTO) fields() map[string]any {
	f := map[string]any{}
	if d.Title != nil {
		f["title"] = *d.Title
	}
	if d.Description != nil {
		f["description"] = *d.Description
	}
	if d.Priority != nil {
		f["priority"] = *d.Priority
	}
	if t := util.ToTimePtr(d.Deadline); t != nil {
		f["deadline"] = *t
	} else if d.ClearDeadline {
		f["deadline"] = nil
	}
	return f
}

// MoveActionDTO carries a plan computed by the client against the board it
// read. Generations, when present, are the column generations of that read
// keyed by status name.
type MoveActionDTO struct {
	Status      *goal.ActionStatus     `json:"status"`
	OrderIndex  int                    `json:"order_index"`
	Plan        []goal.OrderAssignment `json:"plan"`
	Generations map[string]int64       `json:"generations,omitempty"`
}

func (d MoveActionDTO) expected(board uuid.UUID) (map[goal.Column]int64, error) {
	if len(d.Generations) == 0 {
		return nil, nil
	}
	out := make(map[goal.Column]int64, len(d.Generations))
	for name, gen := range d.Generations {
		st, err := goal.ParseActionStatus(name)
		if err != nil {
			return nil, err
		}
		if gen < 0 {
			return nil, fmt.Errorf("%w: negative generation for %s", goal.ErrInvalidInput, name)
		}
		out[goal.Column{BoardID: board, Status: st}] = gen
	}
	return out, nil
}

// targetStatus rejects a missing or unknown destination before anything is read.
func targetStatus(s *goal.ActionStatus) (goal.ActionStatus, error) {
	if s == nil {
		return 0, fmt.Errorf("%w: status is required", goal.ErrInvalidInput)
	}
	if !s.IsValid() {
		return 0, fmt.Errorf("%w: unknown status", goal.ErrInvalidInput)
	}
	return *s, nil
}

// RepositionActionDTO lets the server compute the plan.
type RepositionActionDTO struct {
	Status   *goal.ActionStatus `json:"status"`
	Position int                `json:"position"`
}

type ColumnResponse struct {
	Status     goal.ActionStatus `json:"status"`
	Generation int64             `json:"generation"`
	Actions    []goal.Action     `json:"actions"`
}

type BoardResponse struct {
	BoardID uuid.UUID        `json:"board_id"`
	Columns []ColumnResponse `json:"columns"`
}

type OrphansResponse struct {
	Count   int           `json:"count"`
	Actions []goal.Action `json:"actions"`
}
