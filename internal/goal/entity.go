package goal

import (
	"time"

	"github.com/google/uuid"
)

// Measure is the numeric shape shared by key results and quarterly key results.
type Measure struct {
	TargetValue  float64    `gorm:"not null;default:0" json:"target_value"`
	CurrentValue float64    `gorm:"not null;default:0" json:"current_value"`
	Unit         string     `json:"unit"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

type Ambition struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	Year        int       `gorm:"not null" json:"year"`
	Category    Category  `gorm:"type:text;not null" json:"category"`
	Priority    Priority  `gorm:"type:text;not null" json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Ambition) TableName() string { return "ambitions" }

type KeyResult struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	AmbitionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"ambition_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	Measure     `gorm:"embedded"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (KeyResult) TableName() string { return "key_results" }

type QuarterlyObjective struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	AmbitionID  *uuid.UUID `gorm:"type:uuid;index" json:"ambition_id,omitempty"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description,omitempty"`
	Quarter     Quarter    `gorm:"type:text;not null" json:"quarter"`
	Year        int        `gorm:"not null" json:"year"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (QuarterlyObjective) TableName() string { return "quarterly_objectives" }

type QuarterlyKeyResult struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ObjectiveID uuid.UUID `gorm:"type:uuid;not null;index" json:"objective_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	Measure     `gorm:"embedded"`
	Weight      float64   `gorm:"not null;default:0" json:"weight"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (QuarterlyKeyResult) TableName() string { return "quarterly_key_results" }

// Action is a work item on a kanban board. BoardID is the quarterly key
// result it belongs to, or the objective when no key result is set.
type Action struct {
	ID                   uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	QuarterlyKeyResultID *uuid.UUID   `gorm:"type:uuid;index" json:"quarterly_key_result_id,omitempty"`
	ObjectiveID          *uuid.UUID   `gorm:"type:uuid;index" json:"objective_id,omitempty"`
	BoardID              uuid.UUID    `gorm:"type:uuid;not null;index:idx_actions_column" json:"board_id"`
	Title                string       `gorm:"not null" json:"title"`
	Description          string       `json:"description,omitempty"`
	Status               ActionStatus `gorm:"type:text;not null;index:idx_actions_column" json:"status"`
	Priority             Priority     `gorm:"type:text;not null" json:"priority"`
	Deadline             *time.Time   `json:"deadline,omitempty"`
	OrderIndex           int          `gorm:"not null;default:0" json:"order_index"`
	CompletedAt          *time.Time   `json:"completed_at,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

func (Action) TableName() string { return "actions" }

// ResolveBoard points BoardID at the key result, falling back to the objective.
func (a *Action) ResolveBoard() {
	switch {
	case a.QuarterlyKeyResultID != nil:
		a.BoardID = *a.QuarterlyKeyResultID
	case a.ObjectiveID != nil:
		a.BoardID = *a.ObjectiveID
	}
}

// Column identifies one status column of one board.
func (a *Action) Column() Column { return Column{BoardID: a.BoardID, Status: a.Status} }

// ProgressSnapshot is an append-only ledger entry of a measured progress value.
type ProgressSnapshot struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_snapshots_entity" json:"entity_id"`
	EntityType EntityType `gorm:"type:text;not null" json:"entity_type"`
	Value      float64    `gorm:"not null" json:"value"`
	RecordedAt time.Time  `gorm:"not null;index:idx_snapshots_entity" json:"recorded_at"`
}

func (ProgressSnapshot) TableName() string { return "progress_snapshots" }

// Column is a (board, status) pair; orderIndex values are unique within it.
type Column struct {
	BoardID uuid.UUID    `json:"board_id"`
	Status  ActionStatus `json:"status"`
}

// Less orders columns deterministically so locks are always taken in the same order.
func (c Column) Less(o Column) bool {
	if c.BoardID != o.BoardID {
		return c.BoardID.String() < o.BoardID.String()
	}
	return c.Status < o.Status
}

func (c Column) String() string { return c.BoardID.String() + "/" + c.Status.StoreName() }

// BoardColumn holds the generation counter of a column. Every committed
// reorder of the column bumps the generation by one.
type BoardColumn struct {
	BoardID    uuid.UUID    `gorm:"type:uuid;primaryKey" json:"board_id"`
	Status     ActionStatus `gorm:"type:text;primaryKey" json:"status"`
	Generation int64        `gorm:"not null;default:0" json:"generation"`
}

func (BoardColumn) TableName() string { return "board_columns" }

// OrderAssignment moves one item to a new position within its column.
type OrderAssignment struct {
	ActionID   uuid.UUID `json:"action_id"`
	OrderIndex int       `json:"order_index"`
}
