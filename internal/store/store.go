// Package store is the record store behind the goal engine. Two
// implementations share the Store interface: GormStore talks to Postgres,
// SQLiteStore keeps everything in a local SQLite file. Open picks one from
// the settings at startup.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrConflict      = errors.New("board column changed since it was read")
	ErrAlreadyExists = errors.New("record already exists")
)

// Kind names a table for partial updates.
type Kind string

const (
	KindAmbition           Kind = "ambitions"
	KindKeyResult          Kind = "key_results"
	KindObjective          Kind = "quarterly_objectives"
	KindQuarterlyKeyResult Kind = "quarterly_key_results"
	KindAction             Kind = "actions"
)

// Status and order_index of actions are absent on purpose: they only change
// through CommitColumns.
var patchable = map[Kind]map[string]bool{
	KindAmbition: {
		"title": true, "description": true, "year": true, "category": true, "priority": true,
	},
	KindKeyResult: {
		"title": true, "description": true, "target_value": true, "current_value": true,
		"unit": true, "deadline": true,
	},
	KindObjective: {
		"title": true, "description": true, "quarter": true, "year": true, "ambition_id": true,
	},
	KindQuarterlyKeyResult: {
		"title": true, "description": true, "target_value": true, "current_value": true,
		"unit": true, "deadline": true, "weight": true,
	},
	KindAction: {
		"title": true, "description": true, "priority": true, "deadline": true,
	},
}

func checkPatch(kind Kind, fields map[string]any) error {
	allowed, ok := patchable[kind]
	if !ok {
		return fmt.Errorf("%w: cannot patch %s", goal.ErrInvalidInput, kind)
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty patch for %s", goal.ErrInvalidInput, kind)
	}
	for col := range fields {
		if !allowed[col] {
			return fmt.Errorf("%w: field %q of %s is not patchable", goal.ErrInvalidInput, col, kind)
		}
	}
	return nil
}

// ActionFilter narrows ListActions. UserID is always applied.
type ActionFilter struct {
	UserID  uuid.UUID
	BoardID *uuid.UUID
	Status  *goal.ActionStatus
}

// ColumnCommit is one atomic write to one or two board columns. Expected
// holds the generation of every touched column as it was read; if any of them
// moved on, the whole commit is rejected with ErrConflict.
type ColumnCommit struct {
	Expected map[goal.Column]int64
	// Insert is a new action placed in its column.
	Insert *goal.Action
	// Move is the replacement of an existing action whose status was MoveFrom.
	Move     *goal.Action
	MoveFrom goal.ActionStatus
	// Plan re-sequences siblings; it is applied after Move.
	Plan []goal.OrderAssignment
	At   time.Time
}

type Store interface {
	Migrate(ctx context.Context) error
	Close() error

	// Create* insert the record unless its ID exists already; in that case the
	// stored record is copied into the argument and created is false.
	CreateAmbition(ctx context.Context, a *goal.Ambition) (created bool, err error)
	GetAmbition(ctx context.Context, id uuid.UUID) (*goal.Ambition, error)
	ListAmbitions(ctx context.Context, userID uuid.UUID) ([]goal.Ambition, error)
	SaveAmbition(ctx context.Context, a *goal.Ambition) error
	// DeleteAmbition removes the ambition and its key results, and unlinks
	// quarterly objectives that pointed at it.
	DeleteAmbition(ctx context.Context, id uuid.UUID) error

	CreateKeyResult(ctx context.Context, kr *goal.KeyResult) (bool, error)
	GetKeyResult(ctx context.Context, id uuid.UUID) (*goal.KeyResult, error)
	ListKeyResults(ctx context.Context, ambitionID uuid.UUID) ([]goal.KeyResult, error)
	ListKeyResultsByUser(ctx context.Context, userID uuid.UUID) ([]goal.KeyResult, error)
	// SaveKeyResult and SaveQuarterlyKeyResult write the descriptive fields.
	// current_value only changes through Patch, which the progress update path
	// pairs with a snapshot.
	SaveKeyResult(ctx context.Context, kr *goal.KeyResult) error
	DeleteKeyResult(ctx context.Context, id uuid.UUID) error

	CreateObjective(ctx context.Context, o *goal.QuarterlyObjective) (bool, error)
	GetObjective(ctx context.Context, id uuid.UUID) (*goal.QuarterlyObjective, error)
	ListObjectives(ctx context.Context, userID uuid.UUID) ([]goal.QuarterlyObjective, error)
	SaveObjective(ctx context.Context, o *goal.QuarterlyObjective) error
	// DeleteObjective removes the objective and its key results. Their actions
	// are kept and become orphans.
	DeleteObjective(ctx context.Context, id uuid.UUID) error

	CreateQuarterlyKeyResult(ctx context.Context, kr *goal.QuarterlyKeyResult) (bool, error)
	GetQuarterlyKeyResult(ctx context.Context, id uuid.UUID) (*goal.QuarterlyKeyResult, error)
	ListQuarterlyKeyResults(ctx context.Context, objectiveID uuid.UUID) ([]goal.QuarterlyKeyResult, error)
	SaveQuarterlyKeyResult(ctx context.Context, kr *goal.QuarterlyKeyResult) error
	DeleteQuarterlyKeyResult(ctx context.Context, id uuid.UUID) error

	GetAction(ctx context.Context, id uuid.UUID) (*goal.Action, error)
	// ListActions orders by board, status and order_index.
	ListActions(ctx context.Context, f ActionFilter) ([]goal.Action, error)
	DeleteAction(ctx context.Context, id uuid.UUID) error
	ListOrphanedActions(ctx context.Context, userID uuid.UUID) ([]goal.Action, error)

	// ColumnGenerations returns the current generation of each column; a
	// column never written reports 0.
	ColumnGenerations(ctx context.Context, cols []goal.Column) (map[goal.Column]int64, error)
	CommitColumns(ctx context.Context, c ColumnCommit) error

	AppendSnapshot(ctx context.Context, s *goal.ProgressSnapshot) error
	ListSnapshots(ctx context.Context, entityType goal.EntityType, entityID uuid.UUID, since time.Time) ([]goal.ProgressSnapshot, error)

	// Patch updates the named columns of one record and bumps updated_at.
	Patch(ctx context.Context, kind Kind, id uuid.UUID, fields map[string]any) error
}

func validateCommit(c ColumnCommit) error {
	if len(c.Expected) == 0 {
		return fmt.Errorf("%w: commit touches no column", goal.ErrInvalidInput)
	}
	if c.Insert != nil {
		if _, ok := c.Expected[c.Insert.Column()]; !ok {
			return fmt.Errorf("%w: insert column %s not guarded", goal.ErrInvalidInput, c.Insert.Column())
		}
	}
	if c.Move != nil {
		if _, ok := c.Expected[c.Move.Column()]; !ok {
			return fmt.Errorf("%w: move target %s not guarded", goal.ErrInvalidInput, c.Move.Column())
		}
		from := goal.Column{BoardID: c.Move.BoardID, Status: c.MoveFrom}
		if _, ok := c.Expected[from]; !ok {
			return fmt.Errorf("%w: move source %s not guarded", goal.ErrInvalidInput, from)
		}
	}
	return nil
}

// sortedColumns returns the guarded columns in lock order.
func sortedColumns(expected map[goal.Column]int64) []goal.Column {
	cols := make([]goal.Column, 0, len(expected))
	for c := range expected {
		cols = append(cols, c)
	}
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j].Less(cols[j-1]); j-- {
			cols[j], cols[j-1] = cols[j-1], cols[j]
		}
	}
	return cols
}
