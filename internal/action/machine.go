// Package action runs the kanban lifecycle of actions: status transitions
// and the sibling re-ordering that has to land together with them.
package action

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

// Transition moves a to status to. Entering DONE stamps CompletedAt, leaving
// it clears CompletedAt. Every state may be left again.
func Transition(a *goal.Action, to goal.ActionStatus, now time.Time) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown status", goal.ErrInvalidInput)
	}
	switch {
	case to == goal.StatusDone && a.Status != goal.StatusDone:
		t := now
		a.CompletedAt = &t
	case to != goal.StatusDone:
		a.CompletedAt = nil
	}
	a.Status = to
	return nil
}

// Columns groups actions by column, each sorted by OrderIndex.
type Columns map[goal.Column][]goal.Action

func groupColumns(actions []goal.Action) Columns {
	cols := Columns{}
	for _, a := range actions {
		cols[a.Column()] = append(cols[a.Column()], a)
	}
	for c := range cols {
		sortColumn(cols[c])
	}
	return cols
}

func sortColumn(items []goal.Action) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].OrderIndex != items[j].OrderIndex {
			return items[i].OrderIndex < items[j].OrderIndex
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

// nextIndex is one past the highest index in the column.
func nextIndex(items []goal.Action) int {
	next := 0
	for _, a := range items {
		if a.OrderIndex >= next {
			next = a.OrderIndex + 1
		}
	}
	return next
}

// CheckPlan simulates moving moved (already carrying its new status and
// index) out of column from, then applying plan, over the columns as read.
// Any column left with a repeated index, or a plan row that is not in an
// affected column, means the caller planned against a stale board.
func CheckPlan(cols Columns, moved goal.Action, from goal.Column, plan []goal.OrderAssignment) error {
	to := moved.Column()
	pos := map[uuid.UUID]*goal.Action{}
	var sim []*goal.Action
	for _, c := range []goal.Column{from, to} {
		for _, a := range cols[c] {
			if _, dup := pos[a.ID]; dup {
				continue
			}
			a := a
			if a.ID == moved.ID {
				a = moved
			}
			pos[a.ID] = &a
			sim = append(sim, &a)
		}
	}
	if _, ok := pos[moved.ID]; !ok {
		return fmt.Errorf("%w: action %s is no longer in %s", store.ErrConflict, moved.ID, from)
	}

	seen := make(map[uuid.UUID]bool, len(plan))
	for _, p := range plan {
		if p.OrderIndex < 0 {
			return fmt.Errorf("%w: order_index must not be negative", goal.ErrInvalidInput)
		}
		if seen[p.ActionID] {
			return fmt.Errorf("%w: action %s appears twice in the plan", goal.ErrInvalidInput, p.ActionID)
		}
		seen[p.ActionID] = true
		a, ok := pos[p.ActionID]
		if !ok {
			return fmt.Errorf("%w: plan references action %s outside the affected columns", store.ErrConflict, p.ActionID)
		}
		a.OrderIndex = p.OrderIndex
	}

	used := map[goal.Column]map[int]uuid.UUID{}
	for _, a := range sim {
		c := a.Column()
		if used[c] == nil {
			used[c] = map[int]uuid.UUID{}
		}
		if other, taken := used[c][a.OrderIndex]; taken {
			return fmt.Errorf("%w: actions %s and %s would share order_index %d in %s",
				store.ErrConflict, other, a.ID, a.OrderIndex, c)
		}
		used[c][a.OrderIndex] = a.ID
	}
	return nil
}

// PlanMove places a at position (clamped) in the column of status to and
// renumbers both columns densely from 0. It returns the index a gets and the
// assignments for every sibling whose index changes.
func PlanMove(cols Columns, a goal.Action, to goal.ActionStatus, position int) (int, []goal.OrderAssignment) {
	from := a.Column()
	dest := goal.Column{BoardID: a.BoardID, Status: to}

	without := func(items []goal.Action) []goal.Action {
		out := make([]goal.Action, 0, len(items))
		for _, it := range items {
			if it.ID != a.ID {
				out = append(out, it)
			}
		}
		return out
	}

	target := without(cols[dest])
	if position < 0 {
		position = 0
	}
	if position > len(target) {
		position = len(target)
	}

	var plan []goal.OrderAssignment
	renumber := func(items []goal.Action, skip int) {
		idx := 0
		for i, it := range items {
			if i == skip {
				idx++
			}
			if it.OrderIndex != idx {
				plan = append(plan, goal.OrderAssignment{ActionID: it.ID, OrderIndex: idx})
			}
			idx++
		}
	}
	// Leave a hole at position for the moved item.
	renumber(target, position)
	if dest != from {
		renumber(without(cols[from]), -1)
	}
	return position, plan
}
