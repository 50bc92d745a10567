package action

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

func TestTransitionStampsCompletedAt(t *testing.T) {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	a := &goal.Action{Status: goal.StatusInProgress}

	require.NoError(t, Transition(a, goal.StatusDone, now))
	require.NotNil(t, a.CompletedAt)
	assert.Equal(t, now, *a.CompletedAt)

	require.NoError(t, Transition(a, goal.StatusDone, now.Add(time.Hour)))
	assert.Equal(t, now, *a.CompletedAt, "staying in done keeps the first stamp")

	require.NoError(t, Transition(a, goal.StatusTodo, now))
	assert.Nil(t, a.CompletedAt)
	assert.Equal(t, goal.StatusTodo, a.Status)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	a := &goal.Action{Status: goal.StatusTodo}
	err := Transition(a, goal.ActionStatus(42), time.Now())
	assert.ErrorIs(t, err, goal.ErrInvalidInput)
	assert.Equal(t, goal.StatusTodo, a.Status)
}

type boardFixture struct {
	board uuid.UUID
	cols  Columns
	ids   map[string]uuid.UUID
}

// newBoard builds columns from names; the position in each list is the index.
func newBoard(layout map[goal.ActionStatus][]string) *boardFixture {
	f := &boardFixture{board: uuid.New(), cols: Columns{}, ids: map[string]uuid.UUID{}}
	for st, names := range layout {
		c := goal.Column{BoardID: f.board, Status: st}
		for i, n := range names {
			id := uuid.New()
			f.ids[n] = id
			f.cols[c] = append(f.cols[c], goal.Action{ID: id, BoardID: f.board, Status: st, OrderIndex: i, Title: n})
		}
	}
	return f
}

func (f *boardFixture) get(name string) goal.Action {
	for _, items := range f.cols {
		for _, a := range items {
			if a.Title == name {
				return a
			}
		}
	}
	panic("no action " + name)
}

func (f *boardFixture) assignments(plan []goal.OrderAssignment) map[string]int {
	out := map[string]int{}
	for _, p := range plan {
		for n, id := range f.ids {
			if id == p.ActionID {
				out[n] = p.OrderIndex
			}
		}
	}
	return out
}

func TestPlanMoveAcrossColumns(t *testing.T) {
	f := newBoard(map[goal.ActionStatus][]string{
		goal.StatusTodo: {"a", "b", "c"},
		goal.StatusDone: {"x", "y"},
	})

	index, plan := PlanMove(f.cols, f.get("b"), goal.StatusDone, 1)

	assert.Equal(t, 1, index)
	assert.Equal(t, map[string]int{"y": 2, "c": 1}, f.assignments(plan))

	moved := f.get("b")
	moved.Status = goal.StatusDone
	moved.OrderIndex = index
	assert.NoError(t, CheckPlan(f.cols, moved, goal.Column{BoardID: f.board, Status: goal.StatusTodo}, plan))
}

func TestPlanMoveWithinColumn(t *testing.T) {
	f := newBoard(map[goal.ActionStatus][]string{goal.StatusTodo: {"a", "b", "c", "d"}})

	index, plan := PlanMove(f.cols, f.get("d"), goal.StatusTodo, 0)
	assert.Equal(t, 0, index)
	assert.Equal(t, map[string]int{"a": 1, "b": 2, "c": 3}, f.assignments(plan))

	index, plan = PlanMove(f.cols, f.get("a"), goal.StatusTodo, 99)
	assert.Equal(t, 3, index, "position is clamped to the end")
	assert.Equal(t, map[string]int{"b": 0, "c": 1, "d": 2}, f.assignments(plan))
}

func TestCheckPlanDetectsStaleOrBrokenPlans(t *testing.T) {
	f := newBoard(map[goal.ActionStatus][]string{
		goal.StatusTodo: {"a", "b"},
		goal.StatusDone: {"x"},
	})
	todo := goal.Column{BoardID: f.board, Status: goal.StatusTodo}

	moved := f.get("a")
	moved.Status = goal.StatusDone
	moved.OrderIndex = 0

	err := CheckPlan(f.cols, moved, todo, nil)
	assert.ErrorIs(t, err, store.ErrConflict, "x already holds index 0 in done")

	err = CheckPlan(f.cols, moved, todo, []goal.OrderAssignment{{ActionID: f.ids["x"], OrderIndex: 1}})
	assert.NoError(t, err)

	err = CheckPlan(f.cols, moved, todo, []goal.OrderAssignment{{ActionID: uuid.New(), OrderIndex: 5}})
	assert.ErrorIs(t, err, store.ErrConflict)

	err = CheckPlan(f.cols, moved, todo, []goal.OrderAssignment{{ActionID: f.ids["x"], OrderIndex: -1}})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	ghost := moved
	ghost.ID = uuid.New()
	assert.ErrorIs(t, CheckPlan(f.cols, ghost, todo, nil), store.ErrConflict)
}
