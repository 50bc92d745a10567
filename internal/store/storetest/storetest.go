// Package storetest holds the behaviour every store.Store implementation must
// share. Backend tests call Run with a constructor for a fresh, migrated store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	cases := map[string]func(t *testing.T, s store.Store){
		"CreateIsIdempotent":             testCreateIsIdempotent,
		"MissingRecordIsNotFound":        testMissingRecordIsNotFound,
		"DeleteAmbitionCascades":         testDeleteAmbitionCascades,
		"DeleteObjectiveOrphansActions":  testDeleteObjectiveOrphansActions,
		"CommitBumpsGenerations":         testCommitBumpsGenerations,
		"StaleGenerationConflicts":       testStaleGenerationConflicts,
		"MoveAndPlanApplyTogether":       testMoveAndPlanApplyTogether,
		"UnguardedPlanRowRollsBack":      testUnguardedPlanRowRollsBack,
		"PatchRejectsUnknownColumns":     testPatchRejectsUnknownColumns,
		"SnapshotsFilteredAndOrdered":    testSnapshotsFilteredAndOrdered,
		"SaveKeyResultPersistsMeasure":   testSaveKeyResultPersistsMeasure,
		"SaveKeepsCurrentValue":          testSaveKeepsCurrentValue,
		"ListActionsOrdersWithinColumns": testListActionsOrdersWithinColumns,
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t))
		})
	}
}

var user = uuid.MustParse("7d1b1f8e-5a4c-4c1b-9b56-0f1d9f1e2a01")

func seedAmbition(t *testing.T, s store.Store) *goal.Ambition {
	t.Helper()
	a := &goal.Ambition{
		ID: uuid.New(), UserID: user, Title: "Run a marathon", Year: 2025,
		Category: goal.CategoryHealth, Priority: goal.PriorityHigh,
	}
	created, err := s.CreateAmbition(context.Background(), a)
	require.NoError(t, err)
	require.True(t, created)
	return a
}

func seedObjective(t *testing.T, s store.Store, ambitionID *uuid.UUID) *goal.QuarterlyObjective {
	t.Helper()
	o := &goal.QuarterlyObjective{
		ID: uuid.New(), UserID: user, AmbitionID: ambitionID, Title: "Build base",
		Quarter: goal.Q1, Year: 2025,
	}
	_, err := s.CreateObjective(context.Background(), o)
	require.NoError(t, err)
	return o
}

func seedQKR(t *testing.T, s store.Store, objectiveID uuid.UUID) *goal.QuarterlyKeyResult {
	t.Helper()
	kr := &goal.QuarterlyKeyResult{
		ID: uuid.New(), UserID: user, ObjectiveID: objectiveID, Title: "Weekly km",
		Measure: goal.Measure{TargetValue: 100, Unit: "km"}, Weight: 50,
	}
	_, err := s.CreateQuarterlyKeyResult(context.Background(), kr)
	require.NoError(t, err)
	return kr
}

func newAction(board uuid.UUID, status goal.ActionStatus, order int) *goal.Action {
	b := board
	return &goal.Action{
		ID: uuid.New(), UserID: user, QuarterlyKeyResultID: &b, BoardID: board,
		Title: "Long run", Status: status, Priority: goal.PriorityMedium, OrderIndex: order,
	}
}

// insert places a onto its board through a guarded commit.
func insert(t *testing.T, s store.Store, a *goal.Action) {
	t.Helper()
	ctx := context.Background()
	gens, err := s.ColumnGenerations(ctx, []goal.Column{a.Column()})
	require.NoError(t, err)
	require.NoError(t, s.CommitColumns(ctx, store.ColumnCommit{Expected: gens, Insert: a}))
}

func testCreateIsIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seedAmbition(t, s)

	dup := &goal.Ambition{
		ID: a.ID, UserID: user, Title: "Something else", Year: 2030,
		Category: goal.CategoryOther, Priority: goal.PriorityLow,
	}
	created, err := s.CreateAmbition(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Run a marathon", dup.Title)
	assert.Equal(t, 2025, dup.Year)

	all, err := s.ListAmbitions(ctx, user)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testMissingRecordIsNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.GetAmbition(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetAction(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteKeyResult(ctx, uuid.New()), store.ErrNotFound)
}

func testDeleteAmbitionCascades(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seedAmbition(t, s)
	kr := &goal.KeyResult{
		ID: uuid.New(), UserID: user, AmbitionID: a.ID, Title: "42 km",
		Measure: goal.Measure{TargetValue: 42, Unit: "km"},
	}
	_, err := s.CreateKeyResult(ctx, kr)
	require.NoError(t, err)
	o := seedObjective(t, s, &a.ID)

	require.NoError(t, s.DeleteAmbition(ctx, a.ID))

	_, err = s.GetKeyResult(ctx, kr.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err := s.GetObjective(ctx, o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AmbitionID)
}

func testDeleteObjectiveOrphansActions(t *testing.T, s store.Store) {
	ctx := context.Background()
	o := seedObjective(t, s, nil)
	kr := seedQKR(t, s, o.ID)
	a := newAction(kr.ID, goal.StatusTodo, 0)
	insert(t, s, a)

	orphans, err := s.ListOrphanedActions(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	require.NoError(t, s.DeleteObjective(ctx, o.ID))

	_, err = s.GetQuarterlyKeyResult(ctx, kr.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	orphans, err = s.ListOrphanedActions(ctx, user)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, a.ID, orphans[0].ID)
}

func testCommitBumpsGenerations(t *testing.T, s store.Store) {
	ctx := context.Background()
	board := uuid.New()
	col := goal.Column{BoardID: board, Status: goal.StatusTodo}

	gens, err := s.ColumnGenerations(ctx, []goal.Column{col})
	require.NoError(t, err)
	assert.EqualValues(t, 0, gens[col])

	insert(t, s, newAction(board, goal.StatusTodo, 0))
	insert(t, s, newAction(board, goal.StatusTodo, 1))

	gens, err = s.ColumnGenerations(ctx, []goal.Column{col})
	require.NoError(t, err)
	assert.EqualValues(t, 2, gens[col])
}

func testStaleGenerationConflicts(t *testing.T, s store.Store) {
	ctx := context.Background()
	board := uuid.New()
	first := newAction(board, goal.StatusTodo, 0)
	insert(t, s, first)

	col := first.Column()
	stale := map[goal.Column]int64{col: 0}
	second := newAction(board, goal.StatusTodo, 1)
	err := s.CommitColumns(ctx, store.ColumnCommit{Expected: stale, Insert: second})
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = s.GetAction(ctx, second.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testMoveAndPlanApplyTogether(t *testing.T, s store.Store) {
	ctx := context.Background()
	board := uuid.New()
	a := newAction(board, goal.StatusTodo, 0)
	b := newAction(board, goal.StatusTodo, 1)
	c := newAction(board, goal.StatusDone, 0)
	for _, x := range []*goal.Action{a, b, c} {
		insert(t, s, x)
	}

	todo := goal.Column{BoardID: board, Status: goal.StatusTodo}
	done := goal.Column{BoardID: board, Status: goal.StatusDone}
	gens, err := s.ColumnGenerations(ctx, []goal.Column{todo, done})
	require.NoError(t, err)

	now := time.Now().UTC()
	moved := *a
	moved.Status = goal.StatusDone
	moved.OrderIndex = 0
	moved.CompletedAt = &now
	err = s.CommitColumns(ctx, store.ColumnCommit{
		Expected: gens,
		Move:     &moved,
		MoveFrom: goal.StatusTodo,
		Plan: []goal.OrderAssignment{
			{ActionID: b.ID, OrderIndex: 0},
			{ActionID: c.ID, OrderIndex: 1},
		},
	})
	require.NoError(t, err)

	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.WithinDuration(t, now, *got.CompletedAt, time.Millisecond)

	doneStatus := goal.StatusDone
	inDone, err := s.ListActions(ctx, store.ActionFilter{UserID: user, BoardID: &board, Status: &doneStatus})
	require.NoError(t, err)
	require.Len(t, inDone, 2)
	assert.Equal(t, a.ID, inDone[0].ID)
	assert.Equal(t, c.ID, inDone[1].ID)

	// Replaying the same commit is stale now.
	err = s.CommitColumns(ctx, store.ColumnCommit{Expected: gens, Move: &moved, MoveFrom: goal.StatusTodo})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func testUnguardedPlanRowRollsBack(t *testing.T, s store.Store) {
	ctx := context.Background()
	board := uuid.New()
	a := newAction(board, goal.StatusTodo, 0)
	other := newAction(board, goal.StatusBlocked, 0)
	insert(t, s, a)
	insert(t, s, other)

	col := a.Column()
	gens, err := s.ColumnGenerations(ctx, []goal.Column{col})
	require.NoError(t, err)

	err = s.CommitColumns(ctx, store.ColumnCommit{
		Expected: gens,
		Plan: []goal.OrderAssignment{
			{ActionID: a.ID, OrderIndex: 5},
			{ActionID: other.ID, OrderIndex: 3},
		},
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	after, err := s.ColumnGenerations(ctx, []goal.Column{col})
	require.NoError(t, err)
	assert.Equal(t, gens[col], after[col])
	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.OrderIndex)
}

func testPatchRejectsUnknownColumns(t *testing.T, s store.Store) {
	ctx := context.Background()
	board := uuid.New()
	a := newAction(board, goal.StatusTodo, 0)
	insert(t, s, a)

	err := s.Patch(ctx, store.KindAction, a.ID, map[string]any{"status": goal.StatusDone})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	require.NoError(t, s.Patch(ctx, store.KindAction, a.ID, map[string]any{
		"title":    "Tempo run",
		"priority": goal.PriorityCritical,
	}))
	got, err := s.GetAction(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tempo run", got.Title)
	assert.Equal(t, goal.PriorityCritical, got.Priority)
	assert.Equal(t, goal.StatusTodo, got.Status)

	err = s.Patch(ctx, store.KindAction, uuid.New(), map[string]any{"title": "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testSnapshotsFilteredAndOrdered(t *testing.T, s store.Store) {
	ctx := context.Background()
	entity := uuid.New()
	base := time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)
	for i, v := range []float64{30, 10, 20} {
		require.NoError(t, s.AppendSnapshot(ctx, &goal.ProgressSnapshot{
			UserID: user, EntityID: entity, EntityType: goal.EntityKeyResult,
			Value: v, RecordedAt: base.Add(time.Duration(2-i) * 24 * time.Hour),
		}))
	}
	require.NoError(t, s.AppendSnapshot(ctx, &goal.ProgressSnapshot{
		UserID: user, EntityID: entity, EntityType: goal.EntityAmbition,
		Value: 99, RecordedAt: base,
	}))

	got, err := s.ListSnapshots(ctx, goal.EntityKeyResult, entity, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].Value)
	assert.Equal(t, 30.0, got[1].Value)
}

func testSaveKeyResultPersistsMeasure(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seedAmbition(t, s)
	kr := &goal.KeyResult{
		ID: uuid.New(), UserID: user, AmbitionID: a.ID, Title: "Save",
		Measure: goal.Measure{TargetValue: 1000, Unit: "BRL"},
	}
	_, err := s.CreateKeyResult(ctx, kr)
	require.NoError(t, err)

	deadline := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	kr.CurrentValue = 0
	kr.Deadline = &deadline
	kr.Title = "Save more"
	require.NoError(t, s.SaveKeyResult(ctx, kr))

	got, err := s.GetKeyResult(ctx, kr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Save more", got.Title)
	assert.Equal(t, 0.0, got.CurrentValue)
	require.NotNil(t, got.Deadline)
	assert.True(t, deadline.Equal(*got.Deadline))
}

func testSaveKeepsCurrentValue(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := seedAmbition(t, s)
	kr := &goal.KeyResult{
		ID: uuid.New(), UserID: user, AmbitionID: a.ID, Title: "Read books",
		Measure: goal.Measure{TargetValue: 12, CurrentValue: 3, Unit: "books"},
	}
	_, err := s.CreateKeyResult(ctx, kr)
	require.NoError(t, err)

	// A value update lands between the read and the descriptive save.
	stale, err := s.GetKeyResult(ctx, kr.ID)
	require.NoError(t, err)
	require.NoError(t, s.Patch(ctx, store.KindKeyResult, kr.ID, map[string]any{"current_value": 7.0}))
	stale.Title = "Read more books"
	require.NoError(t, s.SaveKeyResult(ctx, stale))

	got, err := s.GetKeyResult(ctx, kr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Read more books", got.Title)
	assert.Equal(t, 7.0, got.CurrentValue)

	o := seedObjective(t, s, nil)
	qkr := seedQKR(t, s, o.ID)
	staleQ, err := s.GetQuarterlyKeyResult(ctx, qkr.ID)
	require.NoError(t, err)
	require.NoError(t, s.Patch(ctx, store.KindQuarterlyKeyResult, qkr.ID, map[string]any{"current_value": 40.0}))
	staleQ.Weight = 80
	require.NoError(t, s.SaveQuarterlyKeyResult(ctx, staleQ))

	gotQ, err := s.GetQuarterlyKeyResult(ctx, qkr.ID)
	require.NoError(t, err)
	assert.Equal(t, 80.0, gotQ.Weight)
	assert.Equal(t, 40.0, gotQ.CurrentValue)
}

func testListActionsOrdersWithinColumns(t *testing.T, s store.Store) {
	ctx := context.Background()
	board := uuid.New()
	third := newAction(board, goal.StatusInProgress, 2)
	first := newAction(board, goal.StatusInProgress, 0)
	second := newAction(board, goal.StatusInProgress, 1)
	for _, a := range []*goal.Action{third, first, second} {
		insert(t, s, a)
	}

	got, err := s.ListActions(ctx, store.ActionFilter{UserID: user, BoardID: &board})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID, third.ID},
		[]uuid.UUID{got[0].ID, got[1].ID, got[2].ID})

	others, err := s.ListActions(ctx, store.ActionFilter{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, others)
}
