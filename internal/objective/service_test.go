package objective_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/objective"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

func setup(t *testing.T) (store.Store, objective.Service) {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "objectives.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s, objective.NewService(s)
}

func weight(w float64) *float64 { return &w }

func ptr[T any](v T) *T { return &v }

func TestCreateObjectiveRequiresQuarter(t *testing.T) {
	s, svc := setup(t)
	user := uuid.New()

	var dto objective.CreateObjectiveDTO
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Open the second store","year":2025}`), &dto))
	_, _, err := svc.Create(context.Background(), user, dto)
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	list, err := s.ListObjectives(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestWeightedObjectiveProgress(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)
	user := uuid.New()

	o, created, err := svc.Create(ctx, user, objective.CreateObjectiveDTO{Title: "Grow revenue", Quarter: ptr(goal.Q3), Year: 2025})
	require.NoError(t, err)
	require.True(t, created)

	_, _, err = svc.CreateKeyResult(ctx, user, o.ID, objective.CreateQuarterlyKeyResultDTO{
		Title: "Close deals", TargetValue: 10, CurrentValue: 10, Unit: "deals", Weight: weight(75),
	})
	require.NoError(t, err)
	_, _, err = svc.CreateKeyResult(ctx, user, o.ID, objective.CreateQuarterlyKeyResultDTO{
		Title: "Publish posts", TargetValue: 4, CurrentValue: 0, Unit: "posts", Weight: weight(25),
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, user, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, got.Progress)
	assert.Len(t, got.KeyResults, 2)

	_, _, err = svc.CreateKeyResult(ctx, user, o.ID, objective.CreateQuarterlyKeyResultDTO{Title: "Heavy", Weight: weight(150)})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)
}

func TestObjectiveAmbitionLink(t *testing.T) {
	ctx := context.Background()
	st, svc := setup(t)
	user := uuid.New()
	amb := &goal.Ambition{ID: uuid.New(), UserID: uuid.New(), Title: "Not mine", Year: 2025}
	_, err := st.CreateAmbition(ctx, amb)
	require.NoError(t, err)

	_, _, err = svc.Create(ctx, user, objective.CreateObjectiveDTO{AmbitionID: &amb.ID, Title: "Steal", Quarter: ptr(goal.Q1), Year: 2025})
	assert.ErrorIs(t, err, goal.ErrUnauthorized)

	missing := uuid.New()
	_, _, err = svc.Create(ctx, user, objective.CreateObjectiveDTO{AmbitionID: &missing, Title: "Dangling", Quarter: ptr(goal.Q1), Year: 2025})
	assert.ErrorIs(t, err, store.ErrNotFound)

	o, _, err := svc.Create(ctx, user, objective.CreateObjectiveDTO{Title: "Free standing", Quarter: ptr(goal.Q1), Year: 2025})
	require.NoError(t, err)
	q := goal.Q4
	updated, err := svc.Update(ctx, user, o.ID, objective.UpdateObjectiveDTO{Quarter: &q})
	require.NoError(t, err)
	assert.Equal(t, goal.Q4, updated.Quarter)
	assert.Nil(t, updated.AmbitionID)
}

func TestDeleteObjectiveCascadesToKeyResults(t *testing.T) {
	ctx := context.Background()
	st, svc := setup(t)
	user := uuid.New()

	o, _, err := svc.Create(ctx, user, objective.CreateObjectiveDTO{Title: "Launch", Quarter: ptr(goal.Q2), Year: 2025})
	require.NoError(t, err)
	kr, _, err := svc.CreateKeyResult(ctx, user, o.ID, objective.CreateQuarterlyKeyResultDTO{Title: "Beta users", TargetValue: 50})
	require.NoError(t, err)
	assert.Equal(t, 100.0, kr.Weight)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), o.ID), goal.ErrUnauthorized)
	require.NoError(t, svc.Delete(ctx, user, o.ID))

	_, err = st.GetQuarterlyKeyResult(ctx, kr.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateQuarterlyKeyResult(t *testing.T) {
	ctx := context.Background()
	_, svc := setup(t)
	user := uuid.New()
	o, _, err := svc.Create(ctx, user, objective.CreateObjectiveDTO{Title: "Hire", Quarter: ptr(goal.Q2), Year: 2025})
	require.NoError(t, err)
	kr, _, err := svc.CreateKeyResult(ctx, user, o.ID, objective.CreateQuarterlyKeyResultDTO{Title: "Engineers", TargetValue: 4, CurrentValue: 1})
	require.NoError(t, err)
	assert.Equal(t, 25, kr.Progress)

	target := 2.0
	updated, err := svc.UpdateKeyResult(ctx, user, kr.ID, objective.UpdateQuarterlyKeyResultDTO{TargetValue: &target, Weight: weight(40)})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
	assert.Equal(t, 40.0, updated.Weight)

	krs, err := svc.ListKeyResults(ctx, user, o.ID)
	require.NoError(t, err)
	require.Len(t, krs, 1)
	assert.Equal(t, 40.0, krs[0].Weight)

	require.NoError(t, svc.DeleteKeyResult(ctx, user, kr.ID))
	krs, err = svc.ListKeyResults(ctx, user, o.ID)
	require.NoError(t, err)
	assert.Empty(t, krs)
}
