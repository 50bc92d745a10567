package ambition_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/chronos-goals/internal/ambition"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

func ptr[T any](v T) *T { return &v }

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "ambitions.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func createAmbition(t *testing.T, svc ambition.Service, user uuid.UUID) *ambition.AmbitionResponse {
	t.Helper()
	resp, created, err := svc.Create(context.Background(), user, ambition.CreateAmbitionDTO{
		Title: "Get healthier", Year: 2025, Category: ptr(goal.CategoryHealth),
	})
	require.NoError(t, err)
	require.True(t, created)
	return resp
}

func TestCreateAmbitionIsIdempotent(t *testing.T) {
	svc := ambition.NewService(newStore(t))
	user := uuid.New()
	id := uuid.New()
	dto := ambition.CreateAmbitionDTO{ID: &id, Title: "Learn piano", Year: 2025, Category: ptr(goal.CategoryLearning)}

	first, created, err := svc.Create(context.Background(), user, dto)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, goal.PriorityMedium, first.Priority)

	dto.Title = "Changed on retry"
	second, created, err := svc.Create(context.Background(), user, dto)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Learn piano", second.Title)

	list, err := svc.List(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, _, err = svc.Create(context.Background(), uuid.New(), dto)
	assert.ErrorIs(t, err, goal.ErrUnauthorized)
}

func TestCreateAmbitionValidates(t *testing.T) {
	svc := ambition.NewService(newStore(t))

	_, _, err := svc.Create(context.Background(), uuid.New(), ambition.CreateAmbitionDTO{Title: " ", Year: 2025, Category: ptr(goal.CategoryOther)})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	_, _, err = svc.Create(context.Background(), uuid.New(), ambition.CreateAmbitionDTO{Title: "Ok", Year: 12, Category: ptr(goal.CategoryOther)})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)
}

func TestCreateAmbitionRequiresCategory(t *testing.T) {
	s := newStore(t)
	svc := ambition.NewService(s)
	user := uuid.New()

	var dto ambition.CreateAmbitionDTO
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Travel more","year":2025}`), &dto))
	_, _, err := svc.Create(context.Background(), user, dto)
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	list, err := s.ListAmbitions(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAmbitionProgressFollowsKeyResults(t *testing.T) {
	ctx := context.Background()
	svc := ambition.NewService(newStore(t))
	user := uuid.New()
	a := createAmbition(t, svc, user)
	assert.Equal(t, 0, a.Progress)

	_, _, err := svc.CreateKeyResult(ctx, user, a.ID, ambition.CreateKeyResultDTO{
		Title: "Run 100 km", TargetValue: 100, CurrentValue: 250, Unit: "km",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, user, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	require.Len(t, got.KeyResults, 1)
	assert.Equal(t, 100, got.KeyResults[0].Progress)

	_, _, err = svc.CreateKeyResult(ctx, user, a.ID, ambition.CreateKeyResultDTO{Title: "Sleep", TargetValue: 0})
	require.NoError(t, err)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 50, list[0].Progress)
}

func TestKeyResultRejectsNegativeValues(t *testing.T) {
	svc := ambition.NewService(newStore(t))
	user := uuid.New()
	a := createAmbition(t, svc, user)

	_, _, err := svc.CreateKeyResult(context.Background(), user, a.ID, ambition.CreateKeyResultDTO{Title: "Bad", TargetValue: -1})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)
}

func TestUpdateAndDeleteCascade(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := ambition.NewService(st)
	user := uuid.New()
	a := createAmbition(t, svc, user)
	kr, _, err := svc.CreateKeyResult(ctx, user, a.ID, ambition.CreateKeyResultDTO{Title: "Swim", TargetValue: 10, Unit: "km"})
	require.NoError(t, err)

	title := "Get much healthier"
	prio := goal.PriorityHigh
	updated, err := svc.Update(ctx, user, a.ID, ambition.UpdateAmbitionDTO{Title: &title, Priority: &prio})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, goal.PriorityHigh, updated.Priority)

	target := 20.0
	krUpdated, err := svc.UpdateKeyResult(ctx, user, kr.ID, ambition.UpdateKeyResultDTO{TargetValue: &target})
	require.NoError(t, err)
	assert.Equal(t, 20.0, krUpdated.TargetValue)

	_, err = svc.Update(ctx, uuid.New(), a.ID, ambition.UpdateAmbitionDTO{Title: &title})
	assert.ErrorIs(t, err, goal.ErrUnauthorized)

	require.NoError(t, svc.Delete(ctx, user, a.ID))
	_, err = st.GetKeyResult(ctx, kr.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = svc.Get(ctx, user, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
