package action

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/lock"
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
	"github.com/saulo-duarte/chronos-goals/internal/store"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type fixture struct {
	store store.Store
	svc   *service
	user  uuid.UUID
	obj   *goal.QuarterlyObjective
	qkr   *goal.QuarterlyKeyResult
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "actions.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { st.Close() })

	f := &fixture{store: st, user: uuid.New()}
	f.svc = NewService(st, lock.NewLocal(), metrics.MustNewMetrics(prometheus.NewRegistry()), 8).(*service)
	f.svc.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	f.obj = &goal.QuarterlyObjective{ID: uuid.New(), UserID: f.user, Title: "Ship v2", Quarter: goal.Q2, Year: 2025}
	_, err = st.CreateObjective(ctx, f.obj)
	require.NoError(t, err)
	f.qkr = &goal.QuarterlyKeyResult{ID: uuid.New(), UserID: f.user, ObjectiveID: f.obj.ID, Title: "Close 20 issues", Weight: 50}
	_, err = st.CreateQuarterlyKeyResult(ctx, f.qkr)
	require.NoError(t, err)
	return f
}

func (f *fixture) create(t *testing.T, title string) *goal.Action {
	t.Helper()
	a, created, err := f.svc.Create(context.Background(), f.user, CreateActionDTO{
		QuarterlyKeyResultID: &f.qkr.ID,
		Title:                title,
	})
	require.NoError(t, err)
	require.True(t, created)
	return a
}

func (f *fixture) column(t *testing.T, st goal.ActionStatus) []goal.Action {
	t.Helper()
	board, err := f.svc.Board(context.Background(), f.user, f.qkr.ID)
	require.NoError(t, err)
	for _, c := range board.Columns {
		if c.Status == st {
			return c.Actions
		}
	}
	return nil
}

func assertUniqueIndexes(t *testing.T, items []goal.Action) {
	t.Helper()
	seen := map[int]uuid.UUID{}
	for _, a := range items {
		other, dup := seen[a.OrderIndex]
		assert.False(t, dup, "%s and %s share order_index %d", other, a.ID, a.OrderIndex)
		seen[a.OrderIndex] = a.ID
	}
}

func TestCreateAppendsToTodoAndIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first := f.create(t, "Triage backlog")
	second := f.create(t, "Fix login bug")
	assert.Equal(t, 0, first.OrderIndex)
	assert.Equal(t, 1, second.OrderIndex)
	assert.Equal(t, goal.StatusTodo, second.Status)
	assert.Equal(t, f.qkr.ID, second.BoardID)
	require.NotNil(t, second.ObjectiveID)
	assert.Equal(t, f.obj.ID, *second.ObjectiveID)

	again, created, err := f.svc.Create(ctx, f.user, CreateActionDTO{
		ID:                   &first.ID,
		QuarterlyKeyResultID: &f.qkr.ID,
		Title:                "Triage backlog",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, f.column(t, goal.StatusTodo), 2)
}

func TestCreateRejectsForeignParent(t *testing.T) {
	f := setup(t)

	_, _, err := f.svc.Create(context.Background(), uuid.New(), CreateActionDTO{QuarterlyKeyResultID: &f.qkr.ID, Title: "Sneaky"})
	assert.ErrorIs(t, err, goal.ErrUnauthorized)

	_, _, err = f.svc.Create(context.Background(), f.user, CreateActionDTO{Title: "No parent"})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)
}

func to(s goal.ActionStatus) *goal.ActionStatus { return &s }

func TestMoveToDoneAndBack(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.create(t, "Write release notes")

	done, err := f.svc.Move(ctx, f.user, a.ID, MoveActionDTO{Status: to(goal.StatusDone), OrderIndex: 0})
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	stored, err := f.svc.Get(ctx, f.user, a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, goal.StatusDone, stored.Status)

	reopened, err := f.svc.Move(ctx, f.user, a.ID, MoveActionDTO{Status: to(goal.StatusTodo), OrderIndex: 0})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	stored, err = f.svc.Get(ctx, f.user, a.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompletedAt)
}

func TestMissingStatusIsRejectedWithoutEffect(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.create(t, "Publish changelog")
	_, err := f.svc.Move(ctx, f.user, a.ID, MoveActionDTO{Status: to(goal.StatusDone), OrderIndex: 0})
	require.NoError(t, err)

	var move MoveActionDTO
	require.NoError(t, json.Unmarshal([]byte(`{"order_index":0}`), &move))
	_, err = f.svc.Move(ctx, f.user, a.ID, move)
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	var repo RepositionActionDTO
	require.NoError(t, json.Unmarshal([]byte(`{"position":0}`), &repo))
	_, err = f.svc.Reposition(ctx, f.user, a.ID, repo)
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	stored, err := f.svc.Get(ctx, f.user, a.ID)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusDone, stored.Status)
	assert.NotNil(t, stored.CompletedAt)
}

func TestMoveRejectsUnknownStatusWithoutEffect(t *testing.T) {
	f := setup(t)
	a := f.create(t, "Plan sprint")

	_, err := f.svc.Move(context.Background(), f.user, a.ID, MoveActionDTO{Status: to(goal.ActionStatus(99))})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	stored, err := f.svc.Get(context.Background(), f.user, a.ID)
	require.NoError(t, err)
	assert.Equal(t, goal.StatusTodo, stored.Status)
}

func TestSequentialPlansForSameSlotConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.create(t, "Item A")
	b := f.create(t, "Item B")

	board, err := f.svc.Board(ctx, f.user, f.qkr.ID)
	require.NoError(t, err)
	gens := map[string]int64{}
	for _, c := range board.Columns {
		gens[c.Status.String()] = c.Generation
	}

	// Both plans were computed from the same read: each puts its item at
	// index 0 of the empty done column.
	_, err = f.svc.Move(ctx, f.user, a.ID, MoveActionDTO{
		Status: to(goal.StatusDone), OrderIndex: 0,
		Plan:        []goal.OrderAssignment{{ActionID: b.ID, OrderIndex: 0}},
		Generations: gens,
	})
	require.NoError(t, err)

	_, err = f.svc.Move(ctx, f.user, b.ID, MoveActionDTO{
		Status: to(goal.StatusDone), OrderIndex: 0,
		Generations: gens,
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	// Without generations the duplicate index is still caught.
	_, err = f.svc.Move(ctx, f.user, b.ID, MoveActionDTO{Status: to(goal.StatusDone), OrderIndex: 0})
	assert.ErrorIs(t, err, store.ErrConflict)

	// A fresh server-side plan resolves it.
	moved, err := f.svc.Reposition(ctx, f.user, b.ID, RepositionActionDTO{Status: to(goal.StatusDone), Position: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, moved.OrderIndex)

	done := f.column(t, goal.StatusDone)
	require.Len(t, done, 2)
	assertUniqueIndexes(t, done)
	assert.Equal(t, b.ID, done[0].ID)
	assert.Equal(t, a.ID, done[1].ID)
	assert.Empty(t, f.column(t, goal.StatusTodo))
}

func TestConcurrentRepositionKeepsIndexesUnique(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 8; i++ {
		ids = append(ids, f.create(t, "Task").ID)
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			status := goal.StatusInProgress
			if i%2 == 0 {
				status = goal.StatusDone
			}
			_, err := f.svc.Reposition(ctx, f.user, id, RepositionActionDTO{Status: to(status), Position: 0})
			assert.NoError(t, err)
		}(i, id)
	}
	wg.Wait()

	for _, st := range []goal.ActionStatus{goal.StatusDone, goal.StatusInProgress} {
		items := f.column(t, st)
		assert.Len(t, items, 4)
		assertUniqueIndexes(t, items)
	}
	assert.Empty(t, f.column(t, goal.StatusTodo))
}

type flakyStore struct {
	store.Store
	mu        sync.Mutex
	conflicts int
}

func (s *flakyStore) CommitColumns(ctx context.Context, c store.ColumnCommit) error {
	s.mu.Lock()
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return store.ErrConflict
	}
	s.mu.Unlock()
	return s.Store.CommitColumns(ctx, c)
}

func TestRepositionRetriesConflicts(t *testing.T) {
	f := setup(t)
	a := f.create(t, "Retry me")

	flaky := &flakyStore{Store: f.store, conflicts: 2}
	f.svc.store = flaky
	moved, err := f.svc.Reposition(context.Background(), f.user, a.ID, RepositionActionDTO{Status: to(goal.StatusBlocked)})
	require.NoError(t, err)
	assert.Equal(t, goal.StatusBlocked, moved.Status)

	flaky.conflicts = 100
	f.svc.maxRetries = 2
	_, err = f.svc.Reposition(context.Background(), f.user, a.ID, RepositionActionDTO{Status: to(goal.StatusTodo)})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestUpdateDeleteAndOwnership(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.create(t, "Draft")

	title := "Draft the design doc"
	deadline := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updated, err := f.svc.Update(ctx, f.user, a.ID, UpdateActionDTO{
		Title:    &title,
		Deadline: &util.LocalDateTime{Time: deadline},
	})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	require.NotNil(t, updated.Deadline)
	assert.True(t, deadline.Equal(*updated.Deadline))

	updated, err = f.svc.Update(ctx, f.user, a.ID, UpdateActionDTO{ClearDeadline: true})
	require.NoError(t, err)
	assert.Nil(t, updated.Deadline)

	empty := " "
	_, err = f.svc.Update(ctx, f.user, a.ID, UpdateActionDTO{Title: &empty})
	assert.ErrorIs(t, err, goal.ErrInvalidInput)

	_, err = f.svc.Get(ctx, uuid.New(), a.ID)
	assert.ErrorIs(t, err, goal.ErrUnauthorized)

	require.NoError(t, f.svc.Delete(ctx, f.user, a.ID))
	_, err = f.svc.Get(ctx, f.user, a.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrphansAfterObjectiveDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := f.create(t, "Left behind")

	resp, err := f.svc.Orphans(ctx, f.user)
	require.NoError(t, err)
	assert.Zero(t, resp.Count)

	require.NoError(t, f.store.DeleteObjective(ctx, f.obj.ID))

	resp, err = f.svc.Orphans(ctx, f.user)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, a.ID, resp.Actions[0].ID)

	board, err := f.svc.Board(ctx, f.user, f.qkr.ID)
	require.NoError(t, err)
	assert.Len(t, board.Columns, len(goal.AllStatuses))
}
