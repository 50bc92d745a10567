package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/lock"
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

const (
	opCreate     = "create"
	opMove       = "move"
	opReposition = "reposition"
)

type ListFilter struct {
	BoardID *uuid.UUID
	Status  *goal.ActionStatus
}

type Service interface {
	// Create places the action at the end of the TODO column. created is
	// false when an action with the same ID already existed.
	Create(ctx context.Context, userID uuid.UUID, dto CreateActionDTO) (a *goal.Action, created bool, err error)
	Get(ctx context.Context, userID, id uuid.UUID) (*goal.Action, error)
	List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]goal.Action, error)
	Update(ctx context.Context, userID, id uuid.UUID, dto UpdateActionDTO) (*goal.Action, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// Move applies a client plan; a stale plan fails with store.ErrConflict.
	Move(ctx context.Context, userID, id uuid.UUID, dto MoveActionDTO) (*goal.Action, error)
	// Reposition computes the plan itself and retries on conflict.
	Reposition(ctx context.Context, userID, id uuid.UUID, dto RepositionActionDTO) (*goal.Action, error)
	Board(ctx context.Context, userID, boardID uuid.UUID) (*BoardResponse, error)
	Orphans(ctx context.Context, userID uuid.UUID) (*OrphansResponse, error)
}

type service struct {
	store      store.Store
	locker     lock.Locker
	metrics    *metrics.Metrics
	maxRetries uint64
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

func NewService(st store.Store, locker lock.Locker, m *metrics.Metrics, maxRetries uint64) Service {
	return &service{
		store:      st,
		locker:     locker,
		metrics:    m,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 20 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 3 * time.Second
			return b
		},
		now: time.Now,
	}
}

func outcome(err error) string {
	switch {
	case err == nil, errors.Is(err, store.ErrAlreadyExists):
		return metrics.OutcomeOK
	case errors.Is(err, store.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, goal.ErrInvalidInput), errors.Is(err, goal.ErrUnauthorized), errors.Is(err, store.ErrNotFound):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}

// retry reruns fn from a fresh read while it reports a column conflict.
// Any other error stops at once.
func (s *service) retry(ctx context.Context, op string, fn func() error) error {
	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.maxRetries), ctx)
	err := backoff.RetryNotify(func() error {
		err := fn()
		if err != nil && !errors.Is(err, store.ErrConflict) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		s.metrics.MoveRetry(op)
		config.WithContext(ctx).WithError(err).WithField("wait", wait).Debugf("Retrying %s", op)
	})
	return err
}

func (s *service) load(ctx context.Context, userID, id uuid.UUID) (*goal.Action, error) {
	a, err := s.store.GetAction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load action: %w", err)
	}
	if err := goal.CheckOwner(a.UserID, userID); err != nil {
		return nil, err
	}
	return a, nil
}

// columns reads the items and generation of the given columns.
func (s *service) columns(ctx context.Context, userID uuid.UUID, cols ...goal.Column) (Columns, map[goal.Column]int64, error) {
	gens, err := s.store.ColumnGenerations(ctx, cols)
	if err != nil {
		return nil, nil, fmt.Errorf("read generations: %w", err)
	}
	out := Columns{}
	for _, c := range cols {
		if _, done := out[c]; done {
			continue
		}
		board, status := c.BoardID, c.Status
		items, err := s.store.ListActions(ctx, store.ActionFilter{UserID: userID, BoardID: &board, Status: &status})
		if err != nil {
			return nil, nil, fmt.Errorf("list column %s: %w", c, err)
		}
		sortColumn(items)
		out[c] = items
	}
	return out, gens, nil
}

func (s *service) checkParent(ctx context.Context, userID uuid.UUID, a *goal.Action) error {
	if a.QuarterlyKeyResultID != nil {
		kr, err := s.store.GetQuarterlyKeyResult(ctx, *a.QuarterlyKeyResultID)
		if err != nil {
			return fmt.Errorf("load quarterly key result: %w", err)
		}
		if err := goal.CheckOwner(kr.UserID, userID); err != nil {
			return err
		}
		if a.ObjectiveID == nil {
			a.ObjectiveID = &kr.ObjectiveID
		}
	}
	if a.ObjectiveID != nil {
		o, err := s.store.GetObjective(ctx, *a.ObjectiveID)
		if err != nil {
			return fmt.Errorf("load objective: %w", err)
		}
		return goal.CheckOwner(o.UserID, userID)
	}
	return nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, dto CreateActionDTO) (*goal.Action, bool, error) {
	log := config.WithContext(ctx)
	a := dto.toAction(userID)

	if existing, err := s.store.GetAction(ctx, a.ID); err == nil {
		if err := goal.CheckOwner(existing.UserID, userID); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("look up action: %w", err)
	}

	if err := a.Validate(); err != nil {
		return nil, false, err
	}
	if err := s.checkParent(ctx, userID, a); err != nil {
		return nil, false, err
	}

	col := a.Column()
	err := s.retry(ctx, opCreate, func() error {
		unlock, err := s.locker.Lock(ctx, col)
		if err != nil {
			return fmt.Errorf("lock %s: %w", col, err)
		}
		defer unlock()

		cols, gens, err := s.columns(ctx, userID, col)
		if err != nil {
			return err
		}
		a.OrderIndex = nextIndex(cols[col])
		return s.store.CommitColumns(ctx, store.ColumnCommit{Expected: gens, Insert: a, At: s.now().UTC()})
	})
	s.metrics.Move(opCreate, outcome(err))

	if errors.Is(err, store.ErrAlreadyExists) {
		existing, err := s.load(ctx, userID, a.ID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		log.WithError(err).Error("Failed to create action")
		return nil, false, err
	}

	log.WithFields(logrus.Fields{"action_id": a.ID, "board_id": a.BoardID}).Info("Action created")
	return a, true, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*goal.Action, error) {
	return s.load(ctx, userID, id)
}

func (s *service) List(ctx context.Context, userID uuid.UUID, f ListFilter) ([]goal.Action, error) {
	actions, err := s.store.ListActions(ctx, store.ActionFilter{UserID: userID, BoardID: f.BoardID, Status: f.Status})
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return actions, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, dto UpdateActionDTO) (*goal.Action, error) {
	a, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	fields := dto.fields()
	if title, ok := fields["title"].(string); ok {
		a.Title = title
	}
	if dto.Priority != nil {
		a.Priority = *dto.Priority
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Patch(ctx, store.KindAction, id, fields); err != nil {
		return nil, fmt.Errorf("update action: %w", err)
	}
	config.WithContext(ctx).WithField("action_id", id).Info("Action updated")
	return s.load(ctx, userID, id)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteAction(ctx, id); err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	config.WithContext(ctx).WithField("action_id", id).Info("Action deleted")
	return nil
}

// moveLocked reads the current action and both columns under the column
// locks, lets plan build the commit, and writes it in one transaction.
func (s *service) moveLocked(ctx context.Context, userID uuid.UUID, seen *goal.Action, to goal.ActionStatus,
	plan func(a *goal.Action, cols Columns, gens map[goal.Column]int64) (*goal.Action, []goal.OrderAssignment, map[goal.Column]int64, error),
) (*goal.Action, error) {
	from := seen.Column()
	dest := goal.Column{BoardID: seen.BoardID, Status: to}

	unlock, err := s.locker.Lock(ctx, from, dest)
	if err != nil {
		return nil, fmt.Errorf("lock columns: %w", err)
	}
	defer unlock()

	current, err := s.load(ctx, userID, seen.ID)
	if err != nil {
		return nil, err
	}
	if current.Column() != from {
		return nil, fmt.Errorf("%w: action %s left %s", store.ErrConflict, seen.ID, from)
	}

	cols, gens, err := s.columns(ctx, userID, from, dest)
	if err != nil {
		return nil, err
	}
	moved, assignments, expected, err := plan(current, cols, gens)
	if err != nil {
		return nil, err
	}
	err = s.store.CommitColumns(ctx, store.ColumnCommit{
		Expected: expected,
		Move:     moved,
		MoveFrom: current.Status,
		Plan:     assignments,
		At:       s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *service) Move(ctx context.Context, userID, id uuid.UUID, dto MoveActionDTO) (*goal.Action, error) {
	log := config.WithContext(ctx).WithField("action_id", id)

	moved, err := s.move(ctx, userID, id, dto)
	s.metrics.Move(opMove, outcome(err))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.WithError(err).Warn("Move rejected, board changed")
		}
		return nil, err
	}
	log.WithFields(logrus.Fields{"status": moved.Status.String(), "order_index": moved.OrderIndex}).Info("Action moved")
	return moved, nil
}

func (s *service) move(ctx context.Context, userID, id uuid.UUID, dto MoveActionDTO) (*goal.Action, error) {
	to, err := targetStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	if dto.OrderIndex < 0 {
		return nil, fmt.Errorf("%w: order_index must not be negative", goal.ErrInvalidInput)
	}
	seen, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	clientGens, err := dto.expected(seen.BoardID)
	if err != nil {
		return nil, err
	}

	return s.moveLocked(ctx, userID, seen, to, func(a *goal.Action, cols Columns, gens map[goal.Column]int64) (*goal.Action, []goal.OrderAssignment, map[goal.Column]int64, error) {
		for c, want := range clientGens {
			if got, ok := gens[c]; ok && got != want {
				return nil, nil, nil, fmt.Errorf("%w: %s is at generation %d, plan was made at %d", store.ErrConflict, c, got, want)
			}
		}
		moved := *a
		if err := Transition(&moved, to, s.now().UTC()); err != nil {
			return nil, nil, nil, err
		}
		moved.OrderIndex = dto.OrderIndex
		if err := CheckPlan(cols, moved, a.Column(), dto.Plan); err != nil {
			return nil, nil, nil, err
		}
		return &moved, dto.Plan, gens, nil
	})
}

func (s *service) Reposition(ctx context.Context, userID, id uuid.UUID, dto RepositionActionDTO) (*goal.Action, error) {
	log := config.WithContext(ctx).WithField("action_id", id)
	to, err := targetStatus(dto.Status)
	if err != nil {
		s.metrics.Move(opReposition, metrics.OutcomeInvalid)
		return nil, err
	}

	var moved *goal.Action
	err = s.retry(ctx, opReposition, func() error {
		seen, err := s.load(ctx, userID, id)
		if err != nil {
			return err
		}
		moved, err = s.moveLocked(ctx, userID, seen, to, func(a *goal.Action, cols Columns, gens map[goal.Column]int64) (*goal.Action, []goal.OrderAssignment, map[goal.Column]int64, error) {
			m := *a
			index, plan := PlanMove(cols, *a, to, dto.Position)
			if err := Transition(&m, to, s.now().UTC()); err != nil {
				return nil, nil, nil, err
			}
			m.OrderIndex = index
			return &m, plan, gens, nil
		})
		return err
	})
	s.metrics.Move(opReposition, outcome(err))
	if err != nil {
		log.WithError(err).Warn("Reposition failed")
		return nil, err
	}
	log.WithFields(logrus.Fields{"status": moved.Status.String(), "order_index": moved.OrderIndex}).Info("Action repositioned")
	return moved, nil
}

func (s *service) boardOwner(ctx context.Context, boardID uuid.UUID) (uuid.UUID, error) {
	kr, err := s.store.GetQuarterlyKeyResult(ctx, boardID)
	if err == nil {
		return kr.UserID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, err
	}
	o, err := s.store.GetObjective(ctx, boardID)
	if err != nil {
		return uuid.Nil, err
	}
	return o.UserID, nil
}

func (s *service) Board(ctx context.Context, userID, boardID uuid.UUID) (*BoardResponse, error) {
	owner, err := s.boardOwner(ctx, boardID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// An orphaned board still lists whatever the user has on it.
	case err != nil:
		return nil, fmt.Errorf("load board: %w", err)
	default:
		if err := goal.CheckOwner(owner, userID); err != nil {
			return nil, err
		}
	}

	cols := make([]goal.Column, 0, len(goal.AllStatuses))
	for _, st := range goal.AllStatuses {
		cols = append(cols, goal.Column{BoardID: boardID, Status: st})
	}
	gens, err := s.store.ColumnGenerations(ctx, cols)
	if err != nil {
		return nil, fmt.Errorf("read generations: %w", err)
	}
	actions, err := s.store.ListActions(ctx, store.ActionFilter{UserID: userID, BoardID: &boardID})
	if err != nil {
		return nil, fmt.Errorf("list board: %w", err)
	}
	grouped := groupColumns(actions)

	resp := &BoardResponse{BoardID: boardID, Columns: make([]ColumnResponse, 0, len(cols))}
	for _, c := range cols {
		items := grouped[c]
		if items == nil {
			items = []goal.Action{}
		}
		resp.Columns = append(resp.Columns, ColumnResponse{Status: c.Status, Generation: gens[c], Actions: items})
	}
	return resp, nil
}

func (s *service) Orphans(ctx context.Context, userID uuid.UUID) (*OrphansResponse, error) {
	actions, err := s.store.ListOrphanedActions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orphaned actions: %w", err)
	}
	if len(actions) > 0 {
		config.WithContext(ctx).WithField("count", len(actions)).Warn("Actions point at a deleted key result or objective")
	}
	if actions == nil {
		actions = []goal.Action{}
	}
	return &OrphansResponse{Count: len(actions), Actions: actions}, nil
}
