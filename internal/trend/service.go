package trend

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/store"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type Service interface {
	Analyze(ctx context.Context, userID uuid.UUID, entityType goal.EntityType, id uuid.UUID) (*TrendResponse, error)
}

type service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) Service {
	return &service{store: st, now: time.Now}
}

func (s *service) owner(ctx context.Context, entityType goal.EntityType, id uuid.UUID) (uuid.UUID, error) {
	switch entityType {
	case goal.EntityAmbition:
		a, err := s.store.GetAmbition(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return a.UserID, nil
	case goal.EntityKeyResult:
		kr, err := s.store.GetKeyResult(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return kr.UserID, nil
	case goal.EntityObjective:
		o, err := s.store.GetObjective(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return o.UserID, nil
	case goal.EntityQuarterlyKeyResult:
		kr, err := s.store.GetQuarterlyKeyResult(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		return kr.UserID, nil
	}
	return uuid.Nil, fmt.Errorf("%w: unknown entity type", goal.ErrInvalidInput)
}

func (s *service) Analyze(ctx context.Context, userID uuid.UUID, entityType goal.EntityType, id uuid.UUID) (*TrendResponse, error) {
	owner, err := s.owner(ctx, entityType, id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", entityType, err)
	}
	if err := goal.CheckOwner(owner, userID); err != nil {
		return nil, err
	}

	now := s.now()
	since := util.StartOfDay(now).AddDate(0, 0, -(WindowDays - 1))
	snaps, err := s.store.ListSnapshots(ctx, entityType, id, since)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	series := Bucket(snaps, now)
	result := Analyze(series)
	config.WithContext(ctx).WithField("entity_id", id).
		Debugf("Trend %s from %d snapshots", result.Trend, len(snaps))

	return &TrendResponse{
		EntityID:   id,
		EntityType: entityType,
		Result:     result,
		Series:     series,
	}, nil
}
