package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/metrics"
	"github.com/saulo-duarte/chronos-goals/internal/store"
)

type Service interface {
	AmbitionProgress(ctx context.Context, userID, ambitionID uuid.UUID) (*ProgressResponse, error)
	ObjectiveProgress(ctx context.Context, userID, objectiveID uuid.UUID) (*ProgressResponse, error)
	UpdateKeyResultValue(ctx context.Context, userID, id uuid.UUID, value float64) (*KeyResultProgressResponse, error)
	UpdateQuarterlyKeyResultValue(ctx context.Context, userID, id uuid.UUID, value float64) (*KeyResultProgressResponse, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (*DashboardResponse, error)
}

type service struct {
	store   store.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(st store.Store, m *metrics.Metrics) Service {
	return &service{store: st, metrics: m, now: time.Now}
}

func keyResultResponse(id uuid.UUID, title string, m goal.Measure, weight *float64) KeyResultProgressResponse {
	return KeyResultProgressResponse{
		ID:           id,
		Title:        title,
		CurrentValue: m.CurrentValue,
		TargetValue:  m.TargetValue,
		Unit:         m.Unit,
		Weight:       weight,
		Progress:     Percent(KeyResultProgress(m)),
	}
}

func (s *service) AmbitionProgress(ctx context.Context, userID, ambitionID uuid.UUID) (*ProgressResponse, error) {
	a, err := s.store.GetAmbition(ctx, ambitionID)
	if err != nil {
		return nil, fmt.Errorf("load ambition: %w", err)
	}
	if err := goal.CheckOwner(a.UserID, userID); err != nil {
		return nil, err
	}
	krs, err := s.store.ListKeyResults(ctx, ambitionID)
	if err != nil {
		return nil, fmt.Errorf("list key results: %w", err)
	}

	resp := &ProgressResponse{
		ID:         a.ID,
		EntityType: goal.EntityAmbition,
		Title:      a.Title,
		Progress:   Percent(AmbitionProgress(krs)),
		KeyResults: make([]KeyResultProgressResponse, 0, len(krs)),
	}
	for _, kr := range krs {
		resp.KeyResults = append(resp.KeyResults, keyResultResponse(kr.ID, kr.Title, kr.Measure, nil))
	}
	return resp, nil
}

func (s *service) ObjectiveProgress(ctx context.Context, userID, objectiveID uuid.UUID) (*ProgressResponse, error) {
	o, err := s.store.GetObjective(ctx, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("load objective: %w", err)
	}
	if err := goal.CheckOwner(o.UserID, userID); err != nil {
		return nil, err
	}
	krs, err := s.store.ListQuarterlyKeyResults(ctx, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("list quarterly key results: %w", err)
	}

	resp := &ProgressResponse{
		ID:         o.ID,
		EntityType: goal.EntityObjective,
		Title:      o.Title,
		Progress:   Percent(WeightedObjectiveProgress(Members(krs))),
		KeyResults: make([]KeyResultProgressResponse, 0, len(krs)),
	}
	for _, kr := range krs {
		w := kr.Weight
		resp.KeyResults = append(resp.KeyResults, keyResultResponse(kr.ID, kr.Title, kr.Measure, &w))
	}
	return resp, nil
}

func (s *service) UpdateKeyResultValue(ctx context.Context, userID, id uuid.UUID, value float64) (*KeyResultProgressResponse, error) {
	log := config.WithContext(ctx).WithField("key_result_id", id)

	if err := goal.CheckValue(value); err != nil {
		return nil, err
	}
	kr, err := s.store.GetKeyResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load key result: %w", err)
	}
	if err := goal.CheckOwner(kr.UserID, userID); err != nil {
		return nil, err
	}
	if err := s.store.Patch(ctx, store.KindKeyResult, id, map[string]any{"current_value": value}); err != nil {
		return nil, fmt.Errorf("update key result value: %w", err)
	}
	kr.CurrentValue = value

	siblings, err := s.store.ListKeyResults(ctx, kr.AmbitionID)
	if err != nil {
		return nil, fmt.Errorf("list key results: %w", err)
	}
	at := s.now().UTC()
	krProgress := KeyResultProgress(kr.Measure)
	if err := s.record(ctx, userID, goal.EntityKeyResult, kr.ID, krProgress, at); err != nil {
		return nil, err
	}
	if err := s.record(ctx, userID, goal.EntityAmbition, kr.AmbitionID, AmbitionProgress(siblings), at); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"value": value, "progress": krProgress}).Info("Key result value updated")
	resp := keyResultResponse(kr.ID, kr.Title, kr.Measure, nil)
	return &resp, nil
}

func (s *service) UpdateQuarterlyKeyResultValue(ctx context.Context, userID, id uuid.UUID, value float64) (*KeyResultProgressResponse, error) {
	log := config.WithContext(ctx).WithField("quarterly_key_result_id", id)

	if err := goal.CheckValue(value); err != nil {
		return nil, err
	}
	kr, err := s.store.GetQuarterlyKeyResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load quarterly key result: %w", err)
	}
	if err := goal.CheckOwner(kr.UserID, userID); err != nil {
		return nil, err
	}
	if err := s.store.Patch(ctx, store.KindQuarterlyKeyResult, id, map[string]any{"current_value": value}); err != nil {
		return nil, fmt.Errorf("update quarterly key result value: %w", err)
	}
	kr.CurrentValue = value

	siblings, err := s.store.ListQuarterlyKeyResults(ctx, kr.ObjectiveID)
	if err != nil {
		return nil, fmt.Errorf("list quarterly key results: %w", err)
	}
	at := s.now().UTC()
	krProgress := KeyResultProgress(kr.Measure)
	if err := s.record(ctx, userID, goal.EntityQuarterlyKeyResult, kr.ID, krProgress, at); err != nil {
		return nil, err
	}
	objective := WeightedObjectiveProgress(Members(siblings))
	if err := s.record(ctx, userID, goal.EntityObjective, kr.ObjectiveID, objective, at); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"value": value, "progress": krProgress}).Info("Quarterly key result value updated")
	w := kr.Weight
	resp := keyResultResponse(kr.ID, kr.Title, kr.Measure, &w)
	return &resp, nil
}

func (s *service) record(ctx context.Context, userID uuid.UUID, kind goal.EntityType, id uuid.UUID, value float64, at time.Time) error {
	err := s.store.AppendSnapshot(ctx, &goal.ProgressSnapshot{
		UserID:     userID,
		EntityID:   id,
		EntityType: kind,
		Value:      value,
		RecordedAt: at,
	})
	if err != nil {
		return fmt.Errorf("append %s snapshot: %w", kind, err)
	}
	s.metrics.Snapshot(kind.String())
	return nil
}

func (s *service) Dashboard(ctx context.Context, userID uuid.UUID) (*DashboardResponse, error) {
	var (
		ambitions  []goal.Ambition
		krs        []goal.KeyResult
		objectives []goal.QuarterlyObjective
		qkrs       = map[uuid.UUID][]goal.QuarterlyKeyResult{}
		actions    []goal.Action
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ambitions, err = s.store.ListAmbitions(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		krs, err = s.store.ListKeyResultsByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		objectives, err = s.store.ListObjectives(gctx, userID)
		if err != nil {
			return err
		}
		for _, o := range objectives {
			list, err := s.store.ListQuarterlyKeyResults(gctx, o.ID)
			if err != nil {
				return err
			}
			qkrs[o.ID] = list
		}
		return nil
	})
	g.Go(func() (err error) {
		actions, err = s.store.ListActions(gctx, store.ActionFilter{UserID: userID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	byAmbition := make(map[uuid.UUID][]goal.KeyResult, len(ambitions))
	for _, kr := range krs {
		byAmbition[kr.AmbitionID] = append(byAmbition[kr.AmbitionID], kr)
	}

	resp := &DashboardResponse{
		Ambitions:  make([]EntityProgress, 0, len(ambitions)),
		Objectives: make([]EntityProgress, 0, len(objectives)),
		Actions:    actionStats(actions, s.now()),
	}
	perAmbition := make([]float64, 0, len(ambitions))
	for _, a := range ambitions {
		p := AmbitionProgress(byAmbition[a.ID])
		perAmbition = append(perAmbition, p)
		resp.Ambitions = append(resp.Ambitions, EntityProgress{ID: a.ID, Title: a.Title, Progress: Percent(p)})
	}
	resp.OverallProgress = Percent(OverallProgress(perAmbition))
	for _, o := range objectives {
		p := WeightedObjectiveProgress(Members(qkrs[o.ID]))
		resp.Objectives = append(resp.Objectives, EntityProgress{ID: o.ID, Title: o.Title, Progress: Percent(p)})
	}
	return resp, nil
}

func actionStats(actions []goal.Action, now time.Time) ActionStats {
	stats := ActionStats{Total: len(actions), ByStatus: make(map[string]int, len(goal.AllStatuses))}
	for _, st := range goal.AllStatuses {
		stats.ByStatus[st.String()] = 0
	}
	for _, a := range actions {
		stats.ByStatus[a.Status.String()]++
		open := a.Status != goal.StatusDone && a.Status != goal.StatusCancelled
		if open && a.Deadline != nil && a.Deadline.Before(now) {
			stats.Overdue++
		}
	}
	return stats
}
