package objective

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/goal"
	"github.com/saulo-duarte/chronos-goals/internal/progress"
	"github.com/saulo-duarte/chronos-goals/internal/store"
	util "github.com/saulo-duarte/chronos-goals/internal/utils"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, dto CreateObjectiveDTO) (*ObjectiveResponse, bool, error)
	List(ctx context.Context, userID uuid.UUID) ([]ObjectiveResponse, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*ObjectiveResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, dto UpdateObjectiveDTO) (*ObjectiveResponse, error)
	// Delete removes the objective and its key results; their actions stay
	// behind as orphans.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	CreateKeyResult(ctx context.Context, userID, objectiveID uuid.UUID, dto CreateQuarterlyKeyResultDTO) (*QuarterlyKeyResultResponse, bool, error)
	ListKeyResults(ctx context.Context, userID, objectiveID uuid.UUID) ([]QuarterlyKeyResultResponse, error)
	UpdateKeyResult(ctx context.Context, userID, id uuid.UUID, dto UpdateQuarterlyKeyResultDTO) (*QuarterlyKeyResultResponse, error)
	DeleteKeyResult(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	store store.Store
}

func NewService(st store.Store) Service {
	return &service{store: st}
}

func idOrNew(id *uuid.UUID) uuid.UUID {
	if id != nil && *id != uuid.Nil {
		return *id
	}
	return uuid.New()
}

func keyResultResponse(kr goal.QuarterlyKeyResult) QuarterlyKeyResultResponse {
	return QuarterlyKeyResultResponse{QuarterlyKeyResult: kr, Progress: progress.Percent(progress.KeyResultProgress(kr.Measure))}
}

func toResponse(o goal.QuarterlyObjective, krs []goal.QuarterlyKeyResult) ObjectiveResponse {
	resp := ObjectiveResponse{
		QuarterlyObjective: o,
		Progress:           progress.Percent(progress.WeightedObjectiveProgress(progress.Members(krs))),
		KeyResults:         make([]QuarterlyKeyResultResponse, 0, len(krs)),
	}
	for _, kr := range krs {
		resp.KeyResults = append(resp.KeyResults, keyResultResponse(kr))
	}
	return resp
}

func (s *service) load(ctx context.Context, userID, id uuid.UUID) (*goal.QuarterlyObjective, error) {
	o, err := s.store.GetObjective(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load objective: %w", err)
	}
	if err := goal.CheckOwner(o.UserID, userID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) withKeyResults(ctx context.Context, o *goal.QuarterlyObjective) (*ObjectiveResponse, error) {
	krs, err := s.store.ListQuarterlyKeyResults(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list quarterly key results: %w", err)
	}
	resp := toResponse(*o, krs)
	return &resp, nil
}

func (s *service) checkAmbition(ctx context.Context, userID uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	a, err := s.store.GetAmbition(ctx, *id)
	if err != nil {
		return fmt.Errorf("load ambition: %w", err)
	}
	return goal.CheckOwner(a.UserID, userID)
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, dto CreateObjectiveDTO) (*ObjectiveResponse, bool, error) {
	log := config.WithContext(ctx)
	if dto.Quarter == nil {
		return nil, false, fmt.Errorf("%w: quarter is required", goal.ErrInvalidInput)
	}

	o := &goal.QuarterlyObjective{
		ID:          idOrNew(dto.ID),
		UserID:      userID,
		AmbitionID:  dto.AmbitionID,
		Title:       dto.Title,
		Description: dto.Description,
		Quarter:     *dto.Quarter,
		Year:        dto.Year,
	}
	if err := o.Validate(); err != nil {
		return nil, false, err
	}
	if err := s.checkAmbition(ctx, userID, o.AmbitionID); err != nil {
		return nil, false, err
	}

	created, err := s.store.CreateObjective(ctx, o)
	if err != nil {
		log.WithError(err).Error("Failed to create objective")
		return nil, false, fmt.Errorf("create objective: %w", err)
	}
	if err := goal.CheckOwner(o.UserID, userID); err != nil {
		return nil, false, err
	}
	if created {
		log.WithField("objective_id", o.ID).Info("Objective created")
	}

	resp, err := s.withKeyResults(ctx, o)
	if err != nil {
		return nil, false, err
	}
	return resp, created, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ObjectiveResponse, error) {
	objectives, err := s.store.ListObjectives(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	responses := make([]ObjectiveResponse, 0, len(objectives))
	for i := range objectives {
		resp, err := s.withKeyResults(ctx, &objectives[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*ObjectiveResponse, error) {
	o, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.withKeyResults(ctx, o)
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, dto UpdateObjectiveDTO) (*ObjectiveResponse, error) {
	o, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	switch {
	case dto.AmbitionID != nil:
		if err := s.checkAmbition(ctx, userID, dto.AmbitionID); err != nil {
			return nil, err
		}
		o.AmbitionID = dto.AmbitionID
	case dto.ClearAmbition:
		o.AmbitionID = nil
	}
	if dto.Title != nil {
		o.Title = *dto.Title
	}
	if dto.Description != nil {
		o.Description = *dto.Description
	}
	if dto.Quarter != nil {
		o.Quarter = *dto.Quarter
	}
	if dto.Year != nil {
		o.Year = *dto.Year
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SaveObjective(ctx, o); err != nil {
		return nil, fmt.Errorf("save objective: %w", err)
	}
	return s.withKeyResults(ctx, o)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteObjective(ctx, id); err != nil {
		return fmt.Errorf("delete objective: %w", err)
	}
	config.WithContext(ctx).WithField("objective_id", id).Info("Objective deleted, its actions are now orphaned")
	return nil
}

func (s *service) loadKeyResult(ctx context.Context, userID, id uuid.UUID) (*goal.QuarterlyKeyResult, error) {
	kr, err := s.store.GetQuarterlyKeyResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load quarterly key result: %w", err)
	}
	if err := goal.CheckOwner(kr.UserID, userID); err != nil {
		return nil, err
	}
	return kr, nil
}

func (s *service) CreateKeyResult(ctx context.Context, userID, objectiveID uuid.UUID, dto CreateQuarterlyKeyResultDTO) (*QuarterlyKeyResultResponse, bool, error) {
	if _, err := s.load(ctx, userID, objectiveID); err != nil {
		return nil, false, err
	}

	kr := &goal.QuarterlyKeyResult{
		ID:          idOrNew(dto.ID),
		UserID:      userID,
		ObjectiveID: objectiveID,
		Title:       dto.Title,
		Description: dto.Description,
		Measure: goal.Measure{
			TargetValue:  dto.TargetValue,
			CurrentValue: dto.CurrentValue,
			Unit:         dto.Unit,
			Deadline:     util.ToTimePtr(dto.Deadline),
		},
		Weight: defaultWeight,
	}
	if dto.Weight != nil {
		kr.Weight = *dto.Weight
	}
	if err := kr.Validate(); err != nil {
		return nil, false, err
	}

	created, err := s.store.CreateQuarterlyKeyResult(ctx, kr)
	if err != nil {
		return nil, false, fmt.Errorf("create quarterly key result: %w", err)
	}
	if err := goal.CheckOwner(kr.UserID, userID); err != nil {
		return nil, false, err
	}
	if created {
		config.WithContext(ctx).WithField("quarterly_key_result_id", kr.ID).Info("Quarterly key result created")
	}
	resp := keyResultResponse(*kr)
	return &resp, created, nil
}

func (s *service) ListKeyResults(ctx context.Context, userID, objectiveID uuid.UUID) ([]QuarterlyKeyResultResponse, error) {
	if _, err := s.load(ctx, userID, objectiveID); err != nil {
		return nil, err
	}
	krs, err := s.store.ListQuarterlyKeyResults(ctx, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("list quarterly key results: %w", err)
	}
	out := make([]QuarterlyKeyResultResponse, 0, len(krs))
	for _, kr := range krs {
		out = append(out, keyResultResponse(kr))
	}
	return out, nil
}

func (s *service) UpdateKeyResult(ctx context.Context, userID, id uuid.UUID, dto UpdateQuarterlyKeyResultDTO) (*QuarterlyKeyResultResponse, error) {
	kr, err := s.loadKeyResult(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		kr.Title = *dto.Title
	}
	if dto.Description != nil {
		kr.Description = *dto.Description
	}
	if dto.TargetValue != nil {
		kr.TargetValue = *dto.TargetValue
	}
	if dto.Unit != nil {
		kr.Unit = *dto.Unit
	}
	if t := util.ToTimePtr(dto.Deadline); t != nil {
		kr.Deadline = t
	} else if dto.ClearDeadline {
		kr.Deadline = nil
	}
	if dto.Weight != nil {
		kr.Weight = *dto.Weight
	}
	if err := kr.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SaveQuarterlyKeyResult(ctx, kr); err != nil {
		return nil, fmt.Errorf("save quarterly key result: %w", err)
	}
	saved, err := s.store.GetQuarterlyKeyResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload quarterly key result: %w", err)
	}
	resp := keyResultResponse(*saved)
	return &resp, nil
}

func (s *service) DeleteKeyResult(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.loadKeyResult(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteQuarterlyKeyResult(ctx, id); err != nil {
		return fmt.Errorf("delete quarterly key result: %w", err)
	}
	return nil
}
