package ambition

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
	Create(ctx context.Context, userID uuid.UUID, dto CreateAmbitionDTO) (*AmbitionResponse, bool, error)
	List(ctx context.Context, userID uuid.UUID) ([]AmbitionResponse, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*AmbitionResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, dto UpdateAmbitionDTO) (*AmbitionResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	CreateKeyResult(ctx context.Context, userID, ambitionID uuid.UUID, dto CreateKeyResultDTO) (*KeyResultResponse, bool, error)
	ListKeyResults(ctx context.Context, userID, ambitionID uuid.UUID) ([]KeyResultResponse, error)
	UpdateKeyResult(ctx context.Context, userID, id uuid.UUID, dto UpdateKeyResultDTO) (*KeyResultResponse, error)
	DeleteKeyResult(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	store store.Store
}

func NewService(st store.Store) Service {
	return &service{store: st}
}

func keyResultResponses(krs []goal.KeyResult) []KeyResultResponse {
	out := make([]KeyResultResponse, 0, len(krs))
	for _, kr := range krs {
		out = append(out, KeyResultResponse{KeyResult: kr, Progress: progress.Percent(progress.KeyResultProgress(kr.Measure))})
	}
	return out
}

func toResponse(a goal.Ambition, krs []goal.KeyResult) AmbitionResponse {
	return AmbitionResponse{
		Ambition:   a,
		Progress:   progress.Percent(progress.AmbitionProgress(krs)),
		KeyResults: keyResultResponses(krs),
	}
}

func (s *service) load(ctx context.Context, userID, id uuid.UUID) (*goal.Ambition, error) {
	a, err := s.store.GetAmbition(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load ambition: %w", err)
	}
	if err := goal.CheckOwner(a.UserID, userID); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) withKeyResults(ctx context.Context, a *goal.Ambition) (*AmbitionResponse, error) {
	krs, err := s.store.ListKeyResults(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("list key results: %w", err)
	}
	resp := toResponse(*a, krs)
	return &resp, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, dto CreateAmbitionDTO) (*AmbitionResponse, bool, error) {
	log := config.WithContext(ctx)
	if dto.Category == nil {
		return nil, false, fmt.Errorf("%w: category is required", goal.ErrInvalidInput)
	}

	a := &goal.Ambition{
		ID:          idOrNew(dto.ID),
		UserID:      userID,
		Title:       dto.Title,
		Description: dto.Description,
		Year:        dto.Year,
		Category:    *dto.Category,
		Priority:    goal.PriorityMedium,
	}
	if dto.Priority != nil {
		a.Priority = *dto.Priority
	}
	if err := a.Validate(); err != nil {
		return nil, false, err
	}

	created, err := s.store.CreateAmbition(ctx, a)
	if err != nil {
		log.WithError(err).Error("Failed to create ambition")
		return nil, false, fmt.Errorf("create ambition: %w", err)
	}
	if err := goal.CheckOwner(a.UserID, userID); err != nil {
		return nil, false, err
	}
	if created {
		log.WithField("ambition_id", a.ID).Info("Ambition created")
	}

	resp, err := s.withKeyResults(ctx, a)
	if err != nil {
		return nil, false, err
	}
	return resp, created, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AmbitionResponse, error) {
	ambitions, err := s.store.ListAmbitions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ambitions: %w", err)
	}
	krs, err := s.store.ListKeyResultsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list key results: %w", err)
	}
	byAmbition := make(map[uuid.UUID][]goal.KeyResult, len(ambitions))
	for _, kr := range krs {
		byAmbition[kr.AmbitionID] = append(byAmbition[kr.AmbitionID], kr)
	}

	responses := make([]AmbitionResponse, 0, len(ambitions))
	for _, a := range ambitions {
		responses = append(responses, toResponse(a, byAmbition[a.ID]))
	}
	return responses, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*AmbitionResponse, error) {
	a, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.withKeyResults(ctx, a)
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, dto UpdateAmbitionDTO) (*AmbitionResponse, error) {
	a, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		a.Title = *dto.Title
	}
	if dto.Description != nil {
		a.Description = *dto.Description
	}
	if dto.Year != nil {
		a.Year = *dto.Year
	}
	if dto.Category != nil {
		a.Category = *dto.Category
	}
	if dto.Priority != nil {
		a.Priority = *dto.Priority
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SaveAmbition(ctx, a); err != nil {
		return nil, fmt.Errorf("save ambition: %w", err)
	}
	return s.withKeyResults(ctx, a)
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteAmbition(ctx, id); err != nil {
		return fmt.Errorf("delete ambition: %w", err)
	}
	config.WithContext(ctx).WithField("ambition_id", id).Info("Ambition deleted with its key results")
	return nil
}

func (s *service) loadKeyResult(ctx context.Context, userID, id uuid.UUID) (*goal.KeyResult, error) {
	kr, err := s.store.GetKeyResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load key result: %w", err)
	}
	if err := goal.CheckOwner(kr.UserID, userID); err != nil {
		return nil, err
	}
	return kr, nil
}

func (s *service) CreateKeyResult(ctx context.Context, userID, ambitionID uuid.UUID, dto CreateKeyResultDTO) (*KeyResultResponse, bool, error) {
	if _, err := s.load(ctx, userID, ambitionID); err != nil {
		return nil, false, err
	}

	kr := &goal.KeyResult{
		ID:          idOrNew(dto.ID),
		UserID:      userID,
		AmbitionID:  ambitionID,
		Title:       dto.Title,
		Description: dto.Description,
		Measure: goal.Measure{
			TargetValue:  dto.TargetValue,
			CurrentValue: dto.CurrentValue,
			Unit:         dto.Unit,
			Deadline:     util.ToTimePtr(dto.Deadline),
		},
	}
	if err := kr.Validate(); err != nil {
		return nil, false, err
	}

	created, err := s.store.CreateKeyResult(ctx, kr)
	if err != nil {
		return nil, false, fmt.Errorf("create key result: %w", err)
	}
	if err := goal.CheckOwner(kr.UserID, userID); err != nil {
		return nil, false, err
	}
	if created {
		config.WithContext(ctx).WithField("key_result_id", kr.ID).Info("Key result created")
	}
	return &keyResultResponses([]goal.KeyResult{*kr})[0], created, nil
}

func (s *service) ListKeyResults(ctx context.Context, userID, ambitionID uuid.UUID) ([]KeyResultResponse, error) {
	if _, err := s.load(ctx, userID, ambitionID); err != nil {
		return nil, err
	}
	krs, err := s.store.ListKeyResults(ctx, ambitionID)
	if err != nil {
		return nil, fmt.Errorf("list key results: %w", err)
	}
	return keyResultResponses(krs), nil
}

func (s *service) UpdateKeyResult(ctx context.Context, userID, id uuid.UUID, dto UpdateKeyResultDTO) (*KeyResultResponse, error) {
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
	if err := kr.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SaveKeyResult(ctx, kr); err != nil {
		return nil, fmt.Errorf("save key result: %w", err)
	}
	saved, err := s.store.GetKeyResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload key result: %w", err)
	}
	return &keyResultResponses([]goal.KeyResult{*saved})[0], nil
}

func (s *service) DeleteKeyResult(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.loadKeyResult(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteKeyResult(ctx, id); err != nil {
		return fmt.Errorf("delete key result: %w", err)
	}
	return nil
}
