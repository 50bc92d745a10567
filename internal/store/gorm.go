package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

// GormStore is the Postgres backed store.
type GormStore struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&goal.Ambition{},
		&goal.KeyResult{},
		&goal.QuarterlyObjective{},
		&goal.QuarterlyKeyResult{},
		&goal.Action{},
		&goal.BoardColumn{},
		&goal.ProgressSnapshot{},
	)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func affected(res *gorm.DB, missing error) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missing
	}
	return nil
}

// create inserts v unless its primary key exists; then it reloads v.
func create[T any](ctx context.Context, db *gorm.DB, v *T, id uuid.UUID) (bool, error) {
	res := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(v)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}
	return false, notFound(db.WithContext(ctx).First(v, "id = ?", id).Error)
}

func get[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) (*T, error) {
	var v T
	if err := db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func list[T any](ctx context.Context, db *gorm.DB, order string, query string, args ...any) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Where(query, args...).Order(order).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func remove[T any](ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	var v T
	return affected(db.WithContext(ctx).Delete(&v, "id = ?", id), ErrNotFound)
}

// ─── Ambitions ───────────────────────────────────────────────────────────────

func (s *GormStore) CreateAmbition(ctx context.Context, a *goal.Ambition) (bool, error) {
	return create(ctx, s.db, a, a.ID)
}

func (s *GormStore) GetAmbition(ctx context.Context, id uuid.UUID) (*goal.Ambition, error) {
	return get[goal.Ambition](ctx, s.db, id)
}

func (s *GormStore) ListAmbitions(ctx context.Context, userID uuid.UUID) ([]goal.Ambition, error) {
	return list[goal.Ambition](ctx, s.db, "year DESC, created_at", "user_id = ?", userID)
}

func (s *GormStore) SaveAmbition(ctx context.Context, a *goal.Ambition) error {
	res := s.db.WithContext(ctx).Model(a).
		Select("title", "description", "year", "category", "priority", "updated_at").
		Updates(a)
	return affected(res, ErrNotFound)
}

func (s *GormStore) DeleteAmbition(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&goal.KeyResult{}, "ambition_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&goal.QuarterlyObjective{}).Where("ambition_id = ?", id).
			UpdateColumn("ambition_id", nil).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&goal.Ambition{}, "id = ?", id), ErrNotFound)
	})
}

// ─── Key results ─────────────────────────────────────────────────────────────

func (s *GormStore) CreateKeyResult(ctx context.Context, kr *goal.KeyResult) (bool, error) {
	return create(ctx, s.db, kr, kr.ID)
}

func (s *GormStore) GetKeyResult(ctx context.Context, id uuid.UUID) (*goal.KeyResult, error) {
	return get[goal.KeyResult](ctx, s.db, id)
}

func (s *GormStore) ListKeyResults(ctx context.Context, ambitionID uuid.UUID) ([]goal.KeyResult, error) {
	return list[goal.KeyResult](ctx, s.db, "created_at", "ambition_id = ?", ambitionID)
}

func (s *GormStore) ListKeyResultsByUser(ctx context.Context, userID uuid.UUID) ([]goal.KeyResult, error) {
	return list[goal.KeyResult](ctx, s.db, "created_at", "user_id = ?", userID)
}

func (s *GormStore) SaveKeyResult(ctx context.Context, kr *goal.KeyResult) error {
	res := s.db.WithContext(ctx).Model(kr).
		Select("title", "description", "target_value", "unit", "deadline", "updated_at").
		Updates(kr)
	return affected(res, ErrNotFound)
}

func (s *GormStore) DeleteKeyResult(ctx context.Context, id uuid.UUID) error {
	return remove[goal.KeyResult](ctx, s.db, id)
}

// ─── Quarterly objectives ────────────────────────────────────────────────────

func (s *GormStore) CreateObjective(ctx context.Context, o *goal.QuarterlyObjective) (bool, error) {
	return create(ctx, s.db, o, o.ID)
}

func (s *GormStore) GetObjective(ctx context.Context, id uuid.UUID) (*goal.QuarterlyObjective, error) {
	return get[goal.QuarterlyObjective](ctx, s.db, id)
}

func (s *GormStore) ListObjectives(ctx context.Context, userID uuid.UUID) ([]goal.QuarterlyObjective, error) {
	return list[goal.QuarterlyObjective](ctx, s.db, "year DESC, quarter, created_at", "user_id = ?", userID)
}

func (s *GormStore) SaveObjective(ctx context.Context, o *goal.QuarterlyObjective) error {
	res := s.db.WithContext(ctx).Model(o).
		Select("ambition_id", "title", "description", "quarter", "year", "updated_at").
		Updates(o)
	return affected(res, ErrNotFound)
}

func (s *GormStore) DeleteObjective(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&goal.QuarterlyKeyResult{}, "objective_id = ?", id).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&goal.QuarterlyObjective{}, "id = ?", id), ErrNotFound)
	})
}

// ─── Quarterly key results ───────────────────────────────────────────────────

func (s *GormStore) CreateQuarterlyKeyResult(ctx context.Context, kr *goal.QuarterlyKeyResult) (bool, error) {
	return create(ctx, s.db, kr, kr.ID)
}

func (s *GormStore) GetQuarterlyKeyResult(ctx context.Context, id uuid.UUID) (*goal.QuarterlyKeyResult, error) {
	return get[goal.QuarterlyKeyResult](ctx, s.db, id)
}

func (s *GormStore) ListQuarterlyKeyResults(ctx context.Context, objectiveID uuid.UUID) ([]goal.QuarterlyKeyResult, error) {
	return list[goal.QuarterlyKeyResult](ctx, s.db, "created_at", "objective_id = ?", objectiveID)
}

func (s *GormStore) SaveQuarterlyKeyResult(ctx context.Context, kr *goal.QuarterlyKeyResult) error {
	res := s.db.WithContext(ctx).Model(kr).
		Select("title", "description", "target_value", "unit", "deadline", "weight", "updated_at").
		Updates(kr)
	return affected(res, ErrNotFound)
}

func (s *GormStore) DeleteQuarterlyKeyResult(ctx context.Context, id uuid.UUID) error {
	return remove[goal.QuarterlyKeyResult](ctx, s.db, id)
}

// ─── Actions ─────────────────────────────────────────────────────────────────

func (s *GormStore) GetAction(ctx context.Context, id uuid.UUID) (*goal.Action, error) {
	return get[goal.Action](ctx, s.db, id)
}

func (s *GormStore) ListActions(ctx context.Context, f ActionFilter) ([]goal.Action, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", f.UserID)
	if f.BoardID != nil {
		q = q.Where("board_id = ?", *f.BoardID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	var out []goal.Action
	if err := q.Order("board_id, status, order_index, created_at").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) DeleteAction(ctx context.Context, id uuid.UUID) error {
	return remove[goal.Action](ctx, s.db, id)
}

func (s *GormStore) ListOrphanedActions(ctx context.Context, userID uuid.UUID) ([]goal.Action, error) {
	return list[goal.Action](ctx, s.db, "created_at", orphanedActionsWhere, userID)
}

// ─── Board columns ───────────────────────────────────────────────────────────

func (s *GormStore) ColumnGenerations(ctx context.Context, cols []goal.Column) (map[goal.Column]int64, error) {
	out := make(map[goal.Column]int64, len(cols))
	for _, c := range cols {
		var bc goal.BoardColumn
		err := s.db.WithContext(ctx).
			Where("board_id = ? AND status = ?", c.BoardID, c.Status).
			Limit(1).Find(&bc).Error
		if err != nil {
			return nil, err
		}
		out[c] = bc.Generation
	}
	return out, nil
}

func (s *GormStore) CommitColumns(ctx context.Context, c ColumnCommit) error {
	if err := validateCommit(c); err != nil {
		return err
	}
	at := c.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, col := range sortedColumns(c.Expected) {
			if err := bumpGormColumn(tx, col, c.Expected[col]); err != nil {
				return err
			}
		}

		if a := c.Insert; a != nil {
			if a.CreatedAt.IsZero() {
				a.CreatedAt = at
			}
			a.UpdatedAt = at
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(a)
			if err := affected(res, ErrAlreadyExists); err != nil {
				return err
			}
		}

		if a := c.Move; a != nil {
			a.UpdatedAt = at
			res := tx.Model(&goal.Action{}).
				Where("id = ? AND board_id = ? AND status = ?", a.ID, a.BoardID, c.MoveFrom).
				UpdateColumns(map[string]any{
					"status":       a.Status,
					"order_index":  a.OrderIndex,
					"completed_at": a.CompletedAt,
					"updated_at":   at,
				})
			if err := affected(res, ErrConflict); err != nil {
				return err
			}
		}

		for _, p := range c.Plan {
			var cur goal.Action
			if err := tx.Select("board_id", "status").First(&cur, "id = ?", p.ActionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrConflict
				}
				return err
			}
			if _, guarded := c.Expected[cur.Column()]; !guarded {
				return ErrConflict
			}
			err := tx.Model(&goal.Action{}).Where("id = ?", p.ActionID).
				UpdateColumns(map[string]any{"order_index": p.OrderIndex, "updated_at": at}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func bumpGormColumn(tx *gorm.DB, col goal.Column, expected int64) error {
	res := tx.Model(&goal.BoardColumn{}).
		Where("board_id = ? AND status = ? AND generation = ?", col.BoardID, col.Status, expected).
		UpdateColumn("generation", gorm.Expr("generation + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if expected != 0 {
		return ErrConflict
	}
	res = tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&goal.BoardColumn{BoardID: col.BoardID, Status: col.Status, Generation: 1})
	return affected(res, ErrConflict)
}

// ─── Snapshots ───────────────────────────────────────────────────────────────

func (s *GormStore) AppendSnapshot(ctx context.Context, sn *goal.ProgressSnapshot) error {
	if sn.ID == uuid.Nil {
		sn.ID = uuid.New()
	}
	if sn.RecordedAt.IsZero() {
		sn.RecordedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(sn).Error
}

func (s *GormStore) ListSnapshots(ctx context.Context, entityType goal.EntityType, entityID uuid.UUID, since time.Time) ([]goal.ProgressSnapshot, error) {
	return list[goal.ProgressSnapshot](ctx, s.db, "recorded_at",
		"entity_id = ? AND entity_type = ? AND recorded_at >= ?", entityID, entityType, since)
}

// ─── Patch ───────────────────────────────────────────────────────────────────

func modelFor(kind Kind) any {
	switch kind {
	case KindAmbition:
		return &goal.Ambition{}
	case KindKeyResult:
		return &goal.KeyResult{}
	case KindObjective:
		return &goal.QuarterlyObjective{}
	case KindQuarterlyKeyResult:
		return &goal.QuarterlyKeyResult{}
	default:
		return &goal.Action{}
	}
}

func (s *GormStore) Patch(ctx context.Context, kind Kind, id uuid.UUID, fields map[string]any) error {
	if err := checkPatch(kind, fields); err != nil {
		return err
	}
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now().UTC()

	res := s.db.WithContext(ctx).Model(modelFor(kind)).Where("id = ?", id).UpdateColumns(updates)
	return affected(res, ErrNotFound)
}
