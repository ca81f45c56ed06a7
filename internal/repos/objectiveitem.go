package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

type ObjectiveItemRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ObjectiveItem, error)
	GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.ObjectiveItem, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.ObjectiveItem, error)
	Upsert(ctx context.Context, tx *gorm.DB, rows []*types.ObjectiveItem) error
}

type objectiveItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewObjectiveItemRepo(db *gorm.DB, baseLog *logger.Logger) ObjectiveItemRepo {
	return &objectiveItemRepo{db: db, log: baseLog.With("repo", "ObjectiveItemRepo")}
}

func (r *objectiveItemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ObjectiveItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObjectiveItem
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *objectiveItemRepo) GetByKey(ctx context.Context, tx *gorm.DB, key string) (*types.ObjectiveItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ObjectiveItem
	if err := transaction.WithContext(ctx).
		Where("objective_key = ?", key).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *objectiveItemRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ObjectiveItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ObjectiveItem
	if err := transaction.WithContext(ctx).
		Order("objective_key ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *objectiveItemRepo) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.ObjectiveItem) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "objective_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"active_slots", "updated_at"}),
		}).
		Create(&rows).Error; err != nil {
		return err
	}
	return nil
}
