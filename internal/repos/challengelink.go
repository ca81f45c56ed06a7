package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// ChallengeLinkRepo reads the admin-authored link graph. Results are always
// ordered by order_index; the engine treats that ordering as authoritative.
type ChallengeLinkRepo interface {
	GetByObjectiveItemID(ctx context.Context, tx *gorm.DB, objectiveItemID uuid.UUID) ([]*types.ChallengeLink, error)
	GetByObjectiveItemIDs(ctx context.Context, tx *gorm.DB, objectiveItemIDs []uuid.UUID) ([]*types.ChallengeLink, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.ChallengeLink, error)
	Upsert(ctx context.Context, tx *gorm.DB, rows []*types.ChallengeLink) error
}

type challengeLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeLinkRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeLinkRepo {
	return &challengeLinkRepo{db: db, log: baseLog.With("repo", "ChallengeLinkRepo")}
}

func (r *challengeLinkRepo) GetByObjectiveItemID(ctx context.Context, tx *gorm.DB, objectiveItemID uuid.UUID) ([]*types.ChallengeLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeLink
	if objectiveItemID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("objective_item_id = ?", objectiveItemID).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *challengeLinkRepo) GetByObjectiveItemIDs(ctx context.Context, tx *gorm.DB, objectiveItemIDs []uuid.UUID) ([]*types.ChallengeLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeLink
	if len(objectiveItemIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("objective_item_id IN ?", objectiveItemIDs).
		Order("objective_item_id ASC, order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *challengeLinkRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ChallengeLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeLink
	if err := transaction.WithContext(ctx).
		Order("objective_item_id ASC, order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *challengeLinkRepo) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.ChallengeLink) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "objective_item_id"}, {Name: "challenge_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"order_index", "is_initial_active", "predecessor_challenge_id", "updated_at"}),
		}).
		Create(&rows).Error; err != nil {
		return err
	}
	return nil
}
