package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// ChallengeProgressRepo is the mutable progress store. The table carries a
// unique index on (user_id, challenge_id, objective_item_id); Upsert leans
// on it so repeated initialization passes cannot duplicate rows.
type ChallengeProgressRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ChallengeProgress, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ChallengeProgress, error)
	GetByUserAndObjectiveIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, objectiveItemIDs []uuid.UUID) ([]*types.ChallengeProgress, error)
	Upsert(ctx context.Context, tx *gorm.DB, rows []*types.ChallengeProgress) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromStatus, toStatus string, startedAt, deadline, completedAt *time.Time) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	DeleteByObjective(ctx context.Context, tx *gorm.DB, userID, objectiveItemID uuid.UUID) error
}

type challengeProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeProgressRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeProgressRepo {
	return &challengeProgressRepo{db: db, log: baseLog.With("repo", "ChallengeProgressRepo")}
}

func (r *challengeProgressRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.ChallengeProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeProgress
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

func (r *challengeProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ChallengeProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeProgress
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *challengeProgressRepo) GetByUserAndObjectiveIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, objectiveItemIDs []uuid.UUID) ([]*types.ChallengeProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeProgress
	if userID == uuid.Nil || len(objectiveItemIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND objective_item_id IN ?", userID, objectiveItemIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Upsert inserts rows and leaves already-present triples untouched. An
// existing row means a previous pass already decided its status; clobbering
// it here could demote active or completed work.
func (r *challengeProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, rows []*types.ChallengeProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}, {Name: "objective_item_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error; err != nil {
		return err
	}
	return nil
}

// UpdateStatus is a compare-and-set transition: the UPDATE matches only
// while the row still holds fromStatus. A concurrent writer that moved the
// row first leaves nothing to match, and the caller sees
// gorm.ErrRecordNotFound instead of re-applying a transition whose
// precondition no longer holds.
func (r *challengeProgressRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, fromStatus, toStatus string, startedAt, deadline, completedAt *time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if id == uuid.Nil {
		return gorm.ErrRecordNotFound
	}

	res := transaction.WithContext(ctx).
		Model(&types.ChallengeProgress{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":       toStatus,
			"started_at":   startedAt,
			"deadline":     deadline,
			"completed_at": completedAt,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByIDs removes rows for good. Deletion is unscoped: a soft-deleted
// row would still hold the unique triple and block re-insertion when an
// admin re-links the same challenge.
func (r *challengeProgressRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&types.ChallengeProgress{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *challengeProgressRepo) DeleteByObjective(ctx context.Context, tx *gorm.DB, userID, objectiveItemID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || objectiveItemID == uuid.Nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("user_id = ? AND objective_item_id = ?", userID, objectiveItemID).
		Delete(&types.ChallengeProgress{}).Error; err != nil {
		return err
	}
	return nil
}
