package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Progress statuses. A row is created locked, promoted to active when a
// slot opens, and finishes completed. Nothing ever leaves completed.
const (
	ProgressLocked    = "locked"
	ProgressActive    = "active"
	ProgressCompleted = "completed"
)

type ChallengeProgress struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_challenge_objective,unique" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ChallengeID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_challenge_objective,unique" json:"challenge_id"`
	Challenge       *Challenge     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChallengeID;references:ID" json:"challenge,omitempty"`
	ObjectiveItemID uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_challenge_objective,unique" json:"objective_item_id"`
	ObjectiveItem   *ObjectiveItem `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObjectiveItemID;references:ID" json:"objective_item,omitempty"`
	Status          string         `gorm:"column:status;not null;default:'locked'" json:"status"`
	StartedAt       *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	Deadline        *time.Time     `gorm:"column:deadline" json:"deadline,omitempty"`
	CompletedAt     *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChallengeProgress) TableName() string { return "challenge_progress" }
