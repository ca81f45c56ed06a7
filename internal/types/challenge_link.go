package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeLink ties a challenge into an objective's chain. Links are
// authored by admins and read-only from the progression engine's side.
type ChallengeLink struct {
	ID                     uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ObjectiveItemID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_objective_challenge,unique" json:"objective_item_id"`
	ObjectiveItem          *ObjectiveItem `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObjectiveItemID;references:ID" json:"objective_item,omitempty"`
	ChallengeID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_objective_challenge,unique" json:"challenge_id"`
	Challenge              *Challenge     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChallengeID;references:ID" json:"challenge,omitempty"`
	OrderIndex             int            `gorm:"column:order_index;not null;default:0" json:"order_index"`
	IsInitialActive        bool           `gorm:"column:is_initial_active;not null;default:false" json:"is_initial_active"`
	PredecessorChallengeID *uuid.UUID     `gorm:"type:uuid;column:predecessor_challenge_id" json:"predecessor_challenge_id,omitempty"`
	CreatedAt              time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt              time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChallengeLink) TableName() string { return "challenge_links" }
