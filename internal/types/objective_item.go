package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ObjectiveItem struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ObjectiveKey string         `gorm:"column:objective_key;not null;uniqueIndex" json:"objective_key"`
	ActiveSlots  int            `gorm:"column:active_slots;not null;default:1" json:"active_slots"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ObjectiveItem) TableName() string { return "objective_items" }
