package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DurationUnit is the closed set of units a challenge duration may carry.
type DurationUnit string

const (
	UnitMinutes DurationUnit = "minutes"
	UnitHours   DurationUnit = "hours"
	UnitDays    DurationUnit = "days"
	UnitWeeks   DurationUnit = "weeks"
)

// ParseDurationUnit normalizes a stored unit string; anything unknown
// falls back to minutes.
func ParseDurationUnit(s string) DurationUnit {
	switch DurationUnit(s) {
	case UnitMinutes, UnitHours, UnitDays, UnitWeeks:
		return DurationUnit(s)
	default:
		return UnitMinutes
	}
}

type Challenge struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Track         string         `gorm:"column:track;not null;default:''" json:"track"`
	Difficulty    string         `gorm:"column:difficulty;not null;default:''" json:"difficulty"`
	DurationValue int            `gorm:"column:duration_value;not null;default:0" json:"duration_value"`
	DurationUnit  string         `gorm:"column:duration_unit;not null;default:'minutes'" json:"duration_unit"`
	Checklist     datatypes.JSON `gorm:"type:jsonb;column:checklist" json:"checklist"`
	IsBonus       bool           `gorm:"column:is_bonus;not null;default:false" json:"is_bonus"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Challenge) TableName() string { return "challenges" }
