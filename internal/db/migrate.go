package db

import (
	"gorm.io/gorm"

	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Identity
		// =========================
		&types.User{},

		// =========================
		// Challenge catalog + admin-authored link graph
		// =========================
		&types.Challenge{},
		&types.ObjectiveItem{},
		&types.ChallengeLink{},

		// =========================
		// Per-user progression state
		// =========================
		&types.ChallengeProgress{},
	)
}
