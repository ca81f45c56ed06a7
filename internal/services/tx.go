package services

import (
	"context"

	"gorm.io/gorm"
)

// runInTx wraps a multi-row pass in one transaction so its writes land as a
// single coherent batch. A nil db runs the body directly, which lets unit
// tests drive services with fake repos and no database.
func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
