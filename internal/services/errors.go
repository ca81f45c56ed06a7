package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated indicates no user is attached to the context.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotFound indicates a referenced row does not exist or is not in
	// the state the operation requires.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable indicates the underlying persistence call failed.
	// It is propagated, never retried here: retrying a multi-step pass
	// without re-reading fresh state could overshoot the active-slot bound.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSyncInFlight indicates a reconciliation pass for the same
	// objective is already running; the trigger should be dropped.
	ErrSyncInFlight = errors.New("sync already in flight")
)

// MapStoreError folds persistence failures into the service taxonomy.
// Duplicate-key conflicts are not surfaced: an idempotent upsert finding
// the row already present is success for every caller.
func MapStoreError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrSyncInFlight):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errors.Join(ErrStoreUnavailable, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already exists"):
		return nil
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "connection"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "temporar"):
		return errors.Join(ErrStoreUnavailable, err)
	default:
		return errors.Join(ErrStoreUnavailable, err)
	}
}
