package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/repos"
	"github.com/mentorbridge/mentorbridge-backend/internal/requestdata"
	"github.com/mentorbridge/mentorbridge-backend/internal/timeutil"
	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// ProgressInvalidator drops any cached progress read for the touched
// (user, objective) scopes after a mutating pass.
type ProgressInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID, objectiveItemIDs ...uuid.UUID) error
}

type ProgressionService interface {
	Initialize(ctx context.Context, tx *gorm.DB, objectiveItemID uuid.UUID) ([]*types.ChallengeProgress, error)
	Complete(ctx context.Context, progressID uuid.UUID) error
	Restart(ctx context.Context, progressID uuid.UUID) error
	ClearObjective(ctx context.Context, objectiveItemID uuid.UUID) error
	ProgressForObjective(ctx context.Context, objectiveItemID uuid.UUID) ([]*types.ChallengeProgress, error)
}

type progressionService struct {
	db            *gorm.DB
	log           *logger.Logger
	challengeRepo repos.ChallengeRepo
	linkRepo      repos.ChallengeLinkRepo
	objectiveRepo repos.ObjectiveItemRepo
	progressRepo  repos.ChallengeProgressRepo
	cache         ProgressInvalidator
	now           func() time.Time
}

func NewProgressionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	challengeRepo repos.ChallengeRepo,
	linkRepo repos.ChallengeLinkRepo,
	objectiveRepo repos.ObjectiveItemRepo,
	progressRepo repos.ChallengeProgressRepo,
	cache ProgressInvalidator,
) ProgressionService {
	return &progressionService{
		db:            db,
		log:           baseLog.With("service", "ProgressionService"),
		challengeRepo: challengeRepo,
		linkRepo:      linkRepo,
		objectiveRepo: objectiveRepo,
		progressRepo:  progressRepo,
		cache:         cache,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// activeSlotsFor loads the objective's slot budget; anything below 1 is
// treated as 1.
func (s *progressionService) activeSlotsFor(ctx context.Context, tx *gorm.DB, objectiveItemID uuid.UUID) (int, error) {
	items, err := s.objectiveRepo.GetByIDs(ctx, tx, []uuid.UUID{objectiveItemID})
	if err != nil {
		return 0, MapStoreError(err)
	}
	if len(items) == 0 || items[0] == nil {
		return 0, ErrNotFound
	}
	slots := items[0].ActiveSlots
	if slots < 1 {
		slots = 1
	}
	return slots, nil
}

// durationFor resolves a challenge's estimated duration from the catalog.
// Missing challenges and zero durations fall back to the engine default
// inside timeutil.ComputeDeadline.
func durationFor(challenges map[uuid.UUID]*types.Challenge, id uuid.UUID) (int, types.DurationUnit) {
	ch, ok := challenges[id]
	if !ok || ch == nil {
		return 0, types.UnitMinutes
	}
	return ch.DurationValue, types.ParseDurationUnit(ch.DurationUnit)
}

func (s *progressionService) catalogFor(ctx context.Context, tx *gorm.DB, links []*types.ChallengeLink) (map[uuid.UUID]*types.Challenge, error) {
	ids := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ChallengeID)
	}
	challenges, err := s.challengeRepo.GetByIDs(ctx, tx, ids)
	if err != nil {
		return nil, MapStoreError(err)
	}
	byID := make(map[uuid.UUID]*types.Challenge, len(challenges))
	for _, ch := range challenges {
		byID[ch.ID] = ch
	}
	return byID, nil
}

// pickInitialActive chooses which links start active. Links flagged
// is_initial_active win; with no flags the first slots links by order_index
// start. Input is already ordered by order_index.
func pickInitialActive(links []*types.ChallengeLink, slots int) map[uuid.UUID]bool {
	chosen := make(map[uuid.UUID]bool, slots)
	for _, l := range links {
		if l.IsInitialActive && len(chosen) < slots {
			chosen[l.ChallengeID] = true
		}
	}
	if len(chosen) > 0 {
		return chosen
	}
	for _, l := range links {
		if len(chosen) >= slots {
			break
		}
		chosen[l.ChallengeID] = true
	}
	return chosen
}

// Initialize creates one progress row per linked challenge, activating up
// to the objective's slot budget. It upserts on the unique
// (user, challenge, objective) triple, so a repeated call leaves the first
// run's rows untouched.
func (s *progressionService) Initialize(ctx context.Context, tx *gorm.DB, objectiveItemID uuid.UUID) ([]*types.ChallengeProgress, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if objectiveItemID == uuid.Nil {
		return nil, ErrNotFound
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	links, err := s.linkRepo.GetByObjectiveItemID(ctx, transaction, objectiveItemID)
	if err != nil {
		return nil, MapStoreError(err)
	}
	if len(links) == 0 {
		return []*types.ChallengeProgress{}, nil
	}

	slots, err := s.activeSlotsFor(ctx, transaction, objectiveItemID)
	if err != nil {
		return nil, err
	}
	challenges, err := s.catalogFor(ctx, transaction, links)
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := pickInitialActive(links, slots)
	rows := make([]*types.ChallengeProgress, 0, len(links))
	for _, l := range links {
		row := &types.ChallengeProgress{
			UserID:          userID,
			ChallengeID:     l.ChallengeID,
			ObjectiveItemID: objectiveItemID,
			Status:          types.ProgressLocked,
		}
		if active[l.ChallengeID] {
			value, unit := durationFor(challenges, l.ChallengeID)
			deadline := timeutil.ComputeDeadline(value, unit, now)
			startedAt := now
			row.Status = types.ProgressActive
			row.StartedAt = &startedAt
			row.Deadline = &deadline
		}
		rows = append(rows, row)
	}

	if err := s.progressRepo.Upsert(ctx, transaction, rows); err != nil {
		s.log.Warn("Initialize: upsert failed", "error", err, "objective_item_id", objectiveItemID, "user_id", userID)
		return nil, MapStoreError(err)
	}
	s.invalidate(ctx, userID, objectiveItemID)

	fresh, err := s.progressRepo.GetByUserAndObjectiveIDs(ctx, transaction, userID, []uuid.UUID{objectiveItemID})
	if err != nil {
		return nil, MapStoreError(err)
	}
	return SortByChain(fresh, links), nil
}

// Complete marks an active row completed and promotes exactly one locked
// row, the one whose link carries the lowest order_index. One slot was just
// freed, so promoting one keeps the slot bound intact.
func (s *progressionService) Complete(ctx context.Context, progressID uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}

	var objectiveItemID uuid.UUID
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		rows, err := s.progressRepo.GetByIDs(ctx, tx, []uuid.UUID{progressID})
		if err != nil {
			return MapStoreError(err)
		}
		if len(rows) == 0 || rows[0] == nil || rows[0].UserID != userID {
			return ErrNotFound
		}
		row := rows[0]
		if row.Status != types.ProgressActive {
			// Re-invoking on an already-completed row lands here; the
			// caller may retry safely, completion has no effect twice.
			return ErrNotFound
		}
		objectiveItemID = row.ObjectiveItemID

		// Compare-and-set against active: if a concurrent Complete got
		// there first, nothing matches and this request surfaces NotFound
		// instead of promoting a second row.
		now := s.now()
		if err := s.progressRepo.UpdateStatus(ctx, tx, row.ID, types.ProgressActive, types.ProgressCompleted, row.StartedAt, row.Deadline, &now); err != nil {
			return MapStoreError(err)
		}

		siblings, err := s.progressRepo.GetByUserAndObjectiveIDs(ctx, tx, userID, []uuid.UUID{row.ObjectiveItemID})
		if err != nil {
			return MapStoreError(err)
		}
		locked := make(map[uuid.UUID]*types.ChallengeProgress)
		for _, p := range siblings {
			if p.Status == types.ProgressLocked {
				locked[p.ChallengeID] = p
			}
		}
		if len(locked) == 0 {
			return nil
		}

		links, err := s.linkRepo.GetByObjectiveItemID(ctx, tx, row.ObjectiveItemID)
		if err != nil {
			return MapStoreError(err)
		}
		// Links arrive ordered by order_index; the first locked match is
		// the next in line.
		var next *types.ChallengeProgress
		for _, l := range links {
			if p, ok := locked[l.ChallengeID]; ok {
				next = p
				break
			}
		}
		if next == nil {
			return nil
		}

		challenges, err := s.catalogFor(ctx, tx, links)
		if err != nil {
			return err
		}
		value, unit := durationFor(challenges, next.ChallengeID)
		deadline := timeutil.ComputeDeadline(value, unit, now)
		if err := s.progressRepo.UpdateStatus(ctx, tx, next.ID, types.ProgressLocked, types.ProgressActive, &now, &deadline, nil); err != nil {
			return MapStoreError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, userID, objectiveItemID)
	return nil
}

// Restart resets an active row's window without moving its chain position.
// Expiry is not enforced here; the canonical UI only offers restart once
// the countdown reports expired.
func (s *progressionService) Restart(ctx context.Context, progressID uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}

	var objectiveItemID uuid.UUID
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		rows, err := s.progressRepo.GetByIDs(ctx, tx, []uuid.UUID{progressID})
		if err != nil {
			return MapStoreError(err)
		}
		if len(rows) == 0 || rows[0] == nil || rows[0].UserID != userID {
			return ErrNotFound
		}
		row := rows[0]
		if row.Status != types.ProgressActive {
			return ErrNotFound
		}
		objectiveItemID = row.ObjectiveItemID

		challenges, err := s.challengeRepo.GetByIDs(ctx, tx, []uuid.UUID{row.ChallengeID})
		if err != nil {
			return MapStoreError(err)
		}
		byID := make(map[uuid.UUID]*types.Challenge, len(challenges))
		for _, ch := range challenges {
			byID[ch.ID] = ch
		}

		now := s.now()
		value, unit := durationFor(byID, row.ChallengeID)
		deadline := timeutil.ComputeDeadline(value, unit, now)
		return MapStoreError(s.progressRepo.UpdateStatus(ctx, tx, row.ID, types.ProgressActive, types.ProgressActive, &now, &deadline, nil))
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, userID, objectiveItemID)
	return nil
}

// ClearObjective is the explicit user action that drops every progress row
// for one objective.
func (s *progressionService) ClearObjective(ctx context.Context, objectiveItemID uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if objectiveItemID == uuid.Nil {
		return ErrNotFound
	}

	if err := s.progressRepo.DeleteByObjective(ctx, nil, userID, objectiveItemID); err != nil {
		return MapStoreError(err)
	}
	s.invalidate(ctx, userID, objectiveItemID)
	return nil
}

func (s *progressionService) ProgressForObjective(ctx context.Context, objectiveItemID uuid.UUID) ([]*types.ChallengeProgress, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	rows, err := s.progressRepo.GetByUserAndObjectiveIDs(ctx, nil, userID, []uuid.UUID{objectiveItemID})
	if err != nil {
		return nil, MapStoreError(err)
	}
	links, err := s.linkRepo.GetByObjectiveItemID(ctx, nil, objectiveItemID)
	if err != nil {
		return nil, MapStoreError(err)
	}
	return SortByChain(rows, links), nil
}

func (s *progressionService) invalidate(ctx context.Context, userID uuid.UUID, objectiveItemIDs ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID, objectiveItemIDs...); err != nil {
		s.log.Warn("cache invalidation failed", "error", err, "user_id", userID)
	}
}
