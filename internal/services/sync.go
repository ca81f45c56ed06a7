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

// SyncService owns the Initialize/Reconcile/Recover dispatch for an
// objective and serializes those passes per (user, objective). Complete and
// Restart stay on ProgressionService: they are single-row updates, not
// read-modify-write passes over the whole objective.
type SyncService interface {
	SelectObjective(ctx context.Context, objectiveItemID uuid.UUID) ([]*types.ChallengeProgress, error)
	Reconcile(ctx context.Context, objectiveItemID uuid.UUID) error
	Recover(ctx context.Context, objectiveItemID uuid.UUID) error
}

type syncService struct {
	db            *gorm.DB
	log           *logger.Logger
	challengeRepo repos.ChallengeRepo
	linkRepo      repos.ChallengeLinkRepo
	objectiveRepo repos.ObjectiveItemRepo
	progressRepo  repos.ChallengeProgressRepo
	progression   ProgressionService
	cache         ProgressInvalidator
	guard         *inflightGuard
	now           func() time.Time
}

func NewSyncService(
	db *gorm.DB,
	baseLog *logger.Logger,
	challengeRepo repos.ChallengeRepo,
	linkRepo repos.ChallengeLinkRepo,
	objectiveRepo repos.ObjectiveItemRepo,
	progressRepo repos.ChallengeProgressRepo,
	progression ProgressionService,
	cache ProgressInvalidator,
) SyncService {
	return &syncService{
		db:            db,
		log:           baseLog.With("service", "SyncService"),
		challengeRepo: challengeRepo,
		linkRepo:      linkRepo,
		objectiveRepo: objectiveRepo,
		progressRepo:  progressRepo,
		progression:   progression,
		cache:         cache,
		guard:         newInflightGuard(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SelectObjective runs DecideAction against fresh reads and executes the
// chosen pass, returning the row set the caller should render.
func (s *syncService) SelectObjective(ctx context.Context, objectiveItemID uuid.UUID) ([]*types.ChallengeProgress, error) {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if objectiveItemID == uuid.Nil {
		return nil, ErrNotFound
	}

	if !s.guard.begin(userID, objectiveItemID) {
		return nil, ErrSyncInFlight
	}
	defer s.guard.end(userID, objectiveItemID)

	links, err := s.linkRepo.GetByObjectiveItemID(ctx, nil, objectiveItemID)
	if err != nil {
		return nil, MapStoreError(err)
	}
	progress, err := s.progressRepo.GetByUserAndObjectiveIDs(ctx, nil, userID, []uuid.UUID{objectiveItemID})
	if err != nil {
		return nil, MapStoreError(err)
	}

	switch DecideAction(links, progress) {
	case ActionInitialize:
		if _, err := s.progression.Initialize(ctx, nil, objectiveItemID); err != nil {
			return nil, err
		}
	case ActionReconcile:
		if err := s.reconcileLocked(ctx, userID, objectiveItemID); err != nil {
			return nil, err
		}
	case ActionRecover:
		if err := s.recoverLocked(ctx, userID, objectiveItemID); err != nil {
			return nil, err
		}
	}

	rows, err := s.progressRepo.GetByUserAndObjectiveIDs(ctx, nil, userID, []uuid.UUID{objectiveItemID})
	if err != nil {
		return nil, MapStoreError(err)
	}
	return SortByChain(rows, links), nil
}

// Reconcile repairs drift between the link graph and the progress store for
// one objective.
func (s *syncService) Reconcile(ctx context.Context, objectiveItemID uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if !s.guard.begin(userID, objectiveItemID) {
		return ErrSyncInFlight
	}
	defer s.guard.end(userID, objectiveItemID)
	return s.reconcileLocked(ctx, userID, objectiveItemID)
}

// reconcileLocked runs one reconciliation pass. The caller must hold the
// in-flight guard. Orphans are deleted before missing rows are created so
// a challenge removed and re-added in one admin edit cannot collide on the
// unique triple.
func (s *syncService) reconcileLocked(ctx context.Context, userID, objectiveItemID uuid.UUID) error {
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		links, err := s.linkRepo.GetByObjectiveItemID(ctx, tx, objectiveItemID)
		if err != nil {
			return MapStoreError(err)
		}
		progress, err := s.progressRepo.GetByUserAndObjectiveIDs(ctx, tx, userID, []uuid.UUID{objectiveItemID})
		if err != nil {
			return MapStoreError(err)
		}

		linked := make(map[uuid.UUID]*types.ChallengeLink, len(links))
		for _, l := range links {
			linked[l.ChallengeID] = l
		}
		tracked := make(map[uuid.UUID]*types.ChallengeProgress, len(progress))
		var orphanIDs []uuid.UUID
		activeCount := 0
		for _, p := range progress {
			tracked[p.ChallengeID] = p
			if _, ok := linked[p.ChallengeID]; !ok {
				orphanIDs = append(orphanIDs, p.ID)
				continue
			}
			if p.Status == types.ProgressActive {
				activeCount++
			}
		}

		if len(orphanIDs) > 0 {
			if err := s.progressRepo.DeleteByIDs(ctx, tx, orphanIDs); err != nil {
				return MapStoreError(err)
			}
			s.log.Info("reconcile: deleted orphaned progress", "count", len(orphanIDs), "objective_item_id", objectiveItemID, "user_id", userID)
		}

		var missing []*types.ChallengeLink
		anyInitialActive := false
		for _, l := range links {
			if l.IsInitialActive {
				anyInitialActive = true
			}
			if _, ok := tracked[l.ChallengeID]; !ok {
				missing = append(missing, l)
			}
		}
		if len(missing) == 0 {
			return nil
		}

		challenges, err := s.catalogFor(ctx, tx, missing)
		if err != nil {
			return err
		}

		// A new row starts active only when the graph declares initial
		// actives, nothing is active right now, and this link is flagged.
		// Activating next to an existing active row would silently exceed
		// the slot budget.
		now := s.now()
		rows := make([]*types.ChallengeProgress, 0, len(missing))
		for _, l := range missing {
			row := &types.ChallengeProgress{
				UserID:          userID,
				ChallengeID:     l.ChallengeID,
				ObjectiveItemID: objectiveItemID,
				Status:          types.ProgressLocked,
			}
			if anyInitialActive && activeCount == 0 && l.IsInitialActive {
				value, unit := durationFor(challenges, l.ChallengeID)
				deadline := timeutil.ComputeDeadline(value, unit, now)
				startedAt := now
				row.Status = types.ProgressActive
				row.StartedAt = &startedAt
				row.Deadline = &deadline
				activeCount++
			}
			rows = append(rows, row)
		}

		if err := s.progressRepo.Upsert(ctx, tx, rows); err != nil {
			return MapStoreError(err)
		}
		s.log.Info("reconcile: created missing progress", "count", len(rows), "objective_item_id", objectiveItemID, "user_id", userID)
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, userID, objectiveItemID)
	return nil
}

// Recover repairs an objective whose rows all sit locked with nothing
// active or completed, a state normal transitions cannot reach.
func (s *syncService) Recover(ctx context.Context, objectiveItemID uuid.UUID) error {
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if !s.guard.begin(userID, objectiveItemID) {
		return ErrSyncInFlight
	}
	defer s.guard.end(userID, objectiveItemID)
	return s.recoverLocked(ctx, userID, objectiveItemID)
}

func (s *syncService) recoverLocked(ctx context.Context, userID, objectiveItemID uuid.UUID) error {
	err := runInTx(ctx, s.db, func(tx *gorm.DB) error {
		progress, err := s.progressRepo.GetByUserAndObjectiveIDs(ctx, tx, userID, []uuid.UUID{objectiveItemID})
		if err != nil {
			return MapStoreError(err)
		}
		if len(progress) == 0 {
			return nil
		}
		for _, p := range progress {
			if p.Status == types.ProgressActive || p.Status == types.ProgressCompleted {
				// Something is already going; recovery is a no-op.
				return nil
			}
		}

		links, err := s.linkRepo.GetByObjectiveItemID(ctx, tx, objectiveItemID)
		if err != nil {
			return MapStoreError(err)
		}
		items, err := s.objectiveRepo.GetByIDs(ctx, tx, []uuid.UUID{objectiveItemID})
		if err != nil {
			return MapStoreError(err)
		}
		slots := 1
		if len(items) > 0 && items[0] != nil && items[0].ActiveSlots > 1 {
			slots = items[0].ActiveSlots
		}

		byChallenge := make(map[uuid.UUID]*types.ChallengeProgress, len(progress))
		for _, p := range progress {
			byChallenge[p.ChallengeID] = p
		}

		chosen := pickInitialActive(links, slots)
		challenges, err := s.catalogFor(ctx, tx, links)
		if err != nil {
			return err
		}

		now := s.now()
		activated := 0
		for _, l := range links {
			if activated >= slots {
				break
			}
			if !chosen[l.ChallengeID] {
				continue
			}
			p, ok := byChallenge[l.ChallengeID]
			if !ok {
				continue
			}
			value, unit := durationFor(challenges, l.ChallengeID)
			deadline := timeutil.ComputeDeadline(value, unit, now)
			if err := s.progressRepo.UpdateStatus(ctx, tx, p.ID, types.ProgressLocked, types.ProgressActive, &now, &deadline, nil); err != nil {
				return MapStoreError(err)
			}
			activated++
		}
		if activated > 0 {
			s.log.Info("recover: reactivated stuck objective", "count", activated, "objective_item_id", objectiveItemID, "user_id", userID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, userID, objectiveItemID)
	return nil
}

func (s *syncService) catalogFor(ctx context.Context, tx *gorm.DB, links []*types.ChallengeLink) (map[uuid.UUID]*types.Challenge, error) {
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

func (s *syncService) invalidate(ctx context.Context, userID uuid.UUID, objectiveItemIDs ...uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID, objectiveItemIDs...); err != nil {
		s.log.Warn("cache invalidation failed", "error", err, "user_id", userID)
	}
}
