package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// In-memory fakes for the repo collaborators. They ignore the tx argument;
// services under test run with a nil db.

type fakeChallengeRepo struct {
	challenges map[uuid.UUID]*types.Challenge
	err        error
}

func newFakeChallengeRepo() *fakeChallengeRepo {
	return &fakeChallengeRepo{challenges: make(map[uuid.UUID]*types.Challenge)}
}

func (f *fakeChallengeRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Challenge, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Challenge
	for _, id := range ids {
		if ch, ok := f.challenges[id]; ok {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeChallengeRepo) List(_ context.Context, _ *gorm.DB) ([]*types.Challenge, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.Challenge
	for _, ch := range f.challenges {
		out = append(out, ch)
	}
	return out, nil
}

func (f *fakeChallengeRepo) Upsert(_ context.Context, _ *gorm.DB, rows []*types.Challenge) error {
	if f.err != nil {
		return f.err
	}
	for _, r := range rows {
		f.challenges[r.ID] = r
	}
	return nil
}

type fakeLinkRepo struct {
	links map[uuid.UUID][]*types.ChallengeLink // by objective item id
	err   error
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[uuid.UUID][]*types.ChallengeLink)}
}

func (f *fakeLinkRepo) GetByObjectiveItemID(_ context.Context, _ *gorm.DB, objectiveItemID uuid.UUID) ([]*types.ChallengeLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*types.ChallengeLink, len(f.links[objectiveItemID]))
	copy(out, f.links[objectiveItemID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeLinkRepo) GetByObjectiveItemIDs(ctx context.Context, tx *gorm.DB, objectiveItemIDs []uuid.UUID) ([]*types.ChallengeLink, error) {
	var out []*types.ChallengeLink
	for _, id := range objectiveItemIDs {
		links, err := f.GetByObjectiveItemID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, links...)
	}
	return out, nil
}

func (f *fakeLinkRepo) List(_ context.Context, _ *gorm.DB) ([]*types.ChallengeLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ChallengeLink
	for _, links := range f.links {
		out = append(out, links...)
	}
	return out, nil
}

func (f *fakeLinkRepo) Upsert(_ context.Context, _ *gorm.DB, rows []*types.ChallengeLink) error {
	for _, r := range rows {
		f.links[r.ObjectiveItemID] = append(f.links[r.ObjectiveItemID], r)
	}
	return nil
}

type fakeObjectiveRepo struct {
	items map[uuid.UUID]*types.ObjectiveItem
	err   error
}

func newFakeObjectiveRepo() *fakeObjectiveRepo {
	return &fakeObjectiveRepo{items: make(map[uuid.UUID]*types.ObjectiveItem)}
}

func (f *fakeObjectiveRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.ObjectiveItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ObjectiveItem
	for _, id := range ids {
		if it, ok := f.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeObjectiveRepo) GetByKey(_ context.Context, _ *gorm.DB, key string) (*types.ObjectiveItem, error) {
	for _, it := range f.items {
		if it.ObjectiveKey == key {
			return it, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeObjectiveRepo) List(_ context.Context, _ *gorm.DB) ([]*types.ObjectiveItem, error) {
	var out []*types.ObjectiveItem
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeObjectiveRepo) Upsert(_ context.Context, _ *gorm.DB, rows []*types.ObjectiveItem) error {
	for _, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		f.items[r.ID] = r
	}
	return nil
}

type fakeProgressRepo struct {
	rows map[uuid.UUID]*types.ChallengeProgress
	err  error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{rows: make(map[uuid.UUID]*types.ChallengeProgress)}
}

func (f *fakeProgressRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.ChallengeProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ChallengeProgress
	for _, id := range ids {
		if r, ok := f.rows[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) GetByUserID(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.ChallengeProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*types.ChallengeProgress
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) GetByUserAndObjectiveIDs(_ context.Context, _ *gorm.DB, userID uuid.UUID, objectiveItemIDs []uuid.UUID) ([]*types.ChallengeProgress, error) {
	if f.err != nil {
		return nil, f.err
	}
	wanted := make(map[uuid.UUID]bool, len(objectiveItemIDs))
	for _, id := range objectiveItemIDs {
		wanted[id] = true
	}
	var out []*types.ChallengeProgress
	for _, r := range f.rows {
		if r.UserID == userID && wanted[r.ObjectiveItemID] {
			out = append(out, r)
		}
	}
	return out, nil
}

// Upsert mirrors the unique-triple conflict behavior: an existing
// (user, challenge, objective) row is left untouched.
func (f *fakeProgressRepo) Upsert(_ context.Context, _ *gorm.DB, rows []*types.ChallengeProgress) error {
	if f.err != nil {
		return f.err
	}
	for _, r := range rows {
		if f.lookup(r.UserID, r.ChallengeID, r.ObjectiveItemID) != nil {
			continue
		}
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		clone := *r
		f.rows[clone.ID] = &clone
	}
	return nil
}

// UpdateStatus matches only while the row still holds fromStatus, like the
// real repo's status-qualified UPDATE.
func (f *fakeProgressRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, fromStatus, toStatus string, startedAt, deadline, completedAt *time.Time) error {
	if f.err != nil {
		return f.err
	}
	r, ok := f.rows[id]
	if !ok || r.Status != fromStatus {
		return gorm.ErrRecordNotFound
	}
	r.Status = toStatus
	r.StartedAt = startedAt
	r.Deadline = deadline
	r.CompletedAt = completedAt
	return nil
}

func (f *fakeProgressRepo) DeleteByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	for _, id := range ids {
		delete(f.rows, id)
	}
	return nil
}

func (f *fakeProgressRepo) DeleteByObjective(_ context.Context, _ *gorm.DB, userID, objectiveItemID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	for id, r := range f.rows {
		if r.UserID == userID && r.ObjectiveItemID == objectiveItemID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeProgressRepo) lookup(userID, challengeID, objectiveItemID uuid.UUID) *types.ChallengeProgress {
	for _, r := range f.rows {
		if r.UserID == userID && r.ChallengeID == challengeID && r.ObjectiveItemID == objectiveItemID {
			return r
		}
	}
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(_ context.Context, _ uuid.UUID, _ ...uuid.UUID) error {
	f.calls++
	return nil
}
