package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

type seedChallengeRepo struct {
	rows []*types.Challenge
}

func (f *seedChallengeRepo) GetByIDs(_ context.Context, _ *gorm.DB, _ []uuid.UUID) ([]*types.Challenge, error) {
	return nil, nil
}
func (f *seedChallengeRepo) List(_ context.Context, _ *gorm.DB) ([]*types.Challenge, error) {
	return f.rows, nil
}
func (f *seedChallengeRepo) Upsert(_ context.Context, _ *gorm.DB, rows []*types.Challenge) error {
	f.rows = append(f.rows, rows...)
	return nil
}

type seedObjectiveRepo struct {
	byKey map[string]*types.ObjectiveItem
}

func (f *seedObjectiveRepo) GetByIDs(_ context.Context, _ *gorm.DB, _ []uuid.UUID) ([]*types.ObjectiveItem, error) {
	return nil, nil
}
func (f *seedObjectiveRepo) GetByKey(_ context.Context, _ *gorm.DB, key string) (*types.ObjectiveItem, error) {
	if it, ok := f.byKey[key]; ok {
		return it, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *seedObjectiveRepo) List(_ context.Context, _ *gorm.DB) ([]*types.ObjectiveItem, error) {
	return nil, nil
}
func (f *seedObjectiveRepo) Upsert(_ context.Context, _ *gorm.DB, rows []*types.ObjectiveItem) error {
	for _, r := range rows {
		if existing, ok := f.byKey[r.ObjectiveKey]; ok {
			existing.ActiveSlots = r.ActiveSlots
			continue
		}
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		f.byKey[r.ObjectiveKey] = r
	}
	return nil
}

type seedLinkRepo struct {
	rows []*types.ChallengeLink
}

func (f *seedLinkRepo) GetByObjectiveItemID(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.ChallengeLink, error) {
	return nil, nil
}
func (f *seedLinkRepo) GetByObjectiveItemIDs(_ context.Context, _ *gorm.DB, _ []uuid.UUID) ([]*types.ChallengeLink, error) {
	return nil, nil
}
func (f *seedLinkRepo) List(_ context.Context, _ *gorm.DB) ([]*types.ChallengeLink, error) {
	return f.rows, nil
}
func (f *seedLinkRepo) Upsert(_ context.Context, _ *gorm.DB, rows []*types.ChallengeLink) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func newTestLoader(t *testing.T) (*Loader, *seedChallengeRepo, *seedObjectiveRepo, *seedLinkRepo) {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	challenges := &seedChallengeRepo{}
	objectives := &seedObjectiveRepo{byKey: make(map[string]*types.ObjectiveItem)}
	links := &seedLinkRepo{}
	return NewLoader(nil, log, challenges, objectives, links), challenges, objectives, links
}

const sampleSeed = `
challenges:
  - id: "11111111-1111-1111-1111-111111111111"
    track: backend
    difficulty: intermediate
    duration:
      value: 30
      unit: minutes
    checklist:
      - "read the brief"
      - "ship the endpoint"
  - id: "22222222-2222-2222-2222-222222222222"
    track: backend
    difficulty: advanced
    duration:
      value: 2
      unit: days
    is_bonus: true
objectives:
  - key: backend-fundamentals
    active_slots: 1
    links:
      - challenge_id: "11111111-1111-1111-1111-111111111111"
        order_index: 0
        is_initial_active: true
      - challenge_id: "22222222-2222-2222-2222-222222222222"
        order_index: 1
        predecessor_challenge_id: "11111111-1111-1111-1111-111111111111"
`

func writeSeedFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	return path
}

func TestLoadFileAppliesCatalog(t *testing.T) {
	loader, challenges, objectives, links := newTestLoader(t)

	if err := loader.LoadFile(context.Background(), writeSeedFile(t, sampleSeed)); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if len(challenges.rows) != 2 {
		t.Fatalf("challenges: want=2 got=%d", len(challenges.rows))
	}
	first := challenges.rows[0]
	if first.DurationValue != 30 || first.DurationUnit != string(types.UnitMinutes) {
		t.Fatalf("first challenge duration: got %d %s", first.DurationValue, first.DurationUnit)
	}
	if first.Checklist == nil {
		t.Fatalf("checklist not marshaled")
	}

	item, ok := objectives.byKey["backend-fundamentals"]
	if !ok {
		t.Fatalf("objective not seeded")
	}
	if item.ActiveSlots != 1 {
		t.Fatalf("active_slots: want=1 got=%d", item.ActiveSlots)
	}

	if len(links.rows) != 2 {
		t.Fatalf("links: want=2 got=%d", len(links.rows))
	}
	for _, l := range links.rows {
		if l.ObjectiveItemID != item.ID {
			t.Fatalf("link points at %s, objective is %s", l.ObjectiveItemID, item.ID)
		}
	}
	if links.rows[1].PredecessorChallengeID == nil {
		t.Fatalf("predecessor not parsed")
	}
	if !links.rows[0].IsInitialActive || links.rows[1].IsInitialActive {
		t.Fatalf("is_initial_active flags lost: %v %v", links.rows[0].IsInitialActive, links.rows[1].IsInitialActive)
	}
}

func TestLoadFileRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "bad challenge id",
			body: "challenges:\n  - id: not-a-uuid\n",
		},
		{
			name: "empty objective key",
			body: "objectives:\n  - active_slots: 1\n",
		},
		{
			name: "bad link challenge id",
			body: "objectives:\n  - key: k\n    links:\n      - challenge_id: nope\n",
		},
		{
			name: "not yaml",
			body: "{{{",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _, _, _ := newTestLoader(t)
			if err := loader.LoadFile(context.Background(), writeSeedFile(t, tt.body)); err == nil {
				t.Fatalf("LoadFile accepted bad input")
			}
		})
	}
}

func TestApplyDefaultsActiveSlots(t *testing.T) {
	loader, _, objectives, _ := newTestLoader(t)
	file := &File{Objectives: []ObjectiveSeed{{Key: "k"}}}
	if err := loader.Apply(context.Background(), file); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := objectives.byKey["k"].ActiveSlots; got != 1 {
		t.Fatalf("defaulted active_slots: want=1 got=%d", got)
	}
}
