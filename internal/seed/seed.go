package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/repos"
	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// File is the YAML shape admins author for a catalog bootstrap: the
// challenge catalog plus each objective's ordered link chain.
type File struct {
	Challenges []ChallengeSeed `yaml:"challenges"`
	Objectives []ObjectiveSeed `yaml:"objectives"`
}

type ChallengeSeed struct {
	ID         string       `yaml:"id"`
	Track      string       `yaml:"track"`
	Difficulty string       `yaml:"difficulty"`
	Duration   DurationSeed `yaml:"duration"`
	Checklist  []string     `yaml:"checklist"`
	IsBonus    bool         `yaml:"is_bonus"`
}

type DurationSeed struct {
	Value int    `yaml:"value"`
	Unit  string `yaml:"unit"`
}

type ObjectiveSeed struct {
	ID          string     `yaml:"id"`
	Key         string     `yaml:"key"`
	ActiveSlots int        `yaml:"active_slots"`
	Links       []LinkSeed `yaml:"links"`
}

type LinkSeed struct {
	ChallengeID            string `yaml:"challenge_id"`
	OrderIndex             int    `yaml:"order_index"`
	IsInitialActive        bool   `yaml:"is_initial_active"`
	PredecessorChallengeID string `yaml:"predecessor_challenge_id"`
}

type Loader struct {
	db            *gorm.DB
	log           *logger.Logger
	challengeRepo repos.ChallengeRepo
	objectiveRepo repos.ObjectiveItemRepo
	linkRepo      repos.ChallengeLinkRepo
}

func NewLoader(
	db *gorm.DB,
	baseLog *logger.Logger,
	challengeRepo repos.ChallengeRepo,
	objectiveRepo repos.ObjectiveItemRepo,
	linkRepo repos.ChallengeLinkRepo,
) *Loader {
	return &Loader{
		db:            db,
		log:           baseLog.With("service", "SeedLoader"),
		challengeRepo: challengeRepo,
		objectiveRepo: objectiveRepo,
		linkRepo:      linkRepo,
	}
}

// LoadFile parses and applies a YAML seed. Applying the same file twice is
// a no-op beyond timestamp churn; everything upserts on stable keys.
func (l *Loader) LoadFile(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	return l.Apply(ctx, &file)
}

func (l *Loader) Apply(ctx context.Context, file *File) error {
	return l.run(ctx, func(tx *gorm.DB) error {
		challenges := make([]*types.Challenge, 0, len(file.Challenges))
		for _, c := range file.Challenges {
			id, err := uuid.Parse(c.ID)
			if err != nil {
				return fmt.Errorf("challenge %q: bad id: %w", c.ID, err)
			}
			checklist, err := json.Marshal(c.Checklist)
			if err != nil {
				return fmt.Errorf("challenge %q: checklist: %w", c.ID, err)
			}
			challenges = append(challenges, &types.Challenge{
				ID:            id,
				Track:         c.Track,
				Difficulty:    c.Difficulty,
				DurationValue: c.Duration.Value,
				DurationUnit:  string(types.ParseDurationUnit(c.Duration.Unit)),
				Checklist:     checklist,
				IsBonus:       c.IsBonus,
			})
		}
		if err := l.challengeRepo.Upsert(ctx, tx, challenges); err != nil {
			return fmt.Errorf("seed challenges: %w", err)
		}

		for _, o := range file.Objectives {
			if o.Key == "" {
				return fmt.Errorf("objective with empty key")
			}
			item := &types.ObjectiveItem{
				ObjectiveKey: o.Key,
				ActiveSlots:  o.ActiveSlots,
			}
			if o.ID != "" {
				id, err := uuid.Parse(o.ID)
				if err != nil {
					return fmt.Errorf("objective %q: bad id: %w", o.Key, err)
				}
				item.ID = id
			}
			if item.ActiveSlots < 1 {
				item.ActiveSlots = 1
			}
			if err := l.objectiveRepo.Upsert(ctx, tx, []*types.ObjectiveItem{item}); err != nil {
				return fmt.Errorf("seed objective %q: %w", o.Key, err)
			}
			stored, err := l.objectiveRepo.GetByKey(ctx, tx, o.Key)
			if err != nil {
				return fmt.Errorf("seed objective %q: reload: %w", o.Key, err)
			}

			links := make([]*types.ChallengeLink, 0, len(o.Links))
			for _, ln := range o.Links {
				challengeID, err := uuid.Parse(ln.ChallengeID)
				if err != nil {
					return fmt.Errorf("objective %q: link bad challenge id %q: %w", o.Key, ln.ChallengeID, err)
				}
				link := &types.ChallengeLink{
					ObjectiveItemID: stored.ID,
					ChallengeID:     challengeID,
					OrderIndex:      ln.OrderIndex,
					IsInitialActive: ln.IsInitialActive,
				}
				if ln.PredecessorChallengeID != "" {
					predID, err := uuid.Parse(ln.PredecessorChallengeID)
					if err != nil {
						return fmt.Errorf("objective %q: link bad predecessor id %q: %w", o.Key, ln.PredecessorChallengeID, err)
					}
					link.PredecessorChallengeID = &predID
				}
				links = append(links, link)
			}
			if err := l.linkRepo.Upsert(ctx, tx, links); err != nil {
				return fmt.Errorf("seed links for %q: %w", o.Key, err)
			}
		}

		l.log.Info("seed applied", "challenges", len(file.Challenges), "objectives", len(file.Objectives))
		return nil
	})
}

func (l *Loader) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if l.db == nil {
		return fn(nil)
	}
	return l.db.WithContext(ctx).Transaction(fn)
}
