package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mentorbridge/mentorbridge-backend/internal/logger"
	"github.com/mentorbridge/mentorbridge-backend/internal/repos"
	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// CatalogService is the read-only view of challenges and objectives the
// rest of the app renders from.
type CatalogService interface {
	GetChallenge(ctx context.Context, id uuid.UUID) (*types.Challenge, error)
	ListChallenges(ctx context.Context) ([]*types.Challenge, error)
	ListObjectives(ctx context.Context) ([]*types.ObjectiveItem, error)
	LinksForObjective(ctx context.Context, objectiveItemID uuid.UUID) ([]*types.ChallengeLink, error)
}

type catalogService struct {
	db            *gorm.DB
	log           *logger.Logger
	challengeRepo repos.ChallengeRepo
	objectiveRepo repos.ObjectiveItemRepo
	linkRepo      repos.ChallengeLinkRepo
}

func NewCatalogService(
	db *gorm.DB,
	baseLog *logger.Logger,
	challengeRepo repos.ChallengeRepo,
	objectiveRepo repos.ObjectiveItemRepo,
	linkRepo repos.ChallengeLinkRepo,
) CatalogService {
	return &catalogService{
		db:            db,
		log:           baseLog.With("service", "CatalogService"),
		challengeRepo: challengeRepo,
		objectiveRepo: objectiveRepo,
		linkRepo:      linkRepo,
	}
}

func (s *catalogService) GetChallenge(ctx context.Context, id uuid.UUID) (*types.Challenge, error) {
	challenges, err := s.challengeRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, MapStoreError(err)
	}
	if len(challenges) == 0 || challenges[0] == nil {
		return nil, ErrNotFound
	}
	return challenges[0], nil
}

func (s *catalogService) ListChallenges(ctx context.Context) ([]*types.Challenge, error) {
	challenges, err := s.challengeRepo.List(ctx, nil)
	if err != nil {
		return nil, MapStoreError(err)
	}
	return challenges, nil
}

func (s *catalogService) ListObjectives(ctx context.Context) ([]*types.ObjectiveItem, error) {
	items, err := s.objectiveRepo.List(ctx, nil)
	if err != nil {
		return nil, MapStoreError(err)
	}
	return items, nil
}

func (s *catalogService) LinksForObjective(ctx context.Context, objectiveItemID uuid.UUID) ([]*types.ChallengeLink, error) {
	links, err := s.linkRepo.GetByObjectiveItemID(ctx, nil, objectiveItemID)
	if err != nil {
		return nil, MapStoreError(err)
	}
	return links, nil
}
