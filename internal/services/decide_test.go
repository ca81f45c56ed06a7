package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

func TestDecideAction(t *testing.T) {
	objectiveID := uuid.New()
	userID := uuid.New()
	chA, chB := uuid.New(), uuid.New()

	link := func(chID uuid.UUID, order int) *types.ChallengeLink {
		return &types.ChallengeLink{ID: uuid.New(), ObjectiveItemID: objectiveID, ChallengeID: chID, OrderIndex: order}
	}
	row := func(chID uuid.UUID, status string) *types.ChallengeProgress {
		return &types.ChallengeProgress{ID: uuid.New(), UserID: userID, ChallengeID: chID, ObjectiveItemID: objectiveID, Status: status}
	}

	tests := []struct {
		name     string
		links    []*types.ChallengeLink
		progress []*types.ChallengeProgress
		want     Action
	}{
		{
			name: "no links no rows",
			want: ActionNoOp,
		},
		{
			name:  "links but no rows",
			links: []*types.ChallengeLink{link(chA, 0)},
			want:  ActionInitialize,
		},
		{
			name:     "rows but no links is an orphan sweep",
			progress: []*types.ChallengeProgress{row(chA, types.ProgressActive)},
			want:     ActionReconcile,
		},
		{
			name:     "orphaned row",
			links:    []*types.ChallengeLink{link(chA, 0)},
			progress: []*types.ChallengeProgress{row(chA, types.ProgressActive), row(chB, types.ProgressLocked)},
			want:     ActionReconcile,
		},
		{
			name:     "missing row",
			links:    []*types.ChallengeLink{link(chA, 0), link(chB, 1)},
			progress: []*types.ChallengeProgress{row(chA, types.ProgressActive)},
			want:     ActionReconcile,
		},
		{
			name:     "all rows locked",
			links:    []*types.ChallengeLink{link(chA, 0), link(chB, 1)},
			progress: []*types.ChallengeProgress{row(chA, types.ProgressLocked), row(chB, types.ProgressLocked)},
			want:     ActionRecover,
		},
		{
			name:     "healthy with an active row",
			links:    []*types.ChallengeLink{link(chA, 0), link(chB, 1)},
			progress: []*types.ChallengeProgress{row(chA, types.ProgressActive), row(chB, types.ProgressLocked)},
			want:     ActionNoOp,
		},
		{
			name:     "all completed is terminal not stuck",
			links:    []*types.ChallengeLink{link(chA, 0), link(chB, 1)},
			progress: []*types.ChallengeProgress{row(chA, types.ProgressCompleted), row(chB, types.ProgressCompleted)},
			want:     ActionNoOp,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideAction(tt.links, tt.progress); got != tt.want {
				t.Fatalf("DecideAction: want=%s got=%s", tt.want, got)
			}
		})
	}
}
