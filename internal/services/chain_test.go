package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

func TestSortByChain(t *testing.T) {
	objectiveID := uuid.New()
	chA, chB, chC := uuid.New(), uuid.New(), uuid.New()

	row := func(chID uuid.UUID) *types.ChallengeProgress {
		return &types.ChallengeProgress{ID: uuid.New(), ChallengeID: chID, ObjectiveItemID: objectiveID}
	}

	t.Run("order index wins", func(t *testing.T) {
		links := []*types.ChallengeLink{
			{ChallengeID: chA, OrderIndex: 2},
			{ChallengeID: chB, OrderIndex: 0},
			{ChallengeID: chC, OrderIndex: 1},
		}
		got := SortByChain([]*types.ChallengeProgress{row(chA), row(chB), row(chC)}, links)
		want := []uuid.UUID{chB, chC, chA}
		for i, r := range got {
			if r.ChallengeID != want[i] {
				t.Fatalf("position %d: want=%s got=%s", i, want[i], r.ChallengeID)
			}
		}
	})

	t.Run("predecessor breaks order ties", func(t *testing.T) {
		links := []*types.ChallengeLink{
			{ChallengeID: chA, OrderIndex: 0, PredecessorChallengeID: &chB},
			{ChallengeID: chB, OrderIndex: 0},
		}
		got := SortByChain([]*types.ChallengeProgress{row(chA), row(chB)}, links)
		if got[0].ChallengeID != chB || got[1].ChallengeID != chA {
			t.Fatalf("predecessor tie-break: want %s before %s, got %s then %s", chB, chA, got[0].ChallengeID, got[1].ChallengeID)
		}
	})

	t.Run("predecessor never overrides order index", func(t *testing.T) {
		// chA declares chB as predecessor but carries the lower order_index;
		// order_index stays authoritative.
		links := []*types.ChallengeLink{
			{ChallengeID: chA, OrderIndex: 0, PredecessorChallengeID: &chB},
			{ChallengeID: chB, OrderIndex: 1},
		}
		got := SortByChain([]*types.ChallengeProgress{row(chB), row(chA)}, links)
		if got[0].ChallengeID != chA {
			t.Fatalf("order_index should win over predecessor: got %s first", got[0].ChallengeID)
		}
	})

	t.Run("unlinked rows sort last", func(t *testing.T) {
		links := []*types.ChallengeLink{{ChallengeID: chA, OrderIndex: 5}}
		orphan := row(chB)
		got := SortByChain([]*types.ChallengeProgress{orphan, row(chA)}, links)
		if got[len(got)-1].ID != orphan.ID {
			t.Fatalf("orphan should sort last, got %s last", got[len(got)-1].ChallengeID)
		}
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		links := []*types.ChallengeLink{
			{ChallengeID: chA, OrderIndex: 1},
			{ChallengeID: chB, OrderIndex: 0},
		}
		in := []*types.ChallengeProgress{row(chA), row(chB)}
		first := in[0]
		SortByChain(in, links)
		if in[0] != first {
			t.Fatalf("SortByChain mutated its input")
		}
	})
}
