package services

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// SortByChain orders progress rows for display. order_index is
// authoritative; predecessor_challenge_id is display-only metadata used to
// break order_index ties so that a challenge declaring a predecessor shows
// after it. Inconsistent predecessor chains never override order_index.
func SortByChain(rows []*types.ChallengeProgress, links []*types.ChallengeLink) []*types.ChallengeProgress {
	order := make(map[uuid.UUID]int, len(links))
	pred := make(map[uuid.UUID]uuid.UUID, len(links))
	for _, l := range links {
		order[l.ChallengeID] = l.OrderIndex
		if l.PredecessorChallengeID != nil {
			pred[l.ChallengeID] = *l.PredecessorChallengeID
		}
	}

	sorted := make([]*types.ChallengeProgress, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		ao, aok := order[a.ChallengeID]
		bo, bok := order[b.ChallengeID]
		// Rows whose link vanished sort last; reconciliation will remove
		// them on its next pass.
		if aok != bok {
			return aok
		}
		if ao != bo {
			return ao < bo
		}
		if pred[a.ChallengeID] == b.ChallengeID {
			return false
		}
		if pred[b.ChallengeID] == a.ChallengeID {
			return true
		}
		return a.ChallengeID.String() < b.ChallengeID.String()
	})
	return sorted
}
