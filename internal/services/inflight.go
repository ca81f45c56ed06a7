package services

import (
	"sync"

	"github.com/google/uuid"
)

type inflightKey struct {
	UserID          uuid.UUID
	ObjectiveItemID uuid.UUID
}

// inflightGuard serializes reconciliation passes per (user, objective).
// Two passes interleaving their read-modify-write would both observe zero
// active rows and both activate, blowing the active-slot bound.
type inflightGuard struct {
	mu       sync.Mutex
	inFlight map[inflightKey]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{inFlight: make(map[inflightKey]struct{})}
}

// begin claims the key. It returns false when a pass for the same key is
// already running; the caller drops the trigger instead of queueing it.
func (g *inflightGuard) begin(userID, objectiveItemID uuid.UUID) bool {
	key := inflightKey{UserID: userID, ObjectiveItemID: objectiveItemID}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inFlight[key]; ok {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

func (g *inflightGuard) end(userID, objectiveItemID uuid.UUID) {
	key := inflightKey{UserID: userID, ObjectiveItemID: objectiveItemID}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
}
