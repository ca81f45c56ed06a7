package services

import (
	"github.com/google/uuid"

	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// Action is what a refresh of link or progress data asks the engine to do
// for one (user, objective).
type Action string

const (
	ActionNoOp       Action = "noop"
	ActionInitialize Action = "initialize"
	ActionReconcile  Action = "reconcile"
	ActionRecover    Action = "recover"
)

// DecideAction derives the engine's next move from the current link graph
// and progress rows for one objective. It is pure: callers invoke it on
// every data refresh instead of burying the decision in a render effect.
//
//   - no progress rows            -> Initialize
//   - orphaned or missing rows    -> Reconcile
//   - rows but none active or
//     completed (stuck locked)    -> Recover
//   - otherwise                   -> NoOp
func DecideAction(links []*types.ChallengeLink, progress []*types.ChallengeProgress) Action {
	if len(progress) == 0 {
		if len(links) == 0 {
			return ActionNoOp
		}
		return ActionInitialize
	}

	linked := make(map[uuid.UUID]bool, len(links))
	for _, l := range links {
		linked[l.ChallengeID] = true
	}
	tracked := make(map[uuid.UUID]bool, len(progress))
	anyActive := false
	anyCompleted := false
	for _, p := range progress {
		tracked[p.ChallengeID] = true
		if !linked[p.ChallengeID] {
			return ActionReconcile // orphan
		}
		switch p.Status {
		case types.ProgressActive:
			anyActive = true
		case types.ProgressCompleted:
			anyCompleted = true
		}
	}
	for _, l := range links {
		if !tracked[l.ChallengeID] {
			return ActionReconcile // missing
		}
	}

	if !anyActive && !anyCompleted {
		return ActionRecover
	}
	return ActionNoOp
}
