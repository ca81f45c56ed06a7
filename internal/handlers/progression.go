package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mentorbridge/mentorbridge-backend/internal/requestdata"
	"github.com/mentorbridge/mentorbridge-backend/internal/services"
	"github.com/mentorbridge/mentorbridge-backend/internal/timeutil"
	"github.com/mentorbridge/mentorbridge-backend/internal/types"
)

// progressCacheTTL bounds staleness if an invalidation is ever lost.
const progressCacheTTL = 5 * time.Minute

// ProgressReadCache caches raw progress rows per (user, objective).
// Countdown fields are never cached; they are recomputed on every read.
type ProgressReadCache interface {
	Get(ctx context.Context, userID, objectiveItemID uuid.UUID) (string, bool)
	Set(ctx context.Context, userID, objectiveItemID uuid.UUID, payload string, ttl time.Duration)
}

type ProgressionHandler struct {
	progression services.ProgressionService
	sync        services.SyncService
	readCache   ProgressReadCache
}

func NewProgressionHandler(progression services.ProgressionService, sync services.SyncService, readCache ProgressReadCache) *ProgressionHandler {
	return &ProgressionHandler{progression: progression, sync: sync, readCache: readCache}
}

// ProgressView is a progress row plus its server-computed countdown. The
// countdown is derived on every read; nothing here mutates state.
type ProgressView struct {
	*types.ChallengeProgress
	Remaining        timeutil.Remaining `json:"remaining"`
	PercentRemaining float64            `json:"percent_remaining"`
}

func viewsOf(rows []*types.ChallengeProgress) []ProgressView {
	now := time.Now().UTC()
	views := make([]ProgressView, 0, len(rows))
	for _, r := range rows {
		views = append(views, ProgressView{
			ChallengeProgress: r,
			Remaining:         timeutil.TimeRemaining(r.Deadline, now),
			PercentRemaining:  timeutil.PercentRemaining(r.StartedAt, r.Deadline, now),
		})
	}
	return views
}

// POST /api/objectives/:id/select
func (h *ProgressionHandler) SelectObjective(c *gin.Context) {
	objectiveItemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	rows, err := h.sync.SelectObjective(c.Request.Context(), objectiveItemID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"progress": viewsOf(rows)})
}

// GET /api/objectives/:id/progress
func (h *ProgressionHandler) GetObjectiveProgress(c *gin.Context) {
	objectiveItemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	ctx := c.Request.Context()
	if rows, ok := h.cachedRows(ctx, objectiveItemID); ok {
		RespondOK(c, gin.H{"progress": viewsOf(rows)})
		return
	}

	rows, err := h.progression.ProgressForObjective(ctx, objectiveItemID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	h.storeRows(ctx, objectiveItemID, rows)
	RespondOK(c, gin.H{"progress": viewsOf(rows)})
}

// cachedRows is the read side of the get-or-load path. Mutating passes
// invalidate the key, so a hit is never staler than the last write.
func (h *ProgressionHandler) cachedRows(ctx context.Context, objectiveItemID uuid.UUID) ([]*types.ChallengeProgress, bool) {
	if h.readCache == nil {
		return nil, false
	}
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return nil, false
	}
	payload, ok := h.readCache.Get(ctx, userID, objectiveItemID)
	if !ok {
		return nil, false
	}
	var rows []*types.ChallengeProgress
	if err := json.Unmarshal([]byte(payload), &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (h *ProgressionHandler) storeRows(ctx context.Context, objectiveItemID uuid.UUID, rows []*types.ChallengeProgress) {
	if h.readCache == nil {
		return
	}
	userID := requestdata.UserID(ctx)
	if userID == uuid.Nil {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	h.readCache.Set(ctx, userID, objectiveItemID, string(payload), progressCacheTTL)
}

// DELETE /api/objectives/:id/progress
func (h *ProgressionHandler) ClearObjective(c *gin.Context) {
	objectiveItemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := h.progression.ClearObjective(c.Request.Context(), objectiveItemID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"cleared": true})
}

// POST /api/progress/:id/complete
func (h *ProgressionHandler) CompleteChallenge(c *gin.Context) {
	progressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := h.progression.Complete(c.Request.Context(), progressID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"completed": true})
}

// POST /api/progress/:id/restart
func (h *ProgressionHandler) RestartChallenge(c *gin.Context) {
	progressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	if err := h.progression.Restart(c.Request.Context(), progressID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"restarted": true})
}
