package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mentorbridge/mentorbridge-backend/internal/services"
)

type CatalogHandler struct {
	svc services.CatalogService
}

func NewCatalogHandler(svc services.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// GET /api/challenges
func (h *CatalogHandler) ListChallenges(c *gin.Context) {
	challenges, err := h.svc.ListChallenges(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"challenges": challenges})
}

// GET /api/challenges/:id
func (h *CatalogHandler) GetChallenge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	challenge, err := h.svc.GetChallenge(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"challenge": challenge})
}

// GET /api/objectives
func (h *CatalogHandler) ListObjectives(c *gin.Context) {
	items, err := h.svc.ListObjectives(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"objectives": items})
}

// GET /api/objectives/:id/links
func (h *CatalogHandler) ListObjectiveLinks(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	links, err := h.svc.LinksForObjective(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"links": links})
}
