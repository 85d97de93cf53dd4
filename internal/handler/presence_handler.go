package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/informaticaucm/seguimiento-api/internal/models"
	"github.com/informaticaucm/seguimiento-api/internal/service"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
	"github.com/informaticaucm/seguimiento-api/pkg/response"
)

// PresenceHandler exposes teacher-anchored presence resolution.
type PresenceHandler struct {
	presence *service.PresenceService
}

// NewPresenceHandler constructs PresenceHandler.
func NewPresenceHandler(presence *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presence: presence}
}

type resolveRoomsRequest struct {
	Mode string     `json:"mode"`
	At   *time.Time `json:"at,omitempty"`
}

// ResolveRooms godoc
// @Summary Resolve the rooms a teacher can be expected in
// @Tags Presence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param payload body resolveRoomsRequest true "Resolution mode and optional instant"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/rooms [post]
func (h *PresenceHandler) ResolveRooms(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req resolveRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid resolution payload"))
		return
	}
	mode, ok := models.ParseResolutionMode(req.Mode)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidMode, "mode must be habitual or irregular"))
		return
	}
	var at time.Time
	if req.At != nil {
		at = req.At.UTC()
	}

	result, err := h.presence.ResolveForTeacher(c.Request.Context(), id, at, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Presence godoc
// @Summary Resolve a teacher's rooms applying the two-tier fallback
// @Tags Presence
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param at query string false "Query instant (RFC 3339), defaults to now"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/presence [get]
func (h *PresenceHandler) Presence(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	at, err := queryTime(c, "at")
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.presence.ResolveWithFallback(c.Request.Context(), id, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
