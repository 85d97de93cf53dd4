package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/informaticaucm/seguimiento-api/internal/service"
	"github.com/informaticaucm/seguimiento-api/pkg/response"
)

// ActivityHandler exposes read-only activity, recurrence and exception
// lookups.
type ActivityHandler struct {
	activities *service.ActivityService
	presence   *service.PresenceService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activities *service.ActivityService, presence *service.PresenceService) *ActivityHandler {
	return &ActivityHandler{activities: activities, presence: presence}
}

// Get godoc
// @Summary Get one activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	activity, err := h.activities.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Rooms godoc
// @Summary List the rooms an activity occupies
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/rooms [get]
func (h *ActivityHandler) Rooms(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rooms, err := h.presence.RoomsOccupiedBy(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"activity_id": id, "rooms": rooms}, nil)
}

// Recurrences godoc
// @Summary List the recurrence rules of an activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/recurrences [get]
func (h *ActivityHandler) Recurrences(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rules, err := h.activities.ListRules(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}

// Exceptions godoc
// @Summary List the exceptions of an activity
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Router /activities/{id}/exceptions [get]
func (h *ActivityHandler) Exceptions(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	exceptions, err := h.activities.ListExceptions(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exceptions, nil)
}

// GetRecurrence godoc
// @Summary Get one recurrence rule
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Recurrence ID"
// @Success 200 {object} response.Envelope
// @Router /recurrences/{id} [get]
func (h *ActivityHandler) GetRecurrence(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	rule, err := h.activities.GetRule(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rule, nil)
}

// GetException godoc
// @Summary Get one exception
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Exception ID"
// @Success 200 {object} response.Envelope
// @Router /exceptions/{id} [get]
func (h *ActivityHandler) GetException(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	exc, err := h.activities.GetException(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exc, nil)
}
