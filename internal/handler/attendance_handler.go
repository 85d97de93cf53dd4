package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/informaticaucm/seguimiento-api/internal/service"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
	"github.com/informaticaucm/seguimiento-api/pkg/response"
)

// AttendanceHandler exposes attendance registration.
type AttendanceHandler struct {
	attendances *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendances *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendances: attendances}
}

// Create godoc
// @Summary Record a teacher check-in
// @Tags Attendances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateAttendanceRequest true "Check-in"
// @Success 201 {object} response.Envelope
// @Router /attendances [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	var req service.CreateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attendance payload"))
		return
	}
	att, err := h.attendances.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, att)
}

// Get godoc
// @Summary Get one attendance record
// @Tags Attendances
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attendance ID"
// @Success 200 {object} response.Envelope
// @Router /attendances/{id} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	att, err := h.attendances.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, att, nil)
}

// Update godoc
// @Summary Amend the state or reason of an attendance record
// @Tags Attendances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attendance ID"
// @Param payload body service.UpdateAttendanceRequest true "New state and reason"
// @Success 200 {object} response.Envelope
// @Router /attendances/{id} [post]
func (h *AttendanceHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attendance payload"))
		return
	}
	att, err := h.attendances.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, att, nil)
}

// ListByTeacher godoc
// @Summary List a teacher's attendance records in a window
// @Tags Attendances
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param from query string false "Window start (RFC 3339)"
// @Param to query string false "Window end (RFC 3339)"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/attendances [get]
func (h *AttendanceHandler) ListByTeacher(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	from, err := queryTime(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	if to.IsZero() {
		to = time.Now().UTC()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -7)
	}

	records, err := h.attendances.ListByTeacher(c.Request.Context(), id, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
