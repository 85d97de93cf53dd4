package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/informaticaucm/seguimiento-api/internal/service"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
	"github.com/informaticaucm/seguimiento-api/pkg/response"
)

// RoomHandler exposes the room catalogue, room-anchored activity
// discovery and occupancy report export.
type RoomHandler struct {
	rooms    *service.RoomService
	presence *service.PresenceService
	reports  *service.ReportService
}

// NewRoomHandler constructs RoomHandler. reports may be nil when report
// export is disabled.
func NewRoomHandler(rooms *service.RoomService, presence *service.PresenceService, reports *service.ReportService) *RoomHandler {
	return &RoomHandler{rooms: rooms, presence: presence, reports: reports}
}

// List godoc
// @Summary List the room catalogue
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Get godoc
// @Summary Get one room
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	room, err := h.rooms.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, room, nil)
}

// Activities godoc
// @Summary List activities active in a room during a window
// @Tags Rooms
// @Produce json
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param from query string false "Window start (RFC 3339), defaults to now-30m"
// @Param to query string false "Window end (RFC 3339), defaults to now+30m"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/activities [get]
func (h *RoomHandler) Activities(c *gin.Context) {
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
	ids, err := h.presence.ActivitiesInWindow(c.Request.Context(), id, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"room_id": id, "activities": ids}, nil)
}

// Report godoc
// @Summary Export a room occupancy report
// @Tags Rooms
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Room ID"
// @Param format query string false "csv or pdf" default(csv)
// @Param from query string true "Window start (RFC 3339)"
// @Param to query string true "Window end (RFC 3339)"
// @Success 200 {file} file
// @Router /rooms/{id}/report [get]
func (h *RoomHandler) Report(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "report export is disabled"))
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	format, ok := service.ParseReportFormat(c.Query("format"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
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

	doc, err := h.reports.RoomOccupancy(c.Request.Context(), id, from, to, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+doc.FileName)
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
