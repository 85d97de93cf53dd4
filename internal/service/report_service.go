package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/informaticaucm/seguimiento-api/internal/models"
	"github.com/informaticaucm/seguimiento-api/internal/occurrence"
	appErrors "github.com/informaticaucm/seguimiento-api/pkg/errors"
	"github.com/informaticaucm/seguimiento-api/pkg/export"
)

// ReportFormat selects the rendering of an occupancy report.
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// ParseReportFormat validates a format string from the boundary.
func ParseReportFormat(s string) (ReportFormat, bool) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, true
	case FormatPDF:
		return FormatPDF, true
	}
	return "", false
}

// ReportDocument is a rendered report ready to serve.
type ReportDocument struct {
	FileName    string
	ContentType string
	Content     []byte
}

type reportScheduleStore interface {
	RoomSnapshot(ctx context.Context, roomID int64) (*models.ScheduleSnapshot, error)
}

type reportRoomStore interface {
	FindByID(ctx context.Context, id int64) (*models.Room, error)
}

type reportTeacherStore interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

// ReportService renders room occupancy reports by expanding the room's
// schedule over a window.
type ReportService struct {
	schedule reportScheduleStore
	rooms    reportRoomStore
	teachers reportTeacherStore
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(schedule reportScheduleStore, rooms reportRoomStore, teachers reportTeacherStore, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		schedule: schedule,
		rooms:    rooms,
		teachers: teachers,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// RoomOccupancy renders the occupancy of a room over [from, to].
func (s *ReportService) RoomOccupancy(ctx context.Context, roomID int64, from, to time.Time, format ReportFormat) (*ReportDocument, error) {
	if roomID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidID, "room id must be a positive integer")
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTimestamp, "report window must have valid bounds")
	}
	from, to = from.UTC(), to.UTC()

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, wrapStore(err, "could not load room")
	}

	snap, err := s.schedule.RoomSnapshot(ctx, roomID)
	if err != nil {
		return nil, wrapStore(err, "could not load room schedule")
	}

	report := export.OccupancyReport{
		RoomName: room.Name(),
		From:     from,
		To:       to,
	}
	teacherNames := map[int64]string{}
	for _, act := range snap.Activities {
		windows, err := occurrence.ExpandWindow(act, snap.RuleFor(act.ID), snap.ExceptionsFor(act.ID), from, to)
		if err != nil {
			s.logger.Warn("skipping activity with unevaluable schedule",
				zap.Int64("activity_id", act.ID), zap.Error(err))
			continue
		}
		for _, win := range windows {
			report.Rows = append(report.Rows, export.OccupancyRow{
				ActivityID:  act.ID,
				Title:       fmt.Sprintf("Actividad %d", act.ID),
				Teacher:     s.teacherName(ctx, teacherNames, act.ResponsibleID),
				Start:       win.Start,
				End:         win.End,
				Rescheduled: win.Verdict == occurrence.ActiveRescheduled,
			})
		}
	}

	switch format {
	case FormatPDF:
		content, err := s.pdf.Render(report)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ReportDocument{
			FileName:    fmt.Sprintf("occupancy_%d_%s.pdf", roomID, from.Format("20060102")),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		content, err := s.csv.Render(report)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ReportDocument{
			FileName:    fmt.Sprintf("occupancy_%d_%s.csv", roomID, from.Format("20060102")),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	}
}

func (s *ReportService) teacherName(ctx context.Context, cache map[int64]string, teacherID int64) string {
	if name, ok := cache[teacherID]; ok {
		return name
	}
	name := fmt.Sprintf("Docente %d", teacherID)
	if teacher, err := s.teachers.FindByID(ctx, teacherID); err == nil {
		name = teacher.FullName
	}
	cache[teacherID] = name
	return name
}
