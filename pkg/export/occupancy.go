// Package export renders room occupancy reports as downloadable
// documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// OccupancyRow is one resolved occurrence of an activity inside a room,
// already evaluated against its recurrence pattern and exceptions.
type OccupancyRow struct {
	ActivityID  int64
	Title       string
	Teacher     string
	Start       time.Time
	End         time.Time
	Rescheduled bool
}

// OccupancyReport is the renderable view of a room's schedule over a
// window of time.
type OccupancyReport struct {
	RoomName string
	From     time.Time
	To       time.Time
	Rows     []OccupancyRow
}

var columns = []string{"activity_id", "title", "teacher", "start", "end", "rescheduled"}

func (r OccupancyRow) record() []string {
	rescheduled := "no"
	if r.Rescheduled {
		rescheduled = "yes"
	}

	return []string{
		fmt.Sprintf("%d", r.ActivityID),
		r.Title,
		r.Teacher,
		r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339),
		rescheduled,
	}
}

// CSVExporter renders occupancy reports as CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the report.
func (e *CSVExporter) Render(report OccupancyReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	if err := writer.Write(columns); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range report.Rows {
		if err := writer.Write(row.record()); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// PDFExporter renders occupancy reports into a tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the room name as title and one
// table row per resolved occurrence.
func (e *PDFExporter) Render(report OccupancyReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, report.RoomName, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	window := fmt.Sprintf("%s to %s",
		report.From.UTC().Format("2006-01-02 15:04"),
		report.To.UTC().Format("2006-01-02 15:04"),
	)
	pdf.CellFormat(0, 8, window, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(columns))
	for _, header := range columns {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range report.Rows {
		for _, value := range row.record() {
			pdf.CellFormat(colWidth, 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return buf.Bytes(), nil
}
