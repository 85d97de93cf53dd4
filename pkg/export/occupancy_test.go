package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() OccupancyReport {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	return OccupancyReport{
		RoomName: "Aula 101",
		From:     start.AddDate(0, 0, -1),
		To:       start.AddDate(0, 0, 6),
		Rows: []OccupancyRow{
			{ActivityID: 7, Title: "Actividad 7", Teacher: "Ana Ruiz", Start: start, End: start.Add(time.Hour)},
			{ActivityID: 9, Title: "Actividad 9", Teacher: "Luis Soto", Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), Rescheduled: true},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	content, err := NewCSVExporter().Render(sampleReport())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "activity_id,title,teacher,start,end,rescheduled", lines[0])
	assert.Contains(t, lines[1], "2024-01-08T09:00:00Z")
	assert.True(t, strings.HasSuffix(lines[1], ",no"))
	assert.True(t, strings.HasSuffix(lines[2], ",yes"))
}

func TestCSVExporterRenderEmptyReport(t *testing.T) {
	content, err := NewCSVExporter().Render(OccupancyReport{RoomName: "Aula 101"})
	require.NoError(t, err)
	assert.Equal(t, "activity_id,title,teacher,start,end,rescheduled", strings.TrimSpace(string(content)))
}

func TestPDFExporterRender(t *testing.T) {
	content, err := NewPDFExporter().Render(sampleReport())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "%PDF"))
}
