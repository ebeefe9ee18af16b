package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekPlan = Dataset{
	Headers: []string{"Datum", "Erzieher", "Beginn", "Ende"},
	Rows: []map[string]string{
		{"Datum": "2024-06-10", "Erzieher": "Jörg Müller", "Beginn": "07:00", "Ende": "14:00"},
	},
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(weekPlan)
	require.NoError(t, err)

	text := strings.TrimPrefix(string(out), "\ufeff")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Datum;Erzieher;Beginn;Ende", lines[0])
	assert.Equal(t, "2024-06-10;Jörg Müller;07:00;14:00", lines[1])
}

func TestCSVExporterWritesCaptionFirst(t *testing.T) {
	data := weekPlan
	data.Caption = "Dienstplan Woche vom 2024-06-10 bis 2024-06-16"

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(out), "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Dienstplan Woche vom 2024-06-10 bis 2024-06-16", lines[0])
	assert.Equal(t, "Datum;Erzieher;Beginn;Ende", lines[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter(true).Render(weekPlan, "Dienstplan", "10.06.2024 – 16.06.2024")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
