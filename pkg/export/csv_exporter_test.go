package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"Name", "Course"},
		Rows: []map[string]string{
			{"Name": "José García", "Course": "Engineering"},
		},
	})
	require.NoError(t, err)

	body := string(out)
	assert.True(t, strings.HasPrefix(body, "\ufeff"), "output should carry a UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\ufeff")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Name,Course", lines[0])
	assert.Contains(t, lines[1], "José García")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}
