package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelPlotWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levels.png")
	err := LevelPlot(path, "levels",
		Series{Label: "valid", Counts: []int{1, 16, 16, 1}},
		Series{Label: "reachable", Counts: []int{1, 16, 16, 1}},
		Series{Label: "rejected", Counts: []int{0, 0, 0, 0}},
	)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")), "png signature")
}

func TestLevelPlotNeedsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	err := LevelPlot(path, "empty", Series{Label: "valid"})
	assert.ErrorIs(t, err, ErrNoSeries)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
