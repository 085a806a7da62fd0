package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecompipe/internal/config"
)

func TestNewJSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := NewWithWriter(config.Logging{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	log.WithField("rows", 3).Info("merged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "merged", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestNewTeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	var buf bytes.Buffer
	log, closer, err := NewWithWriter(config.Logging{Level: "info", Format: "text", File: path}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Warn("catalog fallback")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "catalog fallback")
	assert.NotContains(t, string(b), "hidden")
	assert.True(t, strings.Contains(buf.String(), "catalog fallback"))
}

func TestNewRejectsBadSettings(t *testing.T) {
	_, _, err := New(config.Logging{Level: "loud", Format: "text"})
	assert.Error(t, err)
	_, _, err = New(config.Logging{Level: "info", Format: "yaml"})
	assert.Error(t, err)
}
