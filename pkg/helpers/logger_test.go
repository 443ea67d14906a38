package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerTo_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "diagrams", "production")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	buf.Reset()
	LogError(l, "boom", errors.New("db down"), logrus.Fields{"request_id": "r1"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "db down", entry["error"])
	assert.Equal(t, "r1", entry["request_id"])
}

func TestNewLoggerTo_DevelopmentIsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "diagrams", "development")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.Contains(t, buf.String(), "logger initialized")
}
