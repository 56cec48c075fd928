package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf, ServiceName: "test"})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	log.WithComponent("compose").WithJob("job-1").WithContext(ctx).
		Info().
		Int("pages", 3).
		Err(errors.New("boom")).
		Msg("saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test", entry["service"])
	assert.Equal(t, "compose", entry["component"])
	assert.Equal(t, "job-1", entry["job_id"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, float64(3), entry["pages"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "saved", entry["message"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json", Output: &buf})

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithJob("x").Error().Str("k", "v").Strs("files", []string{"a"}).Bool("ok", false).Msg("dropped")
	})
	assert.Empty(t, RequestIDFromContext(context.Background()))
}
