package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestLogBookingCreatedWritesFields(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")
	l.WithComponent("bookings").LogBookingCreated(context.Background(), "b-1", "s-1", "u-1", 2)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Booking Created"`)
	assert.Contains(t, out, `"booking_id":"b-1"`)
	assert.Contains(t, out, `"component":"bookings"`)
	assert.Contains(t, out, `"seats":2`)
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Info("hidden")
	assert.Empty(t, buf.String())
}
