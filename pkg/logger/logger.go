package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with domain-specific helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout at the level named by LOG_LEVEL
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w. Text output in gin debug mode, JSON otherwise.
func NewWithWriter(w io.Writer, level string) *Logger {
	lvl := parseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithUserID adds user ID to logger context
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("user_id", userID))}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// WithComponent tags every record with the emitting component
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name))}
}

// LogHTTPRequest logs a completed HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	level := slog.LevelInfo
	if c.Writer.Status() >= 500 {
		level = slog.LevelError
	}
	l.Logger.Log(c.Request.Context(), level,
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogEventCreated logs when an event and its sessions are stored
func (l *Logger) LogEventCreated(ctx context.Context, eventID, organizerID string, sessionCount int) {
	l.Logger.InfoContext(ctx,
		"Event Created",
		slog.String("event_id", eventID),
		slog.String("organizer_id", organizerID),
		slog.Int("sessions", sessionCount),
	)
}

// LogSessionsMaterialized logs the outcome of a materialization run
func (l *Logger) LogSessionsMaterialized(ctx context.Context, eventID string, sessionCount, seatsPerSession int, reused bool) {
	l.Logger.InfoContext(ctx,
		"Sessions Materialized",
		slog.String("event_id", eventID),
		slog.Int("sessions", sessionCount),
		slog.Int("seats_per_session", seatsPerSession),
		slog.Bool("reused", reused),
	)
}

// LogBookingCreated logs when a booking is confirmed
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, sessionID, userID string, seatCount int) {
	l.Logger.InfoContext(ctx,
		"Booking Created",
		slog.String("booking_id", bookingID),
		slog.String("session_id", sessionID),
		slog.String("user_id", userID),
		slog.Int("seats", seatCount),
	)
}

// LogBookingCancelled logs when a booking is cancelled
func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID, sessionID, userID string) {
	l.Logger.InfoContext(ctx,
		"Booking Cancelled",
		slog.String("booking_id", bookingID),
		slog.String("session_id", sessionID),
		slog.String("user_id", userID),
	)
}

// LogRateLimitExceeded logs a rejected request
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

var defaultLogger = New()

// GetDefault returns the process-wide logger
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault replaces the process-wide logger
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
