package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventTokenRejected       EventType = "token_rejected"
	EventRealtimeAuthFailed  EventType = "realtime_auth_failed"
	EventNonParticipant      EventType = "non_participant_access"
	EventOwnershipViolation  EventType = "ownership_violation"
	EventRateLimitTriggered  EventType = "rate_limit_triggered"
	EventSessionExpired      EventType = "session_liveness_expired"
	EventRateLimitStoreError EventType = "rate_limit_store_error"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp time.Time
	Event     EventType
	UserID    string // hashed before it reaches the log
	IP        string
	RequestID string
	Resource  string
	Details   map[string]any
}

// SecurityLogger writes audit events through zap, separate from the slog application log.
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultLogger *SecurityLogger
	defaultOnce   sync.Once
)

// InitSecurityLogger builds the production zap pipeline and installs it as default.
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	sl := NewSecurityLogger(logger, serviceName, environment)
	defaultLogger = sl
	return sl
}

// NewSecurityLogger wraps an existing zap logger. Tests pass zaptest/observer loggers here.
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// DefaultLogger returns the process-wide security logger
func DefaultLogger() *SecurityLogger {
	defaultOnce.Do(func() {
		if defaultLogger == nil {
			InitSecurityLogger("jobswipe-backend", getEnvironment())
		}
	})
	return defaultLogger
}

// Log logs a security event. A nil logger discards it.
func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	if sl == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	level := zapcore.WarnLevel
	switch event.Event {
	case EventSessionExpired:
		level = zapcore.InfoLevel
	case EventOwnershipViolation, EventRateLimitStoreError:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", sl.serviceName),
		zap.String("env", sl.environment),
		zap.String("event", string(event.Event)),
		zap.Time("occurred_at", event.Timestamp),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("subject", HashValue(event.UserID)))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.Resource != "" {
		fields = append(fields, zap.String("resource", event.Resource))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogNonParticipant records a user touching a chat room they are not a member of
func (sl *SecurityLogger) LogNonParticipant(ctx context.Context, userID, resource string) {
	sl.Log(ctx, SecurityEvent{Event: EventNonParticipant, UserID: userID, Resource: resource})
}

// LogOwnershipViolation records a company acting on another company's job or application
func (sl *SecurityLogger) LogOwnershipViolation(ctx context.Context, userID, resource string) {
	sl.Log(ctx, SecurityEvent{Event: EventOwnershipViolation, UserID: userID, Resource: resource})
}

// LogTokenRejected records a bearer credential that failed validation
func (sl *SecurityLogger) LogTokenRejected(ctx context.Context, ip, requestID, reason string, realtime bool) {
	event := EventTokenRejected
	if realtime {
		event = EventRealtimeAuthFailed
	}
	sl.Log(ctx, SecurityEvent{
		Event:     event,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]any{"reason": reason},
	})
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, userID, ip, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventRateLimitTriggered,
		UserID:    userID,
		IP:        ip,
		RequestID: requestID,
		Resource:  endpoint,
	})
}

// LogSessionExpired records a realtime session reaped by the liveness sweep
func (sl *SecurityLogger) LogSessionExpired(ctx context.Context, userID, sessionID string, idle time.Duration) {
	sl.Log(ctx, SecurityEvent{
		Event:   EventSessionExpired,
		UserID:  userID,
		Details: map[string]any{"session_id": sessionID, "idle_seconds": int(idle.Seconds())},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	if sl == nil {
		return nil
	}
	return sl.zapLogger.Sync()
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
