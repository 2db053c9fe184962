package bootstrap

import (
	"context"
	"time"

	"go-offboarding/internal/shared/contextutil"

	"go.uber.org/zap"
)

// StdoutAuditLogger writes audit entries through the global zap logger.
type StdoutAuditLogger struct {
	logger *zap.Logger
}

func NewStdoutAuditLogger() *StdoutAuditLogger {
	return &StdoutAuditLogger{logger: zap.L().Named("audit")}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := []zap.Field{
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	}
	if rid := contextutil.GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if actor := contextutil.GetUserID(ctx); actor != "" {
		fields = append(fields, zap.String("actor", actor))
	}
	l.logger.Info("audit event", fields...)
}
