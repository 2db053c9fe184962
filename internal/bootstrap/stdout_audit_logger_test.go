package bootstrap_test

import (
	"context"
	"testing"

	"go-offboarding/internal/bootstrap"
	"go-offboarding/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdoutAuditLogger_Log(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	l := bootstrap.NewStdoutAuditLogger()
	ctx := contextutil.WithRequestID(context.Background(), "req-7")
	l.Log(ctx, bootstrap.AuditLog{Action: "SERVER_SHUTDOWN", Message: "bye"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "audit", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "SERVER_SHUTDOWN", fields["action"])
	assert.Equal(t, "req-7", fields["request_id"])
}
