package security_test

import (
	"context"
	"errors"
	"testing"

	"agency-site-backend/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"jane@example.com", "j***@example.com"},
		{"j@example.com", "***@example.com"},
		{"ab", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, security.MaskEmail(tt.input))
		})
	}

	t.Run("Should hash values without an at sign", func(t *testing.T) {
		masked := security.MaskEmail("not-an-email")
		assert.Len(t, masked, 16)
		assert.NotContains(t, masked, "not-an-email")
	})
}

func TestSecurityLogger(t *testing.T) {
	t.Run("Should write masked events through zap", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		sl := security.NewSecurityLoggerWithZap(zap.New(core), "contact-api", "test")

		sl.LogDeliveryFailed(context.Background(), "jane@example.com", "resend", "req-1", errors.New("timeout"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "delivery_failed", entry.Message)
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)

		fields := entry.ContextMap()
		assert.Equal(t, "j***@example.com", fields["subject_value"])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Contains(t, fields["details"], "timeout")
		assert.Equal(t, "HIGH", fields["severity"])
	})

	t.Run("Should log validation failures at info level", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		sl := security.NewSecurityLoggerWithZap(zap.New(core), "contact-api", "test")

		sl.LogValidationFailed(context.Background(), "x@x.com", "10.0.0.1", "req-2", "missing_fields")

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	})

	t.Run("Should ignore events on a nil logger", func(t *testing.T) {
		var sl *security.SecurityLogger
		assert.NotPanics(t, func() {
			sl.LogRateLimitTriggered(context.Background(), "10.0.0.1", "ua", "req", "/api/contact")
		})
		assert.NoError(t, sl.Sync())
	})
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, security.SeverityINFO, security.SeverityOf(security.EventValidationFailed))
	assert.Equal(t, security.SeverityWARN, security.SeverityOf(security.EventRateLimitTriggered))
	assert.Equal(t, security.SeverityHIGH, security.SeverityOf(security.EventUnauthorizedAccess))
	assert.Equal(t, security.SeverityWARN, security.SeverityOf(security.EventType("unknown")))
}
