package logging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   string
	}{
		{name: "defaults", wantLevel: zapcore.InfoLevel},
		{name: "debug console", level: "DEBUG", format: "console", wantLevel: zapcore.DebugLevel},
		{name: "bad level", level: "loud", wantErr: "parsing log level"},
		{name: "bad format", format: "xml", wantErr: "format must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig(tt.level, tt.format)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, cfg.Level)
		})
	}
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toodoo.log")
	cfg := NewDefaultConfig()
	cfg.Paths = []string{path}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Info(WithUserID(context.Background(), "u-1"), "note created", zap.String("note_id", "n-1"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"note created"`))
	assert.True(t, strings.Contains(line, `"user.id":"u-1"`))
	assert.True(t, strings.Contains(line, `"note_id":"n-1"`))
}

func TestTestLogger_ContextFields(t *testing.T) {
	logger := NewTestLogger()
	ctx := WithRequestID(WithUserID(context.Background(), "u-2"), "req-9")

	logger.Warn(ctx, "slow query")

	logger.AssertLogged(t, zapcore.WarnLevel, "slow")
	logger.AssertNotLogged(t, zapcore.ErrorLevel, "slow")
	logger.AssertField(t, "slow query", "user.id", "u-2")
	logger.AssertField(t, "slow query", "request.id", "req-9")
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	logger := NewTestLogger()
	ctx := WithLogger(context.Background(), logger.Logger)
	FromContext(ctx).Info(ctx, "via context")
	logger.AssertLogged(t, zapcore.InfoLevel, "via context")
}

func TestRedactedString(t *testing.T) {
	f := RedactedString("password", "hunter2")
	assert.Equal(t, "[REDACTED:7]", f.String)
}
