package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func keepGlobal(t *testing.T) {
	t.Helper()
	restore := Replace(Logger())
	t.Cleanup(restore)
}

func TestInitLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{level: "debug", want: zap.DebugLevel},
		{level: " WARN ", want: zap.WarnLevel},
		{level: "chatty", want: zap.InfoLevel},
	}
	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			keepGlobal(t)
			require.NoError(t, Init(tc.level))

			require.True(t, Logger().Core().Enabled(tc.want))
			if tc.want > zap.DebugLevel {
				require.False(t, Logger().Core().Enabled(tc.want-1))
			}
		})
	}
}

func TestInitWithConsoleFormatAndService(t *testing.T) {
	keepGlobal(t)

	require.NoError(t, InitWithOptions("warn", Options{Format: "console", Service: "chat"}))
	require.False(t, Logger().Core().Enabled(zap.InfoLevel))
	require.True(t, Logger().Core().Enabled(zap.WarnLevel))
}

func TestWithModuleTagsEntries(t *testing.T) {
	core, recorded := observer.New(zap.DebugLevel)
	t.Cleanup(Replace(zap.New(core)))

	WithModule("cache").Info("purged", zap.Int64("removed", 3))

	entries := recorded.All()
	require.Len(t, entries, 1)
	require.Equal(t, "purged", entries[0].Message)
	require.Equal(t, "cache", entries[0].ContextMap()["module"])
	require.Equal(t, int64(3), entries[0].ContextMap()["removed"])
}

func TestReplaceNilInstallsNop(t *testing.T) {
	t.Cleanup(Replace(nil))
	require.NotNil(t, Logger())
	require.False(t, Logger().Core().Enabled(zap.ErrorLevel))
}
