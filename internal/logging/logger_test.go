package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("console only", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(Config{Level: "info", NoColor: true, Console: &buf})

		logger.Info().Str("mode", "flat").Msg("cache hit")
		logger.Debug().Msg("hidden")

		out := buf.String()
		assert.Contains(t, out, "cache hit")
		assert.Contains(t, out, "mode=flat")
		assert.NotContains(t, out, "hidden")
	})

	t.Run("with file writer", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "state", "nebula.log")
		var console bytes.Buffer

		logger := NewLogger(Config{Level: "debug", LogFile: logFile, NoColor: true, Console: &console})
		logger.Debug().Msg("written to file")

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"message":"written to file"`)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"invalid", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNewTestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	logger.Info().Str("package", "zsh").Msg("mutation succeeded")

	assert.Contains(t, buf.String(), "mutation succeeded")
	assert.Contains(t, buf.String(), `"package":"zsh"`)
}

func TestProgressSafeWriter(t *testing.T) {
	t.Run("clears line at line start only", func(t *testing.T) {
		var buf bytes.Buffer
		w := newProgressSafeWriter(&buf)

		n, err := w.Write([]byte("part"))
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		_, _ = w.Write([]byte("ial\n"))
		_, _ = w.Write([]byte("next\n"))

		assert.Equal(t, clearLine+"partial\n"+clearLine+"next\n", buf.String())
	})

	t.Run("concurrent writes", func(t *testing.T) {
		var buf bytes.Buffer
		w := newProgressSafeWriter(&buf)

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = w.Write([]byte("line\n"))
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, strings.Count(buf.String(), "line\n"))
	})
}
