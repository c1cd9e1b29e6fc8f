package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/meshcache/internal/adapters/logger"
	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/zerr"
)

func newBufferedLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)
	return l, buf
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newBufferedLogger(t)

	l.Debug("hidden")
	l.Info("shown", "shape", "00000000000000ff")
	assert.Equal(t, "shown shape=00000000000000ff\n", buf.String())

	buf.Reset()
	l.SetLevel(domain.LogLevelDebug)
	l.Debug("now visible")
	assert.Equal(t, "now visible\n", buf.String())

	buf.Reset()
	l.SetLevel(domain.LogLevelWarn)
	l.Info("suppressed")
	l.Warn("careful")
	assert.Equal(t, "! careful\n", buf.String())
}

func TestLogger_JSONMode(t *testing.T) {
	l, buf := newBufferedLogger(t)
	l.Apply(domain.Settings{LogJSON: true, LogLevel: domain.LogLevelInfo})

	l.Info("cache invalidated", "generation", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "cache invalidated", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.InDelta(t, 3, rec["generation"], 0)
}

func TestLogger_SetOutputPreservesJSONMode(t *testing.T) {
	l, _ := newBufferedLogger(t)
	l.SetJSON(true)

	buf := &bytes.Buffer{}
	l.SetOutput(buf)
	l.Warn("still json")

	assert.True(t, json.Valid(buf.Bytes()))
}

func TestLogger_ErrorChain(t *testing.T) {
	l, buf := newBufferedLogger(t)

	err := zerr.Wrap(zerr.With(zerr.Wrap(errors.New("disk full"), "failed to write mesh"), "path", "out.stl"), "build failed")
	l.Error(err)

	want := "✗ Error: build failed\n" +
		"\n" +
		"  Caused by:\n" +
		"    → failed to write mesh (path=out.stl)\n" +
		"    → disk full\n"
	assert.Equal(t, want, buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	l, buf := newBufferedLogger(t)
	l.Error(nil)
	assert.Empty(t, buf.String())
}

func TestCollectErrorEntries(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantMessages []string
		wantMetadata []map[string]any
	}{
		{
			name:         "single standard error",
			err:          errors.New("simple error"),
			wantMessages: []string{"simple error"},
			wantMetadata: []map[string]any{nil},
		},
		{
			name:         "zerr wrapped chain",
			err:          zerr.Wrap(zerr.Wrap(errors.New("root cause"), "middle layer"), "outer layer"),
			wantMessages: []string{"outer layer", "middle layer", "root cause"},
			wantMetadata: []map[string]any{{}, {}, nil},
		},
		{
			name:         "zerr with metadata",
			err:          zerr.With(zerr.With(zerr.New("base error"), "key1", "value1"), "key2", 42),
			wantMessages: []string{"base error"},
			wantMetadata: []map[string]any{{"key1": "value1", "key2": 42}},
		},
		{
			name:         "metadata on a standard error folds into the link above",
			err:          zerr.Wrap(zerr.With(errors.New("io"), "path", "a"), "outer"),
			wantMessages: []string{"outer", "io"},
			wantMetadata: []map[string]any{{"path": "a"}, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := logger.CollectErrorEntries(tt.err)
			require.Len(t, entries, len(tt.wantMessages))
			for i, e := range entries {
				assert.Equal(t, tt.wantMessages[i], e.Message())
				assert.Equal(t, tt.wantMetadata[i], e.Metadata())
			}
		})
	}
}

func TestFormatErrorEntries_MultilineMessage(t *testing.T) {
	entries := logger.CollectErrorEntries(zerr.Wrap(errors.New("line one\nline two"), "top"))
	out := logger.FormatErrorEntries(entries)

	assert.Equal(t, "Error: top\n\n  Caused by:\n    → line one\n      line two", out)
}
