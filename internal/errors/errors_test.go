package errors

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TelemetryError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(CategoryConfig, SeverityFatal, "required configuration missing"),
			expected: "config: required configuration missing",
		},
		{
			name:     "with cause",
			err:      Wrap(fmt.Errorf("connection refused"), CategoryNetwork, SeverityError, "request failed"),
			expected: "network: request failed: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestWithContextAndAttrs(t *testing.T) {
	err := WrapRetryable(fmt.Errorf("eof"), CategoryGitHub, SeverityError, "GitHub API call failed").
		WithContext("run_id", int64(42)).
		WithContext("operation", "list workflow jobs")

	attrs := err.Attrs()
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"category", "retryable", "operation", "run_id", "cause"}, keys)
	assert.Equal(t, "github", attrs[0].Value.String())
	assert.Equal(t, "eof", attrs[4].Value.String())
}

func TestCategoryAndRetryHelpers(t *testing.T) {
	plain := fmt.Errorf("plain")
	wrapped := fmt.Errorf("outer: %w", NetworkError("http://gateway", plain))

	assert.True(t, IsCategory(wrapped, CategoryNetwork))
	assert.False(t, IsCategory(wrapped, CategoryGitHub))
	assert.False(t, IsCategory(plain, CategoryNetwork))
	assert.True(t, IsRetryable(wrapped))
	assert.False(t, IsRetryable(plain))
	assert.False(t, IsRetryable(UnexpectedStatus("http://gateway", 400, "Bad Request")))
	assert.True(t, stdErrors.Is(wrapped, plain))
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, LogLevel(MarkerNotFound("/tmp/x.started_at", fmt.Errorf("missing"))))
	assert.Equal(t, slog.LevelWarn, LogLevel(MarkerInvalid("/tmp/x.started_at", "junk", fmt.Errorf("bad"))))
	assert.Equal(t, slog.LevelError, LogLevel(GitHubAPIError("create comment", fmt.Errorf("403"))))
	assert.Equal(t, slog.LevelError, LogLevel(fmt.Errorf("plain")))

	attrs := LogAttrs(fmt.Errorf("plain"))
	require.Len(t, attrs, 1)
	assert.Equal(t, "error", attrs[0].Key)
}

func TestConstructors(t *testing.T) {
	t.Run("MarkerNotFound", func(t *testing.T) {
		cause := fmt.Errorf("no such file")
		err := MarkerNotFound("/tmp/x.started_at", cause)
		assert.Equal(t, CategoryFileSystem, err.Category)
		assert.Equal(t, SeverityInfo, err.Severity)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("NetworkError", func(t *testing.T) {
		err := NetworkError("http://gateway", fmt.Errorf("timeout"))
		assert.True(t, err.Retryable)
		assert.Equal(t, "http://gateway", err.Context["url"])
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		err := ValidationFailed("prometheus_push_gateway_url", "missing /job/ segment")
		assert.Equal(t, CategoryValidation, err.Category)
		assert.Equal(t, "missing /job/ segment", err.Context["reason"])
	})
}

func newTestAdapter(verbose bool) (*CLIErrorAdapter, *bytes.Buffer, *bytes.Buffer, *int) {
	var stderr, logs bytes.Buffer
	code := -1
	a := NewCLIErrorAdapter(verbose, slog.New(slog.NewTextHandler(&logs, nil)))
	a.stderr = &stderr
	a.exit = func(c int) { code = c }
	return a, &stderr, &logs, &code
}

func TestCLIErrorAdapter(t *testing.T) {
	t.Run("config error", func(t *testing.T) {
		a, stderr, logs, code := newTestAdapter(false)
		a.HandleError(ConfigRequired("marker_dir"))
		assert.Equal(t, 7, *code)
		assert.Equal(t, "marker_dir: required configuration missing\n", stderr.String())
		assert.Empty(t, logs.String())
	})

	t.Run("validation error names reason", func(t *testing.T) {
		a, stderr, _, code := newTestAdapter(false)
		a.HandleError(ValidationFailed("kind", "unknown marker kind"))
		assert.Equal(t, 2, *code)
		assert.Equal(t, "kind: validation failed (unknown marker kind)\n", stderr.String())
	})

	t.Run("runtime error is logged", func(t *testing.T) {
		a, stderr, logs, code := newTestAdapter(false)
		a.HandleError(Wrap(fmt.Errorf("deadline"), CategoryRuntime, SeverityError, "gave up waiting for marker"))
		assert.Equal(t, 12, *code)
		assert.Equal(t, "runtime: gave up waiting for marker\n", stderr.String())
		assert.Contains(t, logs.String(), "category=runtime")
	})

	t.Run("verbose prints full error", func(t *testing.T) {
		a, stderr, _, _ := newTestAdapter(true)
		a.HandleError(Wrap(fmt.Errorf("eof"), CategoryNetwork, SeverityError, "request failed"))
		assert.Equal(t, "network: request failed: eof\n", stderr.String())
	})

	t.Run("plain errors", func(t *testing.T) {
		a, stderr, _, code := newTestAdapter(false)
		a.HandleError(fmt.Errorf("plain"))
		assert.Equal(t, 1, *code)
		assert.Equal(t, "Error: plain\n", stderr.String())
		assert.Equal(t, 0, a.ExitCodeFor(nil))
	})
}
