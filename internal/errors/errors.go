// Package errors provides TelemetryError, a structured error carrying a category,
// a severity and log context, plus the CLI adapter that turns it into exit codes.
package errors

import (
	stdErrors "errors"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// ErrorCategory groups errors by the subsystem that produced them.
type ErrorCategory string

const (
	// Inputs supplied by the user or the runner environment.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Remote systems: push gateway and GitHub API.
	CategoryNetwork ErrorCategory = "network"
	CategoryGitHub  ErrorCategory = "github"

	// Local processing.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryRuntime    ErrorCategory = "runtime"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how much an error degrades the reporting pass.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // the operation cannot continue
	SeverityError   ErrorSeverity = "error"   // one output is lost
	SeverityWarning ErrorSeverity = "warning" // a fallback was used
	SeverityInfo    ErrorSeverity = "info"    // expected, e.g. a marker that was never written
)

// Level maps a severity onto a slog level.
func (s ErrorSeverity) Level() slog.Level {
	switch s {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// TelemetryError is a structured error with category, retryability, and context.
type TelemetryError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TelemetryError.
type ContextFields map[string]any

// Error renders "category: message[: cause]".
func (e *TelemetryError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Category))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *TelemetryError) Unwrap() error {
	return e.Cause
}

// WithContext adds a context field and returns e for chaining.
func (e *TelemetryError) WithContext(key string, value any) *TelemetryError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// Attrs returns the category, retryability and context as log attributes. Context keys
// are sorted so log lines are stable.
func (e *TelemetryError) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(e.Context)+3)
	attrs = append(attrs, slog.String("category", string(e.Category)))
	if e.Retryable {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	for _, k := range slices.Sorted(maps.Keys(e.Context)) {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	return attrs
}

func New(category ErrorCategory, severity ErrorSeverity, message string) *TelemetryError {
	return &TelemetryError{Category: category, Severity: severity, Message: message}
}

// Wrap attaches a category, severity and message to err.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TelemetryError {
	return &TelemetryError{Category: category, Severity: severity, Message: message, Cause: err}
}

// WrapRetryable is Wrap for failures a later attempt may not hit.
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *TelemetryError {
	e := Wrap(err, category, severity, message)
	e.Retryable = true
	return e
}

// As extracts the first TelemetryError in err's chain.
func As(err error) (*TelemetryError, bool) {
	var te *TelemetryError
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

func IsCategory(err error, category ErrorCategory) bool {
	te, ok := As(err)
	return ok && te.Category == category
}

func IsRetryable(err error) bool {
	te, ok := As(err)
	return ok && te.Retryable
}

// LogLevel returns the level err should be logged at. Unclassified errors are errors.
func LogLevel(err error) slog.Level {
	if te, ok := As(err); ok {
		return te.Severity.Level()
	}
	return slog.LevelError
}

// LogAttrs returns the attributes to log alongside err.
func LogAttrs(err error) []slog.Attr {
	if te, ok := As(err); ok {
		return te.Attrs()
	}
	return []slog.Attr{slog.String("error", err.Error())}
}
