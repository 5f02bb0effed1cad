package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// exitCodes maps categories to process exit codes. Anything else exits 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryConfig:     7,
	CategoryNetwork:    8,
	CategoryGitHub:     8,
	CategoryInternal:   10,
	CategoryFileSystem: 11,
	CategoryRuntime:    12,
}

// CLIErrorAdapter prints command errors and exits with a category-specific code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor returns the exit code for err; nil exits 0.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if te, ok := As(err); ok {
		if code, known := exitCodes[te.Category]; known {
			return code
		}
	}
	return 1
}

// FormatError renders err for the terminal. Usage errors lead with the offending field
// and omit the category.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	te, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return te.Error()
	}

	msg := te.Message
	if field, _ := te.Context["field"].(string); field != "" {
		msg = field + ": " + msg
	}
	if reason, _ := te.Context["reason"].(string); reason != "" {
		msg += " (" + reason + ")"
	}
	if te.Category == CategoryConfig || te.Category == CategoryValidation {
		return msg
	}
	return string(te.Category) + ": " + msg
}

// HandleError logs err when useful, prints it and exits.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.verbose || !isUsageError(err) {
		a.logger.LogAttrs(context.Background(), LogLevel(err), "Command failed", LogAttrs(err)...)
	}
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

// isUsageError reports errors the user fixes by changing flags or environment; the
// stderr line is enough for those.
func isUsageError(err error) bool {
	return IsCategory(err, CategoryConfig) || IsCategory(err, CategoryValidation)
}
