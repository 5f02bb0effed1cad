package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
)

// Global carries what every command shares.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root of the command tree. Report runs when no command is given, which is
// how the action's post step invokes the binary.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Debug   string           `hidden:"" env:"INPUT_DEBUG,RUNNER_DEBUG" help:"Enable debug logging when set to true or 1"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Report     ReportCmd     `cmd:"" default:"1" help:"Run the reporting pass for the current job"`
	Mark       MarkCmd       `cmd:"" help:"Write a sidecar marker for a background step"`
	Wait       WaitCmd       `cmd:"" help:"Block until a background step marker exists"`
	VersionCmd VersionCmd    `cmd:"" name:"version" help:"Print version information"`

	stderr io.Writer
}

// AfterApply installs the default logger. Runner debug mode turns on verbose output.
func (c *CLI) AfterApply() error {
	c.Verbose = c.Verbose || isTrue(c.Debug)
	slog.SetDefault(c.logger())
	return nil
}

func (c *CLI) logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if c.Verbose {
		opts.Level = slog.LevelDebug
	}
	w := c.stderr
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// isTrue mirrors how action inputs are compared: only "true" or "1" enable a switch.
func isTrue(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "true" || v == "1"
}
