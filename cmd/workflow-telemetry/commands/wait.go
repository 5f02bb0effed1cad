package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/workflow-telemetry/internal/marker"
)

// WaitCmd implements the 'wait' command used by "Attach" steps.
type WaitCmd struct {
	Name    string        `arg:"" help:"Background step name, without the (background) suffix"`
	Kind    string        `default:"completed_at" enum:"start,started,started_at,end,completed,completed_at" help:"Marker to wait for"`
	Dir     string        `env:"INPUT_MARKER_DIR" default:"/tmp" help:"Marker directory"`
	Timeout time.Duration `default:"0s" help:"Give up after this long; 0 waits indefinitely"`

	stdout io.Writer
}

// Run executes the wait command and prints the marker timestamp.
func (cmd *WaitCmd) Run(g *Global, _ *CLI) error {
	kind, err := marker.ParseKind(cmd.Kind)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	ts, err := marker.NewDir(cmd.Dir).Wait(ctx, cmd.Name, kind, g.Logger)
	if err != nil {
		return err
	}

	out := cmd.stdout
	if out == nil {
		out = os.Stdout
	}
	_, _ = fmt.Fprintln(out, marker.FormatTimestamp(ts))
	return nil
}
