package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/logfields"
	"git.home.luguber.info/inful/workflow-telemetry/internal/marker"
)

// MarkCmd implements the 'mark' command, run by background work to record when it
// really started or finished.
type MarkCmd struct {
	Name string `arg:"" help:"Background step name, without the (background) suffix"`
	Kind string `arg:"" enum:"start,started,started_at,end,completed,completed_at" help:"Which bound to record: start or end"`
	Dir  string `env:"INPUT_MARKER_DIR" default:"/tmp" help:"Marker directory"`
	At   string `help:"Timestamp to record instead of now (RFC 3339 or epoch)"`

	now func() time.Time
}

// Run executes the mark command.
func (cmd *MarkCmd) Run(g *Global, _ *CLI) error {
	kind, err := marker.ParseKind(cmd.Kind)
	if err != nil {
		return err
	}
	if cmd.Name == "" {
		return errors.ValidationFailed("name", "must not be empty")
	}

	ts := time.Now()
	if cmd.now != nil {
		ts = cmd.now()
	}
	if cmd.At != "" {
		ts, err = marker.ParseTimestamp(cmd.At)
		if err != nil {
			return errors.ValidationFailed("at", fmt.Sprintf("unparseable timestamp %q", cmd.At))
		}
	}

	dir := marker.NewDir(cmd.Dir)
	if err := dir.Write(cmd.Name, kind, ts); err != nil {
		return err
	}
	g.Logger.Info("Marker written", logfields.Marker(dir.Path(cmd.Name, kind)), logfields.StepName(cmd.Name))
	return nil
}
