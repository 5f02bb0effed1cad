package commands

import (
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/workflow-telemetry/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct {
	stdout io.Writer
}

func (cmd *VersionCmd) Run(_ *Global, _ *CLI) error {
	out := cmd.stdout
	if out == nil {
		out = os.Stdout
	}
	_, err := fmt.Fprintln(out, version.String())
	return err
}
