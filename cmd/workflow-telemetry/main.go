package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/workflow-telemetry/cmd/workflow-telemetry/commands"
	"git.home.luguber.info/inful/workflow-telemetry/internal/config"
	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/version"
)

func main() {
	// .env values must be in the environment before kong resolves env tags.
	if err := config.LoadEnvFiles(nil, config.DefaultEnvFiles...); err != nil {
		slog.Warn("Failed to load environment file", "error", err)
	}

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("workflow-telemetry"),
		kong.Description("Report GitHub Actions job step telemetry to Prometheus and the job summary."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default()}
	if err := parser.Run(global, cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
