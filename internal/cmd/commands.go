package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/eregs/regcore/internal/cmd/base"
	"github.com/eregs/regcore/internal/cmd/commands/importcmd"
	"github.com/eregs/regcore/internal/cmd/commands/migrate"
	"github.com/eregs/regcore/internal/cmd/commands/serve"
	"github.com/eregs/regcore/internal/cmd/commands/version"
)

// Commands maps subcommand names to factories. Populated by
// initCommands before the CLI runs.
var Commands map[string]cli.CommandFactory

func initCommands(log hclog.Logger, ui cli.Ui) {
	b := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"serve": func() (cli.Command, error) {
			return &serve.Command{Command: b}, nil
		},
		"migrate": func() (cli.Command, error) {
			return &migrate.Command{Command: b}, nil
		},
		"import": func() (cli.Command, error) {
			return &importcmd.Command{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}
