// Package importcmd implements the bulk content import command.
package importcmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/eregs/regcore/internal/cmd/base"
	"github.com/eregs/regcore/internal/config"
	"github.com/eregs/regcore/internal/db"
	"github.com/eregs/regcore/internal/importer"
	"github.com/eregs/regcore/internal/parts"
)

type Command struct {
	*base.Command

	flagConfig string
	flagPath   string
}

func (c *Command) Synopsis() string {
	return "Bulk-load regulation content from an import tree"
}

func (c *Command) Help() string {
	return `Usage: regcore import -config=<path> -path=<dir>

  Loads the manifest-driven import tree at -path into the store. Entries
  are loaded independently; failures are reported together at the end
  without aborting the run.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet("import")
	f.StringVar(&c.flagConfig, "config", "", "Path to the HCL configuration file.")
	f.StringVar(&c.flagPath, "path", "", "Directory containing manifest.yaml and payload files.")
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagPath == "" {
		c.UI.Error("the -path flag is required")
		return 1
	}

	cfg, err := config.NewConfig(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}

	log := c.Log.Named("import")
	database, err := db.NewDB(cfg.Postgres, log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	imp := importer.New(afero.NewOsFs(), database, parts.NewService(database, log), log)
	report, err := imp.Load(context.Background(), c.flagPath)
	if report != nil {
		c.UI.Info(fmt.Sprintf("imported %d parts, %d notices, %d layers, %d diffs",
			report.Parts, report.Notices, report.Layers, report.Diffs))
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("import finished with errors:\n%v", err))
		return 1
	}
	return 0
}
