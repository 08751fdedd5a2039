// Package migrate implements the schema migration command.
package migrate

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/eregs/regcore/internal/cmd/base"
	"github.com/eregs/regcore/internal/config"
	"github.com/eregs/regcore/internal/migrate"
	"github.com/eregs/regcore/pkg/database"
)

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Apply pending schema migrations"
}

func (c *Command) Help() string {
	return `Usage: regcore migrate -config=<path>

  Applies any pending schema migrations to the configured database and
  exits. The serve command also migrates on startup; this command exists
  for deployments that migrate as a separate step.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet("migrate")
	f.StringVar(&c.flagConfig, "config", "", "Path to the HCL configuration file.")
	return f
}

func (c *Command) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}

	cfg, err := config.NewConfig(c.flagConfig)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error loading configuration: %v", err))
		return 1
	}

	dsn := database.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	}.DSN()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error opening database: %v", err))
		return 1
	}
	defer db.Close()

	if err := migrate.RunMigrations(db); err != nil {
		c.UI.Error(fmt.Sprintf("error applying migrations: %v", err))
		return 1
	}

	c.UI.Info("migrations applied")
	return 0
}
