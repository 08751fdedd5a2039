// Package serve implements the HTTP server command.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/eregs/regcore/internal/api"
	"github.com/eregs/regcore/internal/cmd/base"
	"github.com/eregs/regcore/internal/config"
	"github.com/eregs/regcore/internal/db"
	"github.com/eregs/regcore/internal/migrate"
	"github.com/eregs/regcore/internal/parts"
	"github.com/eregs/regcore/internal/server"
	"github.com/eregs/regcore/pkg/search"
)

type Command struct {
	*base.Command

	flagConfig string
}

func (c *Command) Synopsis() string {
	return "Run the API server"
}

func (c *Command) Help() string {
	return `Usage: regcore serve -config=<path>

  Starts the regulation store API server. Applies any pending schema
  migrations on startup, then serves until interrupted.

` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet("serve")
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

	log := c.Log.Named("server")
	log.SetLevel(hclog.LevelFromString(cfg.LogLevel))

	database, err := db.NewDB(cfg.Postgres, log)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	sqlDB, err := database.DB()
	if err != nil {
		c.UI.Error(fmt.Sprintf("error getting database handle: %v", err))
		return 1
	}
	if err := migrate.RunMigrations(sqlDB); err != nil {
		c.UI.Error(fmt.Sprintf("error applying migrations: %v", err))
		return 1
	}

	srv := server.Server{
		Config: cfg,
		DB:     database,
		Parts:  parts.NewService(database, log),
		Search: search.NewEngine(database, log),
		Logger: log,
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(srv),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.UI.Error(fmt.Sprintf("server error: %v", err))
			return 1
		}
	case sig := <-shutdownCh:
		log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			c.UI.Error(fmt.Sprintf("error during shutdown: %v", err))
			return 1
		}
	}

	return 0
}
