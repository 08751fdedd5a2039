package server

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/eregs/regcore/internal/config"
	"github.com/eregs/regcore/internal/parts"
	"github.com/eregs/regcore/pkg/search"
)

// Server contains the shared dependencies handed to every API handler.
type Server struct {
	// Config is the parsed server configuration.
	Config *config.Config

	// DB is the database for the server.
	DB *gorm.DB

	// Parts is the snapshot write service (upsert + index rebuild).
	Parts *parts.Service

	// Search is the full-text query engine.
	Search *search.Engine

	// Logger is the logger for the server.
	Logger hclog.Logger
}
