package db

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/eregs/regcore/internal/config"
	"github.com/eregs/regcore/pkg/database"
)

// NewDB returns a database connection for the server. The schema is
// expected to be pre-migrated (see the migrate command).
func NewDB(cfg *config.Postgres, log hclog.Logger) (*gorm.DB, error) {
	return database.Connect(database.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		DBName:   cfg.DBName,
		SSLMode:  cfg.SSLMode,
	}, log)
}
