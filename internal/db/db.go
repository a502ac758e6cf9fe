// Package db opens the sqlite run history.
package db

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/db/dsn"
	"github.com/zulip-archive/zulip-archive/internal/db/models"
	"github.com/zulip-archive/zulip-archive/internal/logger/adapter/stdlogger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Open connects to the history database and migrates its schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	return OpenDSN(dsn.Create(cfg))
}

// OpenDSN is Open for an explicit data source, e.g. ":memory:" in tests.
func OpenDSN(source string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(source), &gorm.Config{
		Logger: gormlogger.New(
			stdlogger.NewComponent("gorm", zerolog.WarnLevel),
			gormlogger.Config{
				SlowThreshold:             slowQueryThreshold,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open history database")
	}

	if err = db.AutoMigrate(&models.Run{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate history database")
	}

	return db, nil
}
