package app

import (
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zulip-archive/zulip-archive/internal/db"
	"github.com/zulip-archive/zulip-archive/internal/db/controller/run"
	"github.com/zulip-archive/zulip-archive/internal/db/models"
)

// openHistory returns nil when the history is disabled or can't be opened.
// A broken history never fails a run.
func openHistory() *gorm.DB {
	if !cfg.History.Enabled {
		return nil
	}

	gdb, err := db.Open(&cfg)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.History.Path).Msg("run history unavailable")
		return nil
	}

	return gdb
}

func closeHistory(gdb *gorm.DB) {
	if gdb == nil {
		return
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// recorded runs fn and stores its outcome in the history.
func recorded(kind, mode string, fn func() (run.Counts, error)) error {
	gdb := openHistory()
	defer closeHistory(gdb)

	var entry *models.Run

	if gdb != nil {
		var err error

		if entry, err = run.Start(gdb, kind, mode, cfg.ProfileName(), time.Now()); err != nil {
			log.Warn().Err(err).Msg("can't record run")
		}
	}

	counts, runErr := fn()

	if entry != nil {
		if err := run.Finish(gdb, entry, counts, runErr, time.Now()); err != nil {
			log.Warn().Err(err).Msg("can't record run")
		}
	}

	return runErr
}
