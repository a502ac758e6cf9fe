// Package run records populate, build and publish runs in the history database.
package run

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zulip-archive/zulip-archive/internal/db/models"
)

const defaultListLimit = 20

var (
	// ErrRunNotFound is returned when no run matches.
	ErrRunNotFound = errors.New("run not found")
	// ErrRunKindEmpty is returned when starting a run without a kind.
	ErrRunKindEmpty = errors.New("run kind cannot be empty")
	// ErrRunFinished is returned when finishing a run twice.
	ErrRunFinished = errors.New("run already finished")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Counts are the totals reported when a run finishes.
type Counts struct {
	Streams  int
	Messages int
	Pages    int
}

// Start inserts an unfinished run.
func Start(db *gorm.DB, kind, mode, profile string, now time.Time) (*models.Run, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if kind == "" {
		return nil, ErrRunKindEmpty
	}

	run := &models.Run{
		ID:      uuid.NewString(),
		Kind:    kind,
		Mode:    mode,
		Profile: profile,
		Started: now.UTC(),
	}

	if result := db.Create(run); result.Error != nil {
		return nil, result.Error
	}

	return run, nil
}

// Finish stores the outcome of run. A non nil runErr marks it failed.
func Finish(db *gorm.DB, run *models.Run, counts Counts, runErr error, now time.Time) error {
	if db == nil {
		return ErrDBNil
	}
	if run == nil || run.ID == "" {
		return ErrRunNotFound
	}
	if run.Done() {
		return ErrRunFinished
	}

	finished := now.UTC()
	run.Finished = &finished
	run.Streams = counts.Streams
	run.Messages = counts.Messages
	run.Pages = counts.Pages

	if runErr != nil {
		run.Error = runErr.Error()
	}

	result := db.Model(&models.Run{}).Where("id = ?", run.ID).Updates(map[string]any{
		"finished": run.Finished,
		"streams":  run.Streams,
		"messages": run.Messages,
		"pages":    run.Pages,
		"error":    run.Error,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}

	return nil
}

// Latest returns the newest successful run of kind, or of any kind when kind is empty.
func Latest(db *gorm.DB, kind string) (*models.Run, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	query := db.Where("finished IS NOT NULL AND error = ?", "")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var run models.Run
	result := query.Order("started DESC").First(&run)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, result.Error
	}

	return &run, nil
}

// List returns up to limit runs, newest first. limit <= 0 uses a default of 20.
func List(db *gorm.DB, limit int) ([]models.Run, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	var runs []models.Run
	result := db.Order("started DESC").Limit(limit).Find(&runs)
	if result.Error != nil {
		return nil, result.Error
	}

	return runs, nil
}
