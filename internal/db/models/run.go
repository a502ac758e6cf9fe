// Package models contains database model definitions.
package models

import (
	"time"
)

// Run kinds recorded in the history.
const (
	KindPopulate = "populate"
	KindBuild    = "build"
	KindPublish  = "publish"
)

// Run is one populate, build or publish invocation.
type Run struct {
	ID       string     `gorm:"primaryKey;size:36"`
	Kind     string     `gorm:"index;size:16"`
	Mode     string     `gorm:"size:16"` // full / incremental for populate runs
	Profile  string     `gorm:"size:8"`  // dev / prod
	Started  time.Time  `gorm:"index"`
	Finished *time.Time
	Streams  int
	Messages int
	Pages    int
	Error    string
}

// Done reports whether Finish was called.
func (r *Run) Done() bool {
	return r.Finished != nil
}

// Failed reports whether the run finished with an error.
func (r *Run) Failed() bool {
	return r.Error != ""
}

// Duration is the wall time of a finished run, zero otherwise.
func (r *Run) Duration() time.Duration {
	if r.Finished == nil {
		return 0
	}

	return r.Finished.Sub(r.Started)
}
