// Package stdlogger adapts the global zerolog logger to printf style logger interfaces,
// e.g. gorm's logger.Writer.
package stdlogger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
	level     zerolog.Level
}

// NewComponent returns a Logger tagging every event with component and logging Printf at level.
func NewComponent(component string, level zerolog.Level) *Logger {
	return &Logger{component: component, level: level}
}

// Printf implements gorm's logger.Writer.
func (l *Logger) Printf(format string, args ...any) {
	event := log.WithLevel(l.level)
	if l.component != "" {
		event = event.Str("component", l.component)
	}

	event.Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
