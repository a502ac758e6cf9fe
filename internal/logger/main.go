// Package logger configures the global zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SplitWriter routes warn and above to Errors and everything else to Info.
type SplitWriter struct {
	Info   io.Writer
	Errors io.Writer
}

// Write implements io.Writer. Events without a level go to Info.
func (sw *SplitWriter) Write(p []byte) (int, error) {
	return sw.Info.Write(p) //nolint:wrapcheck
}

// WriteLevel implements zerolog.LevelWriter.
func (sw *SplitWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	switch {
	case l == zerolog.Disabled:
		return 0, nil
	case l >= zerolog.WarnLevel && l != zerolog.NoLevel:
		return sw.Errors.Write(p) //nolint:wrapcheck
	default:
		return sw.Info.Write(p) //nolint:wrapcheck
	}
}

// Init replaces log.Logger according to cfg.
// With neither console nor file enabled nothing is written at all.
func Init(cfg Log) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrap(err, fmt.Sprintf("log level %s is not supported", cfg.Level))
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	zerolog.SetGlobalLevel(level)
	zerolog.ErrorHandler = ErrorHandler

	stack := level == zerolog.TraceLevel
	if stack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
	}

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		w, err := newRollingFiles(cfg.File)
		if err != nil {
			return err
		}

		writers = append(writers, w)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(NewPrometheusHook(cfg.ServiceName)).
		With().
		Timestamp()

	if cfg.ReportCaller {
		ctx = ctx.Caller()

		if stack {
			ctx = ctx.Stack()
		}
	}

	log.Logger = ctx.Logger()

	return nil
}

// NewConsoleWriter writes info to stdout and warnings / errors to stderr.
func NewConsoleWriter(cfg Log) io.Writer {
	sw := &SplitWriter{Info: os.Stdout, Errors: os.Stderr}

	if cfg.Console.Pretty {
		sw.Info = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: zerolog.TimeFieldFormat}
		sw.Errors = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: zerolog.TimeFieldFormat}
	}

	return sw
}

// RollingFile returns a lumberjack logger for name inside the configured log directory.
func RollingFile(f File, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(f.Path, name),
		MaxSize:    f.Rotation.MaxSize,
		MaxAge:     f.Rotation.MaxAge,
		MaxBackups: f.Rotation.MaxBackups,
	}
}

func newRollingFiles(f File) (io.Writer, error) {
	if err := os.MkdirAll(f.Path, 0o750); err != nil { //nolint:mnd
		return nil, errors.Wrapf(err, "can't create log directory %s", f.Path)
	}

	return &SplitWriter{
		Info:   RollingFile(f, f.InfoLog),
		Errors: RollingFile(f, f.ErrorLog),
	}, nil
}
