// Package fiber provides a zerolog access log middleware for the preview server.
package fiber

import (
	"io"
	"os"
	"slices"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zulip-archive/zulip-archive/internal/logger"
)

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Log is the logger section of the settings.
	Log logger.Log

	// SkipURIs are request URIs that are never logged, e.g. /checkalive.
	SkipURIs []string
}

// New creates the access log middleware.
// Nothing is logged unless the access file or the console access log is enabled.
func New(cfg Config) fiber.Handler {
	var writers []io.Writer

	if cfg.Log.File.Enabled && cfg.Log.File.AccessLog != "" {
		if err := os.MkdirAll(cfg.Log.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.Log.File.Path).Msg("can't create log directory")
		} else {
			writers = append(writers, logger.RollingFile(cfg.Log.File, cfg.Log.File.AccessLog))
		}
	}

	if cfg.Log.Console.Enabled && cfg.Log.AccessLog {
		if cfg.Log.Console.Pretty {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	accessLogger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(ctx *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		start := time.Now()

		chainErr := ctx.Next()
		if chainErr != nil {
			if err := ctx.App().ErrorHandler(ctx, chainErr); err != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError)
			}
		}

		if len(writers) == 0 {
			return nil
		}

		uri := string(ctx.Request().RequestURI())
		if slices.Contains(cfg.SkipURIs, uri) {
			return nil
		}

		event := accessLogger.Log().
			Str("IP", ctx.IP()).
			Int("status", ctx.Response().StatusCode()).
			Dur("elapsed", time.Since(start)).
			Str("URI", uri).
			Str("method", ctx.Method()).
			Bytes("host", ctx.Request().Host()).
			Str(fiber.HeaderUserAgent, ctx.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderReferer, ctx.Get(fiber.HeaderReferer))

		if chainErr != nil {
			event = event.Err(chainErr)
		}

		event.Send()

		return nil
	}
}
