// Package daemon runs the preview web service until it is told to stop.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService *web.Service
	addr       string
}

// Start runs the web service and blocks until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	go func() {
		if err := d.webService.Start(d.addr); err != nil {
			log.Error().Err(err).Msg("web service stopped")
		}
	}()

	log.Info().Str("addr", d.addr).Str("url", fmt.Sprintf("http://127.0.0.1%s%s/", d.addr, d.webService.Prefix())).
		Msg("serving archive preview")

	d.webService.WaitShutdown()

	return nil
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil, nil
	}

	webService, err := web.New(cfg)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		webService: webService,
		addr:       fmt.Sprintf(":%d", cfg.Webserver.Port),
	}, nil
}
