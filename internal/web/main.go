// Package web serves a local preview of the generated archive.
//
// Pages are read from the html directory, their front matter is stripped and
// the body is wrapped in a small layout, roughly what Jekyll would produce.
package web

import (
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/zulip-archive/zulip-archive/internal/config"
	fiberlogger "github.com/zulip-archive/zulip-archive/internal/logger/adapter/fiber"
	"github.com/zulip-archive/zulip-archive/internal/site"
	"github.com/zulip-archive/zulip-archive/internal/web/navigation"
)

const (
	checkAlivePath = "/checkalive"
	metricsPath    = "/metrics"
	stylesheetPath = "/assets/archive.css"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	htmlDir      string
	prefix       string
	stylesheet   []byte
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 on %s for %d seconds",
			checkAlivePath,
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped")
}

// Prefix is the URL path the archive is served under, "" for the server root.
func (s *Service) Prefix() string {
	return s.prefix
}

// New creates the preview server for the active profile's html directory.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		panic("config cannot be nil")
	}

	stylesheet, err := site.Stylesheet()
	if err != nil {
		return nil, err
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in dev mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize:        8192,
			AppName:               "zulip-archive",
			CaseSensitive:         true,
			Prefork:               false,
			Immutable:             true,
			Views:                 templateEngine,
			DisableStartupMessage: true,
		},
	)

	app.Use(fiberlogger.New(fiberlogger.Config{
		Log:      cfg.Log,
		SkipURIs: []string{checkAlivePath, metricsPath},
	}))

	prefix := strings.Trim(cfg.Archive.HTMLRoot, "/")
	if prefix != "" {
		prefix = "/" + prefix
	}

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.Webserver.ShutDownTime == 0,
		htmlDir:      cfg.Active().HTMLDirectory,
		prefix:       prefix,
		stylesheet:   stylesheet,
	}
	service.alive.Store(true)

	app.Get(checkAlivePath, service.checkAlive)
	app.Get(metricsPath, adaptor.HTTPHandler(promhttp.Handler()))
	app.Get(stylesheetPath, service.serveStylesheet)

	if prefix != "" {
		app.Get("/", func(c *fiber.Ctx) error {
			return c.Redirect(prefix + "/index.html")
		})
	}

	app.Get(prefix+"/*", service.servePage)

	// everything that is not a page, e.g. images or the json of a topic
	app.Use(prefix,
		filesystem.New(
			filesystem.Config{
				Root:   http.Dir(service.htmlDir),
				Browse: cfg.Webserver.BrowseStatic,
			},
		),
	)

	return service, nil
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

func (s *Service) serveStylesheet(c *fiber.Ctx) error {
	c.Type("css")

	return c.Send(s.stylesheet)
}

// servePage renders an archive page inside the preview layout.
func (s *Service) servePage(c *fiber.Ctx) error {
	rel := c.Params("*")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel += "index.html"
	}

	if path.Ext(rel) != ".html" {
		return c.Next()
	}

	// path.Clean on a rooted path never climbs above the root
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")

	raw, err := os.ReadFile(filepath.Join(s.htmlDir, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fiber.ErrNotFound
		}

		return err
	}

	fm, body, err := site.SplitFrontMatter(raw)
	if err != nil {
		log.Warn().Err(err).Str("page", rel).Msg("serving page without layout")
		return c.Type("html").Send(raw)
	}

	title := fm.Title
	if title == "" {
		title = s.cfg.Archive.Title
	}

	return c.Render("page", fiber.Map{
		"Content":   template.HTML(site.UnprotectLiquid(string(body))), //nolint:gosec
		"Nav":       navigation.ForPage(s.prefix, rel, title, s.cfg.Archive.Title),
		"SiteTitle": s.cfg.Archive.Title,
		"Profile":   s.cfg.ProfileName(),
	}, "layout")
}
