package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/zulip-archive/zulip-archive/internal/logger"
)

// Placeholder marks a value the user still has to fill in.
const Placeholder = "CHANGE_ME"

// Default returns the settings used when the settings file leaves a key out.
func Default() Config {
	return Config{
		Archive: Archive{
			Title:           "Zulip Chat Archive",
			JSONDirectory:   "./zulip_json",
			HTMLRoot:        "archive",
			IncludedStreams: []string{"*"},
			ExcludedStreams: []string{},
			Layout:          "archive",
		},
		Dev: Profile{
			SiteURL:       "http://127.0.0.1:4000",
			HTMLDirectory: "./archive",
		},
		Prod: Profile{
			SiteURL:       Placeholder,
			HTMLDirectory: Placeholder,
		},
		Zulip: Zulip{
			Timeout:           30 * time.Second, //nolint:mnd
			RequestsPerSecond: 5,                //nolint:mnd
			MaxAttempts:       10,               //nolint:mnd
		},
		Log: logger.Log{
			Level:       "info",
			ServiceName: "zulip-archive",
			Console:     logger.Console{Enabled: true, Pretty: true},
			File: logger.File{
				Path:      "./log",
				InfoLog:   "info.log",
				ErrorLog:  "error.log",
				AccessLog: "access.log",
				Rotation:  logger.Rotation{MaxSize: 10, MaxBackups: 3, MaxAge: 28}, //nolint:mnd
			},
		},
		History: History{
			Enabled: true,
			Path:    "./zulip_archive.db",
		},
		Webserver: Webserver{
			Port:         4000, //nolint:mnd
			ShutDownTime: 0,
		},
		Publish: Publish{
			Remote:  "origin",
			Branch:  "master",
			Message: "Update archive",
		},
	}
}

// setDefaults registers every key of Default with viper, which also makes
// AutomaticEnv see them.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("dev_mode", d.DevMode)

	v.SetDefault("archive.title", d.Archive.Title)
	v.SetDefault("archive.json_directory", d.Archive.JSONDirectory)
	v.SetDefault("archive.html_root", d.Archive.HTMLRoot)
	v.SetDefault("archive.included_streams", d.Archive.IncludedStreams)
	v.SetDefault("archive.excluded_streams", d.Archive.ExcludedStreams)
	v.SetDefault("archive.page_head_html", d.Archive.PageHeadHTML)
	v.SetDefault("archive.page_footer_html", d.Archive.PageFooterHTML)
	v.SetDefault("archive.layout", d.Archive.Layout)

	for name, p := range map[string]Profile{"dev": d.Dev, "prod": d.Prod} {
		v.SetDefault(name+".site_url", p.SiteURL)
		v.SetDefault(name+".zulip_icon_url", p.ZulipIconURL)
		v.SetDefault(name+".html_directory", p.HTMLDirectory)
	}

	v.SetDefault("zulip.site", d.Zulip.Site)
	v.SetDefault("zulip.email", d.Zulip.Email)
	v.SetDefault("zulip.api_key", d.Zulip.APIKey)
	v.SetDefault("zulip.timeout", d.Zulip.Timeout)
	v.SetDefault("zulip.requests_per_second", d.Zulip.RequestsPerSecond)
	v.SetDefault("zulip.max_attempts", d.Zulip.MaxAttempts)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.report_caller", d.Log.ReportCaller)
	v.SetDefault("log.access_log", d.Log.AccessLog)
	v.SetDefault("log.service_name", d.Log.ServiceName)
	v.SetDefault("log.console.enabled", d.Log.Console.Enabled)
	v.SetDefault("log.console.pretty", d.Log.Console.Pretty)
	v.SetDefault("log.file.enabled", d.Log.File.Enabled)
	v.SetDefault("log.file.path", d.Log.File.Path)
	v.SetDefault("log.file.info", d.Log.File.InfoLog)
	v.SetDefault("log.file.error", d.Log.File.ErrorLog)
	v.SetDefault("log.file.access", d.Log.File.AccessLog)
	v.SetDefault("log.file.rotation.max_size", d.Log.File.Rotation.MaxSize)
	v.SetDefault("log.file.rotation.max_backups", d.Log.File.Rotation.MaxBackups)
	v.SetDefault("log.file.rotation.max_age", d.Log.File.Rotation.MaxAge)

	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)

	v.SetDefault("webserver.port", d.Webserver.Port)
	v.SetDefault("webserver.shutdown_time", d.Webserver.ShutDownTime)
	v.SetDefault("webserver.browse_static", d.Webserver.BrowseStatic)

	v.SetDefault("publish.repo_directory", d.Publish.RepoDirectory)
	v.SetDefault("publish.remote", d.Publish.Remote)
	v.SetDefault("publish.branch", d.Publish.Branch)
	v.SetDefault("publish.message", d.Publish.Message)
}
