package config

import (
	"time"

	"github.com/zulip-archive/zulip-archive/internal/logger"
)

// Archive holds the settings shared by both profiles.
type Archive struct {
	Title           string   `mapstructure:"title" toml:"title" json:"title" validate:"required"`
	JSONDirectory   string   `mapstructure:"json_directory" toml:"json_directory" json:"json_directory" validate:"required"` //nolint:lll
	HTMLRoot        string   `mapstructure:"html_root" toml:"html_root" json:"html_root"`
	IncludedStreams []string `mapstructure:"included_streams" toml:"included_streams" json:"included_streams"`
	ExcludedStreams []string `mapstructure:"excluded_streams" toml:"excluded_streams" json:"excluded_streams"`
	PageHeadHTML    string   `mapstructure:"page_head_html" toml:"page_head_html" json:"page_head_html"`
	PageFooterHTML  string   `mapstructure:"page_footer_html" toml:"page_footer_html" json:"page_footer_html"`
	Layout          string   `mapstructure:"layout" toml:"layout" json:"layout"` // jekyll layout in front matter
}

// Profile holds the values that differ between a local and a production build.
type Profile struct {
	SiteURL       string `mapstructure:"site_url" toml:"site_url" json:"site_url"`
	ZulipIconURL  string `mapstructure:"zulip_icon_url" toml:"zulip_icon_url" json:"zulip_icon_url"`
	HTMLDirectory string `mapstructure:"html_directory" toml:"html_directory" json:"html_directory"`
}

// Zulip holds the API connection settings.
type Zulip struct {
	Site              string        `mapstructure:"site" toml:"site" json:"site" validate:"omitempty,url"`
	Email             string        `mapstructure:"email" toml:"email" json:"email" validate:"omitempty,email"`
	APIKey            string        `mapstructure:"api_key" toml:"api_key" json:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout" toml:"timeout" json:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" toml:"requests_per_second" json:"requests_per_second" validate:"gte=0"` //nolint:lll
	MaxAttempts       int           `mapstructure:"max_attempts" toml:"max_attempts" json:"max_attempts" validate:"gte=1"`                     //nolint:lll
}

// History configures the sqlite run log.
type History struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" toml:"path" json:"path" validate:"required_if=Enabled true"`
}

// Webserver configures the local preview server.
type Webserver struct {
	Port         int  `mapstructure:"port" toml:"port" json:"port" validate:"gte=1,lte=65535"`
	ShutDownTime int  `mapstructure:"shutdown_time" toml:"shutdown_time" json:"shutdown_time"` // seconds
	BrowseStatic bool `mapstructure:"browse_static" toml:"browse_static" json:"browse_static"`
}

// Publish configures the push into a GitHub Pages repository.
type Publish struct {
	RepoDirectory string `mapstructure:"repo_directory" toml:"repo_directory" json:"repo_directory"` // defaults to html_directory
	Remote        string `mapstructure:"remote" toml:"remote" json:"remote"`
	Branch        string `mapstructure:"branch" toml:"branch" json:"branch"`
	Message       string `mapstructure:"message" toml:"message" json:"message"`
}

// Config overall data structure.
type Config struct {
	DevMode    bool       `mapstructure:"dev_mode" toml:"dev_mode" json:"dev_mode"`
	Archive    Archive    `mapstructure:"archive" toml:"archive" json:"archive"`
	Dev        Profile    `mapstructure:"dev" toml:"dev" json:"dev"`
	Prod       Profile    `mapstructure:"prod" toml:"prod" json:"prod"`
	Zulip      Zulip      `mapstructure:"zulip" toml:"zulip" json:"zulip"`
	Log        logger.Log `mapstructure:"log" toml:"log" json:"log"`
	History    History    `mapstructure:"history" toml:"history" json:"history"`
	Webserver  Webserver  `mapstructure:"webserver" toml:"webserver" json:"webserver"`
	Publish    Publish    `mapstructure:"publish" toml:"publish" json:"publish"`
	production bool
}

// Production reports whether PROD_ARCHIVE selected the production profile.
func (c *Config) Production() bool {
	return c.production
}

// SetProduction switches the active profile.
func (c *Config) SetProduction(prod bool) {
	c.production = prod
}

// Active returns the profile selected for this run.
func (c *Config) Active() Profile {
	if c.production {
		return c.Prod
	}

	return c.Dev
}

// ProfileName is "prod" or "dev".
func (c *Config) ProfileName() string {
	if c.production {
		return "prod"
	}

	return "dev"
}

// IncludesStream reports whether a stream passes included_streams / excluded_streams.
// Exclusion wins and "*" includes everything.
func (a Archive) IncludesStream(name string) bool {
	for _, s := range a.ExcludedStreams {
		if s == name {
			return false
		}
	}

	for _, s := range a.IncludedStreams {
		if s == "*" || s == name {
			return true
		}
	}

	return false
}
