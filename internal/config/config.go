// Package config reads the archive settings file (etc/settings.toml) and
// selects the dev or prod profile.
package config

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	// DefaultPath is used when no --config flag is given.
	DefaultPath = "./etc/settings.toml"

	// ProdEnv selects the prod profile when set to a non-empty value.
	ProdEnv = "PROD_ARCHIVE"

	// JSONEnv may hold a JSON document merged over the settings file.
	JSONEnv = "ZULIP_ARCHIVE_CONFIG_JSON"

	envPrefix = "ZULIP_ARCHIVE"

	// SecretMask replaces credentials in dumps.
	SecretMask = "********"
)

// ReadConfig reads the settings file at path, applies environment overrides
// and validates the result for the active profile.
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = DefaultPath
	}

	loadDotEnv()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the usual zuliprc style variable names win over the prefixed ones,
	// viper takes the first variable that is set
	_ = v.BindEnv("zulip.site", "ZULIP_SITE", envPrefix+"_ZULIP_SITE")
	_ = v.BindEnv("zulip.email", "ZULIP_EMAIL", envPrefix+"_ZULIP_EMAIL")
	_ = v.BindEnv("zulip.api_key", "ZULIP_API_KEY", envPrefix+"_ZULIP_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "failed to read settings file %s", path)
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode settings")
	}

	if configAsJSON := os.Getenv(JSONEnv); configAsJSON != "" {
		if err := json.Unmarshal([]byte(configAsJSON), &c); err != nil {
			return Config{}, errors.Wrapf(err, "failed to decode %s", JSONEnv)
		}
	}

	c.SetProduction(os.Getenv(ProdEnv) != "")

	return c, Validate(&c)
}

// loadDotEnv loads ./.env if present. Existing variables are not overwritten.
func loadDotEnv() {
	err := godotenv.Load()

	switch {
	case err == nil:
		log.Debug().Msg("loaded .env")
	case errors.Is(err, fs.ErrNotExist):
	default:
		log.Warn().Err(err).Msg("can't read .env")
	}
}

// redacted returns a copy of c that is safe to print.
func redacted(c *Config) Config {
	out := *c
	if out.Zulip.APIKey != "" {
		out.Zulip.APIKey = SecretMask
	}

	return out
}

// DumpConfig config as TOML string. The API key is masked.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	enc := toml.NewEncoder(&buffer)
	enc.SetIndentTables(true)

	if err := enc.Encode(redacted(c)); err != nil {
		return "", errors.Wrap(err, "failed to encode settings as toml")
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON string. The API key is masked.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	enc := json.NewEncoder(&buffer)
	enc.SetIndent("", "  ")

	if err := enc.Encode(redacted(c)); err != nil {
		return "", errors.Wrap(err, "failed to encode settings as json")
	}

	return buffer.String(), nil
}

// IsPlaceholder reports whether a value was left unset or at Placeholder.
func IsPlaceholder(s string) bool {
	s = strings.TrimSpace(s)

	return s == "" || strings.Contains(s, Placeholder)
}

// Validate checks struct constraints and the production guardrail.
// A production run with placeholder values fails here, before anything is written.
func Validate(c *Config) error {
	invalidErrMessage := "invalid settings"

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, invalidErrMessage)
	}

	if len(c.Archive.IncludedStreams) == 0 {
		return errors.Wrap(ErrNoIncludedStreams, invalidErrMessage)
	}

	if c.Production() {
		if IsPlaceholder(c.Prod.SiteURL) {
			return errors.Wrap(ErrProdSiteURLUnset, invalidErrMessage)
		}

		if IsPlaceholder(c.Prod.HTMLDirectory) {
			return errors.Wrap(ErrProdHTMLDirectoryUnset, invalidErrMessage)
		}
	}

	if !IsPlaceholder(c.Prod.HTMLDirectory) && sameDirectory(c.Dev.HTMLDirectory, c.Prod.HTMLDirectory) {
		return errors.Wrap(ErrHTMLDirectoryCollision, invalidErrMessage)
	}

	active := c.Active()
	if IsPlaceholder(active.HTMLDirectory) {
		return errors.Wrapf(ErrHTMLDirectoryUnset, "%s: %s.html_directory", invalidErrMessage, c.ProfileName())
	}

	if err := validator.New().Var(active.SiteURL, "required,url"); err != nil ||
		!(strings.HasPrefix(active.SiteURL, "http://") || strings.HasPrefix(active.SiteURL, "https://")) {
		return errors.Wrapf(ErrInvalidSiteURL, "%s: %s.site_url %q", invalidErrMessage, c.ProfileName(), active.SiteURL)
	}

	if c.Webserver.ShutDownTime < 0 {
		c.Webserver.ShutDownTime = 0
	}

	return nil
}

func sameDirectory(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}

	return absA == absB
}
