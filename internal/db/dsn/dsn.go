// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"

	"github.com/zulip-archive/zulip-archive/internal/config"
)

const busyTimeoutMillis = 5000

// Create builds the sqlite Data Source Name of the run history.
func Create(cfg *config.Config) string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis))
	params.Add("_pragma", "journal_mode(WAL)")

	return fmt.Sprintf("file:%s?%s", cfg.History.Path, params.Encode())
}
