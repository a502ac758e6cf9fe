package config

import (
	"errors"
)

var (
	// ErrProdSiteURLUnset is returned for a production run while prod.site_url is unset or a placeholder.
	ErrProdSiteURLUnset = errors.New("PROD_ARCHIVE is set but prod.site_url is not configured")

	// ErrProdHTMLDirectoryUnset is returned for a production run while prod.html_directory is unset or a placeholder.
	ErrProdHTMLDirectoryUnset = errors.New("PROD_ARCHIVE is set but prod.html_directory is not configured")

	// ErrHTMLDirectoryUnset is returned if the active profile has no html_directory.
	ErrHTMLDirectoryUnset = errors.New("html_directory is not configured")

	// ErrHTMLDirectoryCollision is returned if dev and prod write into the same directory.
	ErrHTMLDirectoryCollision = errors.New("dev.html_directory and prod.html_directory must differ")

	// ErrNoIncludedStreams is returned if archive.included_streams is empty.
	ErrNoIncludedStreams = errors.New(`archive.included_streams is empty, add "*" to archive every public stream`)

	// ErrInvalidSiteURL is returned if the active site_url is not an absolute URL.
	ErrInvalidSiteURL = errors.New("site_url must be an absolute http(s) URL")
)
