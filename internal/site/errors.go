package site

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnterminatedFrontMatter is returned for a page whose front matter has no closing fence.
	ErrUnterminatedFrontMatter = errors.New("front matter is not terminated")

	// ErrOutsideHTMLDirectory guards against writing anywhere but the configured html_directory.
	ErrOutsideHTMLDirectory = errors.New("path escapes the html directory")
)
