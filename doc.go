// Package main provides the entry point of zulip-archive, a tool that exports
// the public streams of a Zulip organization into a static HTML archive.
// Messages are fetched over the Zulip REST API into a JSON cache, rendered into
// pages carrying Jekyll front matter and optionally pushed to a GitHub Pages
// repository. Setting PROD_ARCHIVE selects the production profile of the
// settings file.
package main
