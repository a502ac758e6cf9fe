// Package navigation builds the breadcrumbs of the preview pages.
package navigation

import (
	"path"
	"strings"
)

// Sections of the archive.
const (
	SectionIndex  = "index"
	SectionStream = "stream"
	SectionTopic  = "topic"
)

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// ForPage derives the context of an archive page from its path below the
// archive root, e.g. "stream/1-general/topic/47413hello.html". prefix is
// the URL path the archive is served under and siteTitle names the index.
func ForPage(prefix, rel, pageTitle, siteTitle string) *Context {
	home := path.Join("/", prefix, "index.html")
	parts := strings.Split(strings.Trim(rel, "/"), "/")

	switch {
	case len(parts) == 4 && parts[0] == "stream" && parts[2] == "topic": //nolint:mnd
		stream, topic := parts[1], strings.TrimSuffix(parts[3], ".html")

		streamTitle, _, _ := strings.Cut(pageTitle, " > ")

		return NewContext(pageTitle, SectionTopic, stream+"/"+topic).
			AddBreadcrumb(siteTitle, home, false).
			AddBreadcrumb(streamTitle, path.Join("/", prefix, "stream", stream, "index.html"), false).
			AddBreadcrumb(strings.TrimPrefix(pageTitle, streamTitle+" > "), "", true)

	case len(parts) == 3 && parts[0] == "stream": //nolint:mnd
		return NewContext(pageTitle, SectionStream, parts[1]).
			AddBreadcrumb(siteTitle, home, false).
			AddBreadcrumb(pageTitle, "", true)

	default:
		return NewContext(pageTitle, SectionIndex, rel).
			AddBreadcrumb(siteTitle, home, rel == "index.html")
	}
}
