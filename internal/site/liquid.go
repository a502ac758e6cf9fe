package site

import (
	"regexp"
	"strings"
)

const (
	rawOpen  = "{% raw %}"
	rawClose = "{% endraw %}"

	// replaces the "{%" of a literal endraw tag; the rest of the tag
	// lands inside a fresh raw block
	rawBreak = rawClose + `{{ "{%" }}` + rawOpen
)

var endrawTag = regexp.MustCompile(`\{%(-?\s*endraw\b)`)

// ProtectLiquid wraps generated HTML in a Liquid raw block so Jekyll copies
// message content as is. Literal endraw tags inside s are split up.
func ProtectLiquid(s string) string {
	return rawOpen + endrawTag.ReplaceAllString(s, rawBreak+"$1") + rawClose
}

// UnprotectLiquid reverses ProtectLiquid for pages that are not rendered by
// Jekyll. Content outside the raw block is kept.
func UnprotectLiquid(s string) string {
	start := strings.Index(s, rawOpen)
	end := strings.LastIndex(s, rawClose)

	if start < 0 || end < start+len(rawOpen) {
		return s
	}

	inner := strings.ReplaceAll(s[start+len(rawOpen):end], rawBreak, "{%")

	return s[:start] + inner + s[end+len(rawClose):]
}
