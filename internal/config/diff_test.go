package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	defaults := Default()
	active := Default()
	active.Prod.SiteURL = "https://example.github.io"

	out, err := Diff(&defaults, &active, false)
	require.NoError(t, err)

	assert.Contains(t, out, `- `)
	assert.Contains(t, out, `+ `)
	assert.Contains(t, out, `https://example.github.io`)

	var added, removed int

	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "+ "):
			added++
			assert.Contains(t, line, "https://example.github.io")
		case strings.HasPrefix(line, "- "):
			removed++
			assert.Contains(t, line, Placeholder)
		}
	}

	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)
}

func TestDiffIdentical(t *testing.T) {
	c := Default()

	out, err := Diff(&c, &c, false)
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.True(t, strings.HasPrefix(line, "  "), line)
	}
}

func TestDiffColored(t *testing.T) {
	defaults := Default()
	active := Default()
	active.Archive.Title = "Colored"

	out, err := Diff(&defaults, &active, true)
	require.NoError(t, err)

	assert.Contains(t, out, "\x1b[")
}
