package site

import (
	"bytes"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

const fence = "---\n"

// FrontMatter is the YAML header Jekyll reads from every generated page.
type FrontMatter struct {
	Layout    string `yaml:"layout,omitempty"`
	Title     string `yaml:"title"`
	Permalink string `yaml:"permalink,omitempty"`
}

// MarshalFrontMatter renders fm between two "---" lines.
func MarshalFrontMatter(fm FrontMatter) ([]byte, error) {
	b, err := yaml.Marshal(fm)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode front matter")
	}

	var buf bytes.Buffer

	buf.WriteString(fence)
	buf.Write(b)
	buf.WriteString(fence)
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// SplitFrontMatter separates a page into its front matter and body.
// A page without a leading fence has an empty FrontMatter and is returned whole.
func SplitFrontMatter(page []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter

	if !bytes.HasPrefix(page, []byte(fence)) {
		return fm, page, nil
	}

	rest := page[len(fence):]

	end := bytes.Index(rest, []byte("\n"+fence))
	if end < 0 {
		return fm, nil, ErrUnterminatedFrontMatter
	}

	if err := yaml.Unmarshal(rest[:end+1], &fm); err != nil {
		return fm, nil, errors.Wrap(err, "failed to decode front matter")
	}

	body := rest[end+1+len(fence):]

	return fm, bytes.TrimPrefix(body, []byte("\n")), nil
}
