// Package site turns the JSON cache into the static archive pages.
//
// Every page is plain HTML preceded by Jekyll front matter. Nothing is
// written outside the html directory handed to the Builder.
package site

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zulip-archive/zulip-archive/internal/archive"
	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/links"
	"github.com/zulip-archive/zulip-archive/internal/metrics"
	"github.com/zulip-archive/zulip-archive/internal/render"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Options controls page layout and placement.
type Options struct {
	Title          string
	HTMLDirectory  string
	HTMLRoot       string
	Layout         string
	PageHeadHTML   string
	PageFooterHTML string
}

// Result summarizes a build.
type Result struct {
	Streams int
	Topics  int
	Pages   int
}

// Builder writes the archive pages for one profile.
type Builder struct {
	store    *archive.Store
	renderer *render.Renderer
	opts     Options
}

// NewBuilder returns a Builder reading from store.
func NewBuilder(store *archive.Store, renderer *render.Renderer, opts Options) *Builder {
	return &Builder{store: store, renderer: renderer, opts: opts}
}

// Build writes index.html, one topic list per stream and one page per topic.
func (b *Builder) Build(ctx context.Context) (Result, error) {
	var res Result

	if b.opts.HTMLDirectory == "" {
		return res, errors.Wrap(ErrOutsideHTMLDirectory, "no html directory")
	}

	idx, err := b.store.LoadIndex()
	if err != nil {
		return res, err
	}

	footer, err := b.renderer.LastUpdatedFooter(idx)
	if err != nil {
		return res, err
	}

	body, err := b.renderer.StreamListPage(idx)
	if err != nil {
		return res, err
	}

	if err := b.writePage("index", "index.html", b.opts.Title, body+footer); err != nil {
		return res, err
	}

	res.Pages++

	for _, stream := range idx.SortedStreams() {
		if err := ctx.Err(); err != nil {
			return res, errors.Wrap(err, "build aborted")
		}

		si := idx.Streams[stream]
		sanitizedStream := links.SanitizeStream(stream, si.ID)

		log.Info().Str("stream", stream).Int("topics", len(si.TopicData)).Msg("building stream")

		body, err := b.renderer.TopicListPage(stream, si)
		if err != nil {
			return res, err
		}

		rel := path.Join("stream", sanitizedStream, "index.html")
		if err := b.writePage("stream", rel, stream, body+footer); err != nil {
			return res, err
		}

		res.Pages++

		for _, topic := range si.SortedTopics() {
			msgs, err := b.store.LoadTopic(stream, si.ID, topic)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					log.Warn().Str("stream", stream).Str("topic", topic).Msg("topic listed in the index has no json file")
					continue
				}

				return res, err
			}

			body, err := b.renderer.TopicPage(stream, si.ID, topic, msgs)
			if err != nil {
				return res, err
			}

			rel := path.Join("stream", sanitizedStream, "topic", links.SanitizeTopic(topic)+".html")
			if err := b.writePage("topic", rel, stream+" > "+topic, body+footer); err != nil {
				return res, err
			}

			res.Topics++
			res.Pages++
		}

		res.Streams++
	}

	return res, nil
}

// writePage writes rel below the html directory with front matter and the
// configured head and footer HTML around body.
func (b *Builder) writePage(kind, rel, title, body string) error {
	fm, err := MarshalFrontMatter(FrontMatter{
		Layout:    b.opts.Layout,
		Title:     title,
		Permalink: path.Join("/", b.opts.HTMLRoot, rel),
	})
	if err != nil {
		return err
	}

	var sb strings.Builder

	sb.Write(fm)

	if b.opts.PageHeadHTML != "" {
		sb.WriteString(b.opts.PageHeadHTML)
		sb.WriteString("\n")
	}

	// head and footer are site owned and may use Liquid, message content may not
	sb.WriteString(ProtectLiquid(body))

	if b.opts.PageFooterHTML != "" {
		sb.WriteString("\n")
		sb.WriteString(b.opts.PageFooterHTML)
	}

	sb.WriteString("\n")

	target, err := b.resolve(rel)
	if err != nil {
		return err
	}

	if err := writeFile(target, []byte(sb.String())); err != nil {
		return err
	}

	metrics.PagesWritten.WithLabelValues(kind).Inc()
	log.Debug().Str("path", target).Msg("page written")

	return nil
}

// resolve maps a slash separated page path into the html directory and
// refuses anything that would land outside of it.
func (b *Builder) resolve(rel string) (string, error) {
	return resolveInside(b.opts.HTMLDirectory, rel)
}

func resolveInside(root, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))

	back, err := filepath.Rel(root, target)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", errors.Wrap(ErrOutsideHTMLDirectory, rel)
	}

	return target, nil
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), dirPerm); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(name))
	}

	return errors.Wrapf(os.WriteFile(name, data, filePerm), "failed to write %s", name)
}

// OptionsFromConfig takes the page options of the active profile.
func OptionsFromConfig(c *config.Config) Options {
	return Options{
		Title:          c.Archive.Title,
		HTMLDirectory:  c.Active().HTMLDirectory,
		HTMLRoot:       c.Archive.HTMLRoot,
		Layout:         c.Archive.Layout,
		PageHeadHTML:   c.Archive.PageHeadHTML,
		PageFooterHTML: c.Archive.PageFooterHTML,
	}
}
