// Package render produces the HTML fragments of the archive pages.
//
// Everything here is plain HTML, not Markdown, so the output works with any
// static site tool. Stream, topic and sender names are escaped; message
// content is already HTML rendered by the Zulip server and is kept as is.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/pkg/errors"

	"github.com/zulip-archive/zulip-archive/internal/archive"
	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/links"
	"github.com/zulip-archive/zulip-archive/internal/zulip"
)

// DateFormat is used for message dates and the last updated footer, always in UTC.
const DateFormat = "Jan 02 2006 at 15:04"

//go:embed templates/*.gohtml
var embeddedTemplates embed.FS

// Options are the profile values every page needs.
type Options struct {
	SiteURL      string
	HTMLRoot     string
	ZulipURL     string
	ZulipIconURL string
}

// Renderer renders fragments through the embedded templates.
type Renderer struct {
	opts   Options
	engine *html.Engine
}

// New loads the embedded templates.
func New(opts Options) (*Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded templates")
	}

	engine := html.NewFileSystem(http.FS(sub), ".gohtml")
	if err := engine.Load(); err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	return &Renderer{opts: opts, engine: engine}, nil
}

func (r *Renderer) render(name string, data any) (string, error) {
	var buf bytes.Buffer

	if err := r.engine.Render(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "failed to render %s", name)
	}

	return buf.String(), nil
}

// FormatDate formats unix seconds with DateFormat.
func FormatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(DateFormat)
}

// NumTopicsString is "1 topic" or "n topics".
func NumTopicsString(n int) string {
	if n == 1 {
		return "1 topic"
	}

	return fmt.Sprintf("%d topics", n)
}

// TopicInfoString is "n messages, latest: <date>".
func TopicInfoString(ti archive.TopicInfo) string {
	plural := "s"
	if ti.Size == 1 {
		plural = ""
	}

	return fmt.Sprintf("%d message%s, latest: %s", ti.Size, plural, FormatDate(ti.LatestDate))
}

// TopicPageLinks is the header of a topic page: links to the stream and the
// topic, and a <base> so relative links in message content resolve against
// the Zulip server.
func (r *Renderer) TopicPageLinks(stream string, streamID int64, topic string) (string, error) {
	sanitizedStream := links.SanitizeStream(stream, streamID)

	return r.render("topic_links", map[string]any{
		"Stream":    stream,
		"Topic":     topic,
		"StreamURL": links.ArchiveStreamURL(r.opts.SiteURL, r.opts.HTMLRoot, sanitizedStream),
		"TopicURL":  links.ArchiveTopicURL(r.opts.SiteURL, r.opts.HTMLRoot, sanitizedStream, links.SanitizeTopic(topic)),
		"ZulipURL":  r.opts.ZulipURL,
	})
}

// LinkToZulip links to the original post, shown as the Zulip icon when one is configured.
func (r *Renderer) LinkToZulip(streamID int64, stream, topic string, msgID int64) (string, error) {
	return r.render("zulip_link", map[string]any{
		"PostURL": links.ZulipPostURL(r.opts.ZulipURL, streamID, stream, topic, msgID),
		"IconURL": r.opts.ZulipIconURL,
	})
}

// FormatMessage renders one message with its anchor, sender and date.
func (r *Renderer) FormatMessage(stream string, streamID int64, topic string, m zulip.Message) (string, error) {
	zulipLink, err := r.LinkToZulip(streamID, stream, topic, m.ID)
	if err != nil {
		return "", err
	}

	return r.render("message", map[string]any{
		"ID":        m.ID,
		"ZulipLink": template.HTML(zulipLink), //nolint:gosec
		"Sender":    m.SenderFullName,
		"Date":      FormatDate(m.Timestamp),
		"AnchorURL": links.ArchiveMessageURL(r.opts.SiteURL, r.opts.HTMLRoot,
			links.SanitizeStream(stream, streamID), links.SanitizeTopic(topic), m.ID),
		"Content": template.HTML(m.Content), //nolint:gosec
	})
}

// LastUpdatedFooter shows when the index was last populated.
func (r *Renderer) LastUpdatedFooter(idx *archive.Index) (string, error) {
	return r.render("footer", map[string]any{"LastUpdated": FormatDate(idx.Time)})
}

type streamItem struct {
	Name      string
	Sanitized string
	NumTopics string
}

type topicItem struct {
	Name      string
	Sanitized string
	Info      string
}

func streamItems(idx *archive.Index) []streamItem {
	items := make([]streamItem, 0, len(idx.Streams))

	for _, name := range idx.SortedStreams() {
		si := idx.Streams[name]
		items = append(items, streamItem{
			Name:      name,
			Sanitized: links.SanitizeStream(name, si.ID),
			NumTopics: NumTopicsString(len(si.TopicData)),
		})
	}

	return items
}

func topicItems(si *archive.StreamInfo) []topicItem {
	items := make([]topicItem, 0, len(si.TopicData))

	for _, name := range si.SortedTopics() {
		items = append(items, topicItem{
			Name:      name,
			Sanitized: links.SanitizeTopic(name),
			Info:      TopicInfoString(si.TopicData[name]),
		})
	}

	return items
}

// StreamList is a <ul> of streams with their topic counts, linking relative to the archive root.
func (r *Renderer) StreamList(idx *archive.Index) (string, error) {
	return r.render("stream_list", streamItems(idx))
}

// StreamListPage is the body of the archive index page.
func (r *Renderer) StreamListPage(idx *archive.Index) (string, error) {
	return r.render("stream_list_page", streamItems(idx))
}

// TopicList is a <ul> of topics with message count and date of the newest message.
func (r *Renderer) TopicList(si *archive.StreamInfo) (string, error) {
	return r.render("topic_list", topicItems(si))
}

// TopicListPage is the body of a stream's index page.
func (r *Renderer) TopicListPage(stream string, si *archive.StreamInfo) (string, error) {
	return r.render("topic_list_page", map[string]any{
		"Stream":    stream,
		"StreamURL": links.ArchiveStreamURL(r.opts.SiteURL, r.opts.HTMLRoot, links.SanitizeStream(stream, si.ID)),
		"Topics":    topicItems(si),
	})
}

// TopicPage is the body of a topic page: the header links followed by every message.
func (r *Renderer) TopicPage(stream string, streamID int64, topic string, msgs []zulip.Message) (string, error) {
	var buf bytes.Buffer

	header, err := r.TopicPageLinks(stream, streamID, topic)
	if err != nil {
		return "", err
	}

	buf.WriteString(header)

	for _, m := range msgs {
		s, err := r.FormatMessage(stream, streamID, topic, m)
		if err != nil {
			return "", err
		}

		buf.WriteString(s)
	}

	return buf.String(), nil
}

// OptionsFromConfig takes the URLs of the active profile.
func OptionsFromConfig(c *config.Config) Options {
	active := c.Active()

	return Options{
		SiteURL:      active.SiteURL,
		HTMLRoot:     c.Archive.HTMLRoot,
		ZulipURL:     c.Zulip.Site,
		ZulipIconURL: active.ZulipIconURL,
	}
}
