package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zulip-archive/zulip-archive/internal/archive"
	"github.com/zulip-archive/zulip-archive/internal/zulip"
)

func newRenderer(t *testing.T, icon string) *Renderer {
	t.Helper()

	r, err := New(Options{
		SiteURL:      "http://127.0.0.1:4000",
		HTMLRoot:     "archive",
		ZulipURL:     "https://chat.example.org",
		ZulipIconURL: icon,
	})
	require.NoError(t, err)

	return r
}

func testIndex() *archive.Index {
	return &archive.Index{
		Time: 1500000000,
		Streams: map[string]*archive.StreamInfo{
			"general": {
				ID:       1,
				LatestID: 30,
				TopicData: map[string]archive.TopicInfo{
					"hello":   {Size: 3, LatestDate: 1500000000},
					"release": {Size: 1, LatestDate: 1600000000},
				},
			},
			"design": {
				ID:        2,
				LatestID:  40,
				TopicData: map[string]archive.TopicInfo{"logo": {Size: 2, LatestDate: 1400000000}},
			},
		},
	}
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "Jul 14 2017 at 02:40", FormatDate(1500000000))
	assert.Equal(t, "1 topic", NumTopicsString(1))
	assert.Equal(t, "0 topics", NumTopicsString(0))
	assert.Equal(t, "3 topics", NumTopicsString(3))
	assert.Equal(t, "1 message, latest: Jul 14 2017 at 02:40", TopicInfoString(archive.TopicInfo{Size: 1, LatestDate: 1500000000}))
	assert.Equal(t, "4 messages, latest: Jul 14 2017 at 02:40", TopicInfoString(archive.TopicInfo{Size: 4, LatestDate: 1500000000}))
}

func TestStreamListPage(t *testing.T) {
	r := newRenderer(t, "")

	out, err := r.StreamListPage(testIndex())
	require.NoError(t, err)

	assert.Contains(t, out, "<h2>Streams:</h2>")
	assert.Contains(t, out, `<li> <a href="stream/1-general/index.html">general</a> (2 topics) </li>`)
	assert.Contains(t, out, `<li> <a href="stream/2-design/index.html">design</a> (1 topic) </li>`)

	// most recently active stream first
	assert.Less(t, strings.Index(out, "design"), strings.Index(out, "general"))
}

func TestTopicListPage(t *testing.T) {
	r := newRenderer(t, "")
	idx := testIndex()

	out, err := r.TopicListPage("general", idx.Streams["general"])
	require.NoError(t, err)

	assert.Contains(t, out, `<h2> Stream: <a href="http://127.0.0.1:4000/archive/stream/1-general/index.html">general</a></h2>`)
	assert.Contains(t, out, `<a href="topic/47413hello.html">hello</a> (3 messages, latest: Jul 14 2017 at 02:40)`)

	// newest topic first
	assert.Less(t, strings.Index(out, "release"), strings.Index(out, "hello"))
}

func TestTopicPage(t *testing.T) {
	r := newRenderer(t, "https://chat.example.org/static/icon.png")

	out, err := r.TopicPage("general", 1, "hello", []zulip.Message{
		{ID: 10, SenderFullName: "Ada", Timestamp: 1500000000, Content: "<p>first <strong>post</strong></p>"},
		{ID: 11, SenderFullName: "Grace <admin>", Timestamp: 1500000060, Content: "<p>second</p>"},
	})
	require.NoError(t, err)

	assert.Contains(t, out, `<h3>Topic: <a href="http://127.0.0.1:4000/archive/stream/1-general/topic/47413hello.html">hello</a></h3>`)
	assert.Contains(t, out, `<base href="https://chat.example.org">`)
	assert.Contains(t, out, `<a name="10"></a>`)
	assert.Contains(t, out, `<p>first <strong>post</strong></p>`)
	assert.Contains(t, out, `href="http://127.0.0.1:4000/archive/stream/1-general/topic/47413hello.html#11"`)
	assert.Contains(t, out, `href="https://chat.example.org/#narrow/stream/1-general/topic/hello/near/10"`)
	assert.Contains(t, out, `<img src="https://chat.example.org/static/icon.png"`)
	assert.Contains(t, out, "Grace &lt;admin&gt;")
	assert.Contains(t, out, "(Jul 14 2017 at 02:40)")
	assert.Less(t, strings.Index(out, `name="10"`), strings.Index(out, `name="11"`))
}

func TestLinkToZulipWithoutIcon(t *testing.T) {
	r := newRenderer(t, "")

	out, err := r.LinkToZulip(1, "general", "hello", 10)
	require.NoError(t, err)

	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, `class="zl"></a>`)
	assert.NotContains(t, out, "\n")
}

func TestFormatMessageHeaderOnOneLine(t *testing.T) {
	for _, icon := range []string{"", "https://chat.example.org/static/icon.png"} {
		t.Run("icon="+icon, func(t *testing.T) {
			r := newRenderer(t, icon)

			out, err := r.FormatMessage("general", 1, "hello", zulip.Message{
				ID: 10, SenderFullName: "Ada", Timestamp: 1500000000, Content: "<p>hi</p>",
			})
			require.NoError(t, err)

			assert.Regexp(t, `(?m)^<h4><a href="[^"\n]+" class="zl">[^\n]*</a> Ada <a href="[^"\n]+#10">\(Jul 14 2017 at 02:40\)</a>:</h4>$`, out)
		})
	}
}

func TestLastUpdatedFooter(t *testing.T) {
	r := newRenderer(t, "")

	out, err := r.LastUpdatedFooter(testIndex())
	require.NoError(t, err)

	assert.Equal(t, "<hr><p>Last updated: Jul 14 2017 at 02:40 UTC</p>", strings.TrimSpace(out))
}
