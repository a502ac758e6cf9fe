package site

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zulip-archive/zulip-archive/internal/archive"
	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/render"
	"github.com/zulip-archive/zulip-archive/internal/zulip"
)

func seedStore(t *testing.T, dir string) *archive.Store {
	t.Helper()

	store := archive.NewStore(dir)

	idx := archive.NewIndex()
	idx.Time = 1500000000

	si := idx.Stream("general", 1)
	si.LatestID = 11
	si.TopicData["hello"] = archive.TopicInfo{Size: 2, LatestDate: 1500000060}

	require.NoError(t, store.SaveTopic("general", 1, "hello", []zulip.Message{
		{ID: 10, SenderFullName: "Ada", Timestamp: 1500000000, Content: "<p>one</p>", Subject: "hello"},
		{ID: 11, SenderFullName: "Grace", Timestamp: 1500000060, Content: "<p>two</p>", Subject: "hello"},
	}))
	require.NoError(t, store.SaveIndex(idx))

	return store
}

func newBuilder(t *testing.T, store *archive.Store, opts Options) *Builder {
	t.Helper()

	r, err := render.New(render.Options{
		SiteURL:  "https://archive.example.org",
		HTMLRoot: opts.HTMLRoot,
		ZulipURL: "https://chat.example.org",
	})
	require.NoError(t, err)

	return NewBuilder(store, r, opts)
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string

	require.NoError(t, filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		rel, err := filepath.Rel(root, p)
		files = append(files, filepath.ToSlash(rel))

		return err
	}))

	sort.Strings(files)

	return files
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	store := seedStore(t, filepath.Join(root, "json"))
	htmlDir := filepath.Join(root, "html")

	b := newBuilder(t, store, Options{
		Title:          "Chat Archive",
		HTMLDirectory:  htmlDir,
		HTMLRoot:       "archive",
		Layout:         "archive",
		PageHeadHTML:   "<p>head</p>",
		PageFooterHTML: "<p>foot</p>",
	})

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Streams: 1, Topics: 1, Pages: 3}, res)

	assert.Equal(t, []string{
		"index.html",
		"stream/1-general/index.html",
		"stream/1-general/topic/47413hello.html",
	}, listFiles(t, htmlDir))

	page, err := os.ReadFile(filepath.Join(htmlDir, "stream/1-general/topic/47413hello.html"))
	require.NoError(t, err)

	fm, body, err := SplitFrontMatter(page)
	require.NoError(t, err)
	assert.Equal(t, FrontMatter{
		Layout:    "archive",
		Title:     "general > hello",
		Permalink: "/archive/stream/1-general/topic/47413hello.html",
	}, fm)

	assert.Contains(t, string(body), "<p>head</p>")
	assert.Contains(t, string(body), `<a name="11"></a>`)
	assert.Contains(t, string(body), "<p>foot</p>")
	assert.Contains(t, string(body), "Last updated: Jul 14 2017 at 02:40 UTC")

	index, err := os.ReadFile(filepath.Join(htmlDir, "index.html"))
	require.NoError(t, err)

	fm, _, err = SplitFrontMatter(index)
	require.NoError(t, err)
	assert.Equal(t, "Chat Archive", fm.Title)
	assert.Equal(t, "/archive/index.html", fm.Permalink)
}

func TestBuildKeepsLiquidInContentLiteral(t *testing.T) {
	root := t.TempDir()
	store := archive.NewStore(filepath.Join(root, "json"))
	htmlDir := filepath.Join(root, "html")

	content := `<pre><code>{% for x in y %}{{ site.github }}{% endraw %}</code></pre>`

	idx := archive.NewIndex()
	idx.Time = 1500000000
	si := idx.Stream("general", 1)
	si.LatestID = 10
	si.TopicData["liquid"] = archive.TopicInfo{Size: 1, LatestDate: 1500000000}

	require.NoError(t, store.SaveTopic("general", 1, "liquid", []zulip.Message{
		{ID: 10, SenderFullName: "Ada", Timestamp: 1500000000, Content: content, Subject: "liquid"},
	}))
	require.NoError(t, store.SaveIndex(idx))

	b := newBuilder(t, store, Options{
		HTMLDirectory:  htmlDir,
		Layout:         "archive",
		PageFooterHTML: "{{ site.title }}",
	})

	_, err := b.Build(context.Background())
	require.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(htmlDir, "stream/1-general/topic/09161liquid.html"))
	require.NoError(t, err)

	_, body, err := SplitFrontMatter(page)
	require.NoError(t, err)

	got := string(body)
	assert.True(t, strings.HasPrefix(got, rawOpen), got)
	assert.True(t, strings.HasSuffix(got, rawClose+"\n{{ site.title }}\n"), got)
	assert.Contains(t, got, `{% for x in y %}{{ site.github }}`+rawBreak+` endraw %}</code></pre>`)
	assert.Equal(t, 2, strings.Count(got, rawClose), "only the split literal and the wrapper close the block")

	assert.Contains(t, UnprotectLiquid(got), content)
	assert.NotContains(t, UnprotectLiquid(got), rawOpen)
}

func TestProtectLiquid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain html",
			in:   "<p>hi</p>",
			want: "{% raw %}<p>hi</p>{% endraw %}",
		},
		{
			name: "tags and output",
			in:   "{% if a %}{{ b }}{% endif %}",
			want: "{% raw %}{% if a %}{{ b }}{% endif %}{% endraw %}",
		},
		{
			name: "literal endraw",
			in:   "a{% endraw %}b",
			want: `{% raw %}a{% endraw %}{{ "{%" }}{% raw %} endraw %}b{% endraw %}`,
		},
		{
			name: "endraw with whitespace control",
			in:   "{%- endraw -%}",
			want: `{% raw %}{% endraw %}{{ "{%" }}{% raw %}- endraw -%}{% endraw %}`,
		},
		{
			name: "raw inside content",
			in:   "{% raw %}x",
			want: "{% raw %}{% raw %}x{% endraw %}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProtectLiquid(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, UnprotectLiquid(got))
		})
	}

	assert.Equal(t, "<p>no block</p>", UnprotectLiquid("<p>no block</p>"))
	assert.Equal(t, "<p>head</p>\n<p>x</p>\n<p>foot</p>",
		UnprotectLiquid("<p>head</p>\n"+ProtectLiquid("<p>x</p>")+"\n<p>foot</p>"))
}

func TestBuildWithoutIndex(t *testing.T) {
	root := t.TempDir()
	htmlDir := filepath.Join(root, "html")

	b := newBuilder(t, archive.NewStore(filepath.Join(root, "json")), Options{HTMLDirectory: htmlDir})

	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, archive.ErrIndexNotFound)

	_, err = os.Stat(htmlDir)
	assert.True(t, os.IsNotExist(err))
}

func TestBuildWritesOnlyIntoProdDirectory(t *testing.T) {
	root := t.TempDir()
	store := seedStore(t, filepath.Join(root, "json"))

	c := config.Default()
	c.Dev.HTMLDirectory = filepath.Join(root, "dev")
	c.Prod.SiteURL = "https://archive.example.org"
	c.Prod.HTMLDirectory = filepath.Join(root, "prod")
	c.SetProduction(true)
	require.NoError(t, config.Validate(&c))

	_, err := newBuilder(t, store, OptionsFromConfig(&c)).Build(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}

	assert.ElementsMatch(t, []string{"json", "prod"}, names)
}

func TestBuildRefusesPlaceholderProdProfile(t *testing.T) {
	c := config.Default()
	c.SetProduction(true)

	require.ErrorIs(t, config.Validate(&c), config.ErrProdSiteURLUnset)
}

func TestFrontMatter(t *testing.T) {
	b, err := MarshalFrontMatter(FrontMatter{Layout: "archive", Title: "Chat Archive", Permalink: "/archive/index.html"})
	require.NoError(t, err)
	assert.Equal(t, "---\nlayout: archive\ntitle: Chat Archive\npermalink: /archive/index.html\n---\n\n", string(b))

	tests := []struct {
		name     string
		page     string
		wantFM   FrontMatter
		wantBody string
		wantErr  error
	}{
		{
			name:     "plain page",
			page:     "<p>x</p>",
			wantBody: "<p>x</p>",
		},
		{
			name:     "with front matter",
			page:     "---\ntitle: \"a: b\"\n---\n\n<p>x</p>",
			wantFM:   FrontMatter{Title: "a: b"},
			wantBody: "<p>x</p>",
		},
		{
			name:    "unterminated",
			page:    "---\ntitle: x\n<p>x</p>",
			wantErr: ErrUnterminatedFrontMatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := SplitFrontMatter([]byte(tt.page))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFM, fm)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestInstallAssets(t *testing.T) {
	dir := t.TempDir()
	cfg := JekyllConfig{Title: "Chat Archive", URL: "https://archive.example.org"}

	written, err := InstallAssets(dir, false, cfg)
	require.NoError(t, err)
	assert.Len(t, written, 3)

	assert.Equal(t, []string{"_config.yml", "_layouts/archive.html", "assets/archive.css"}, listFiles(t, dir))

	raw, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)

	var got JekyllConfig
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, cfg, got)

	// existing files are kept without force
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("title: mine\n"), 0o600))

	written, err = InstallAssets(dir, false, cfg)
	require.NoError(t, err)
	assert.Empty(t, written)

	raw, err = os.ReadFile(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.Equal(t, "title: mine\n", string(raw))

	written, err = InstallAssets(dir, true, cfg)
	require.NoError(t, err)
	assert.Len(t, written, 3)
}

func TestResolveInside(t *testing.T) {
	_, err := resolveInside("/srv/html", "../etc/passwd")
	require.ErrorIs(t, err, ErrOutsideHTMLDirectory)

	got, err := resolveInside("/srv/html", "stream/1-general/index.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/html", "stream", "1-general", "index.html"), got)
}
