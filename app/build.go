package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zulip-archive/zulip-archive/internal/archive"
	"github.com/zulip-archive/zulip-archive/internal/db/controller/run"
	"github.com/zulip-archive/zulip-archive/internal/db/models"
	"github.com/zulip-archive/zulip-archive/internal/render"
	"github.com/zulip-archive/zulip-archive/internal/site"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the HTML pages of the active profile from the JSON cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBuild(cmd.Context())
	},
}

func runBuild(ctx context.Context) error {
	renderer, err := render.New(render.OptionsFromConfig(&cfg))
	if err != nil {
		return err
	}

	opts := site.OptionsFromConfig(&cfg)
	builder := site.NewBuilder(archive.NewStore(cfg.Archive.JSONDirectory), renderer, opts)

	log.Info().Str("profile", cfg.ProfileName()).Str("site_url", cfg.Active().SiteURL).
		Str("html_directory", opts.HTMLDirectory).Msg("build started")

	return recorded(models.KindBuild, "", func() (run.Counts, error) {
		res, err := builder.Build(ctx)
		if err != nil {
			return run.Counts{Streams: res.Streams, Pages: res.Pages}, err
		}

		log.Info().Int("streams", res.Streams).Int("topics", res.Topics).
			Int("pages", res.Pages).Msg("build finished")

		return run.Counts{Streams: res.Streams, Pages: res.Pages}, nil
	})
}
