package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zulip-archive/zulip-archive/internal/archive"
	"github.com/zulip-archive/zulip-archive/internal/db/controller/run"
	"github.com/zulip-archive/zulip-archive/internal/db/models"
	"github.com/zulip-archive/zulip-archive/internal/zulip"
)

func init() { //nolint: gochecknoinits
	populateCmd.Flags().Bool("full", false, "Fetch every message of every archived stream")
	populateCmd.Flags().Bool("incremental", false, "Fetch messages newer than the last populate")
	populateCmd.MarkFlagsMutuallyExclusive("full", "incremental")
	populateCmd.MarkFlagsOneRequired("full", "incremental")

	rootCmd.AddCommand(populateCmd)
}

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Fill the JSON cache from the Zulip server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode := archive.ModeFull
		if incremental, _ := cmd.Flags().GetBool("incremental"); incremental {
			mode = archive.ModeIncremental
		}

		return runPopulate(cmd.Context(), mode)
	},
}

func runPopulate(ctx context.Context, mode archive.Mode) error {
	client, err := zulip.New(cfg.Zulip)
	if err != nil {
		return errors.Wrap(err, "can't connect to zulip")
	}

	store := archive.NewStore(cfg.Archive.JSONDirectory)
	populator := archive.NewPopulator(client, store, cfg.Archive.IncludesStream, nil)

	log.Info().Str("mode", string(mode)).Str("site", cfg.Zulip.Site).
		Str("json_directory", store.Root()).Msg("populate started")

	return recorded(models.KindPopulate, string(mode), func() (run.Counts, error) {
		res, err := populator.Run(ctx, mode)
		if err != nil {
			return run.Counts{Streams: res.Streams, Messages: res.Messages}, err
		}

		log.Info().Str("mode", string(mode)).Int("streams", res.Streams).
			Int("messages", res.Messages).Msg("populate finished")

		return run.Counts{Streams: res.Streams, Messages: res.Messages}, nil
	})
}
