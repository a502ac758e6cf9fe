package app

import (
	"github.com/spf13/cobra"

	"github.com/zulip-archive/zulip-archive/internal/db/controller/run"
	"github.com/zulip-archive/zulip-archive/internal/db/models"
	"github.com/zulip-archive/zulip-archive/internal/publish"
)

func init() { //nolint: gochecknoinits
	publishCmd.Flags().StringVarP(&publishMessage, "message", "m", "", "Commit message, overrides publish.message")

	rootCmd.AddCommand(publishCmd)
}

var (
	publishMessage string

	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Commit the built archive and push it to the Pages repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := publish.OptionsFromConfig(&cfg)
			if publishMessage != "" {
				opts.Message = publishMessage
			}

			publisher := publish.New(nil, opts)

			return recorded(models.KindPublish, "", func() (run.Counts, error) {
				res, err := publisher.Publish(cmd.Context())

				return run.Counts{Pages: res.Changes}, err
			})
		},
	}
)
