// Package app implements the zulip-archive commands.
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zulip-archive/zulip-archive/internal/archive"
	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/logger"
)

var (
	configPath string // Path to the configuration file
	cfg        config.Config

	populateAll         bool
	populateIncremental bool
	buildSite           bool

	rootCmd = &cobra.Command{
		Use:   "zulip-archive",
		Short: "zulip-archive exports public Zulip streams into a static HTML archive",
		Long: `zulip-archive pulls the messages of public Zulip streams into a JSON cache
and renders them as static HTML pages with Jekyll front matter.

Set PROD_ARCHIVE to a non-empty value to build with the [prod] profile.`,
		Example: `  zulip-archive -t          # fetch everything
  zulip-archive -i -b       # fetch new messages, then build the pages
  PROD_ARCHIVE=1 zulip-archive -b`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runRoot,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the settings file")

	rootCmd.Flags().BoolVarP(&populateAll, "populate-all", "t", false, "Fetch every message of every archived stream")
	rootCmd.Flags().BoolVarP(&populateIncremental, "populate-incremental", "i", false,
		"Fetch messages newer than the last populate")
	rootCmd.Flags().BoolVarP(&buildSite, "build", "b", false, "Build the HTML pages from the JSON cache")

	rootCmd.MarkFlagsMutuallyExclusive("populate-all", "populate-incremental")
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads and validates the settings, then configures logging.
// A production run with placeholder values stops here.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		log.Error().Err(err).Str("config", configPath).Msg("can't load settings")
		return err
	}

	if err = logger.Init(cfg.Log); err != nil {
		return errors.Wrap(err, "failed to init logger")
	}

	log.Debug().Str("config", configPath).Str("profile", cfg.ProfileName()).
		Str("html_directory", cfg.Active().HTMLDirectory).Msg("settings loaded")

	return nil
}

func runRoot(cmd *cobra.Command, _ []string) error {
	if !populateAll && !populateIncremental && !buildSite {
		return cmd.Help()
	}

	switch {
	case populateAll:
		if err := runPopulate(cmd.Context(), archive.ModeFull); err != nil {
			return err
		}
	case populateIncremental:
		if err := runPopulate(cmd.Context(), archive.ModeIncremental); err != nil {
			return err
		}
	}

	if buildSite {
		return runBuild(cmd.Context())
	}

	return nil
}
