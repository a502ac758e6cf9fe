package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulip-archive/zulip-archive/internal/config"
)

func init() { //nolint: gochecknoinits
	configDumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "Dump as JSON instead of TOML")

	configCmd.AddCommand(configDumpCmd, configDiffCmd)
	rootCmd.AddCommand(configCmd)
}

var (
	dumpJSON bool

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective settings",
	}

	configDumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print the effective settings, environment overrides included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dump := config.DumpConfig
			if dumpJSON {
				dump = config.DumpConfigJSON
			}

			out, err := dump(&cfg)
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}

	configDiffCmd = &cobra.Command{
		Use:   "diff",
		Short: "Show how the effective settings differ from the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defaults := config.Default()

			out, err := config.Diff(&defaults, &cfg, config.ColorEnabled(cmd.OutOrStdout()))
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), out)

			return err
		},
	}
)
