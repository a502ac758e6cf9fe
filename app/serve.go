package app

import (
	"github.com/spf13/cobra"

	"github.com/zulip-archive/zulip-archive/internal/daemon"
)

func init() { //nolint: gochecknoinits
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on, overrides webserver.port")
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")
	serveCmd.Flags().BoolVar(
		&browseStatic,
		"browse",
		false,
		"Enable directory browsing of the html directory",
	)

	rootCmd.AddCommand(serveCmd)
}

var (
	servePort    int
	devMode      bool
	browseStatic bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Preview the built archive in a browser",
		Args:  cobra.NoArgs,
		PreRun: func(_ *cobra.Command, _ []string) {
			if servePort > 0 {
				cfg.Webserver.Port = servePort
			}

			if devMode {
				cfg.DevMode = true
			}

			if browseStatic {
				cfg.Webserver.BrowseStatic = true
			}
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			d, err := daemon.New(&cfg)
			if err != nil {
				return err
			}

			return d.Start()
		},
	}
)
