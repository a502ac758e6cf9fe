package app

import (
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zulip-archive/zulip-archive/internal/site"
)

func init() { //nolint: gochecknoinits
	initSiteCmd.Flags().StringVarP(&siteDir, "dir", "d", "",
		"Jekyll site directory, defaults to publish.repo_directory or the parent of html_directory")
	initSiteCmd.Flags().BoolVarP(&forceAssets, "force", "f", false, "Overwrite existing files")

	rootCmd.AddCommand(initSiteCmd)
}

var (
	siteDir     string
	forceAssets bool

	initSiteCmd = &cobra.Command{
		Use:   "init-site",
		Short: "Install the Jekyll layout, stylesheet and _config.yml",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			dir := siteDirectory()

			written, err := site.InstallAssets(dir, forceAssets, site.JekyllConfig{
				Title: cfg.Archive.Title,
				URL:   cfg.Active().SiteURL,
			})
			if err != nil {
				return err
			}

			log.Info().Str("dir", dir).Int("files", len(written)).Msg("site assets installed")

			return nil
		},
	}
)

func siteDirectory() string {
	switch {
	case siteDir != "":
		return siteDir
	case cfg.Publish.RepoDirectory != "":
		return cfg.Publish.RepoDirectory
	default:
		return filepath.Dir(filepath.Clean(cfg.Active().HTMLDirectory))
	}
}
