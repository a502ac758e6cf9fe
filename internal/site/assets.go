package site

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ConfigFile is the Jekyll site configuration written by InstallAssets.
const ConfigFile = "_config.yml"

//go:embed all:jekyll
var jekyllFiles embed.FS

// JekyllConfig is the subset of _config.yml the archive relies on.
type JekyllConfig struct {
	Title   string   `yaml:"title"`
	URL     string   `yaml:"url"`
	BaseURL string   `yaml:"baseurl"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Stylesheet returns the embedded archive.css.
func Stylesheet() ([]byte, error) {
	b, err := jekyllFiles.ReadFile("jekyll/assets/archive.css")

	return b, errors.Wrap(err, "failed to read embedded stylesheet")
}

// InstallAssets copies the layout and stylesheet into dir and writes
// _config.yml. Existing files are kept unless force is set. It returns the
// paths it wrote.
func InstallAssets(dir string, force bool, cfg JekyllConfig) ([]string, error) {
	var written []string

	sub, err := fs.Sub(jekyllFiles, "jekyll")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded assets")
	}

	err = fs.WalkDir(sub, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}

		data, err := fs.ReadFile(sub, name)
		if err != nil {
			return errors.Wrapf(err, "failed to read embedded %s", name)
		}

		target, err := installFile(dir, name, data, force)
		if err != nil {
			return err
		}

		if target != "" {
			written = append(written, target)
		}

		return nil
	})
	if err != nil {
		return written, err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return written, errors.Wrap(err, "failed to encode "+ConfigFile)
	}

	target, err := installFile(dir, ConfigFile, data, force)
	if err != nil {
		return written, err
	}

	if target != "" {
		written = append(written, target)
	}

	return written, nil
}

func installFile(dir, rel string, data []byte, force bool) (string, error) {
	target, err := resolveInside(dir, rel)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(target); err == nil && !force {
		log.Info().Str("path", target).Msg("asset exists, keeping it")
		return "", nil
	}

	if err := writeFile(target, data); err != nil {
		return "", err
	}

	log.Info().Str("path", filepath.ToSlash(target)).Msg("asset installed")

	return target, nil
}
