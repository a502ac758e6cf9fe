package config

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Diff renders a line diff between two settings as TOML.
// Removed lines are prefixed "- ", added lines "+ " and unchanged lines "  ".
// With colored set, additions are green and removals red.
func Diff(from, to *Config, colored bool) (string, error) {
	fromTOML, err := DumpConfig(from)
	if err != nil {
		return "", err
	}

	toTOML, err := DumpConfig(to)
	if err != nil {
		return "", err
	}

	return diffLines(fromTOML, toTOML, colored), nil
}

// ColorEnabled reports whether w is a terminal that should get colored output.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func diffLines(from, to string, colored bool) string {
	dmp := diffpatch.New()

	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	if colored {
		added.EnableColor()
		removed.EnableColor()
	} else {
		added.DisableColor()
		removed.DisableColor()
	}

	var sb strings.Builder

	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			line = strings.TrimSuffix(line, "\n")

			switch d.Type {
			case diffpatch.DiffInsert:
				sb.WriteString(added.Sprint("+ " + line))
			case diffpatch.DiffDelete:
				sb.WriteString(removed.Sprint("- " + line))
			case diffpatch.DiffEqual:
				sb.WriteString("  " + line)
			}

			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
