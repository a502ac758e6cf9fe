package app

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/zulip-archive/zulip-archive/internal/archive"
	"github.com/zulip-archive/zulip-archive/internal/config"
	"github.com/zulip-archive/zulip-archive/internal/db/controller/run"
	"github.com/zulip-archive/zulip-archive/internal/db/models"
	"github.com/zulip-archive/zulip-archive/internal/render"
)

func init() { //nolint: gochecknoinits
	statusCmd.Flags().IntVarP(&statusRuns, "runs", "n", 10, "Number of recent runs to show") //nolint:mnd

	rootCmd.AddCommand(statusCmd)
}

var (
	statusRuns int

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the JSON cache summary and the recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			idx, err := archive.NewStore(cfg.Archive.JSONDirectory).LoadIndex()
			if err != nil && !errors.Is(err, archive.ErrIndexNotFound) {
				return err
			}

			var (
				runs   []models.Run
				latest map[string]*models.Run
			)

			if gdb := openHistory(); gdb != nil {
				defer closeHistory(gdb)

				if latest, err = latestSuccessful(gdb); err != nil {
					return err
				}

				if runs, err = run.List(gdb, statusRuns); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()

			return writeStatus(out, &cfg, idx, latest, runs, config.ColorEnabled(out))
		},
	}
)

var runKinds = []string{models.KindPopulate, models.KindBuild, models.KindPublish}

// latestSuccessful maps each run kind to its newest successful run. Kinds
// that never succeeded are left out.
func latestSuccessful(gdb *gorm.DB) (map[string]*models.Run, error) {
	latest := make(map[string]*models.Run, len(runKinds))

	for _, kind := range runKinds {
		r, err := run.Latest(gdb, kind)
		if errors.Is(err, run.ErrRunNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		latest[kind] = r
	}

	return latest, nil
}

// writeStatus prints the profile, the index summary, the last successful run
// per kind and the recent runs. idx and latest may be nil.
func writeStatus(w io.Writer, c *config.Config, idx *archive.Index, latest map[string]*models.Run,
	runs []models.Run, colored bool,
) error {
	ok := color.New(color.FgGreen)
	failed := color.New(color.FgRed)
	running := color.New(color.FgYellow)

	for _, col := range []*color.Color{ok, failed, running} {
		if colored {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0) //nolint:mnd

	fmt.Fprintf(tw, "profile:\t%s\n", c.ProfileName())
	fmt.Fprintf(tw, "site url:\t%s\n", c.Active().SiteURL)
	fmt.Fprintf(tw, "html directory:\t%s\n", c.Active().HTMLDirectory)
	fmt.Fprintf(tw, "json directory:\t%s\n", c.Archive.JSONDirectory)

	if idx == nil {
		fmt.Fprintf(tw, "index:\t%s\n", failed.Sprint("missing, run a full populate (-t)"))
	} else {
		topics := 0
		for _, si := range idx.Streams {
			topics += len(si.TopicData)
		}

		fmt.Fprintf(tw, "last populate:\t%s UTC\n", render.FormatDate(idx.Time))
		fmt.Fprintf(tw, "streams:\t%d\n", len(idx.Streams))
		fmt.Fprintf(tw, "topics:\t%d\n", topics)
		fmt.Fprintf(tw, "messages:\t%d\n", idx.MessageCount())
	}

	if latest != nil {
		for _, kind := range runKinds {
			when := failed.Sprint("never")
			if r, found := latest[kind]; found {
				when = r.Finished.UTC().Format(time.DateTime) + " UTC"
			}

			fmt.Fprintf(tw, "last successful %s:\t%s\n", kind, when)
		}
	}

	if len(runs) > 0 {
		fmt.Fprintf(tw, "\nSTARTED\tKIND\tMODE\tPROFILE\tSTATUS\tDURATION\tSTREAMS\tMESSAGES\tPAGES\n")

		for i := range runs {
			r := &runs[i]

			var status string

			switch {
			case !r.Done():
				status = running.Sprint("running")
			case r.Failed():
				status = failed.Sprint("failed: " + r.Error)
			default:
				status = ok.Sprint("ok")
			}

			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
				r.Started.UTC().Format(time.DateTime), r.Kind, dash(r.Mode), r.Profile, status,
				r.Duration().Round(time.Millisecond), r.Streams, r.Messages, r.Pages)
		}
	}

	return errors.Wrap(tw.Flush(), "failed to write status")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
