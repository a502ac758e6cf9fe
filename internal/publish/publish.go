// Package publish commits the generated archive and pushes it to the
// repository that serves it, typically a GitHub Pages repository.
package publish

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zulip-archive/zulip-archive/internal/config"
)

var (
	// ErrNotARepository is returned when the publish directory is not inside a git work tree.
	ErrNotARepository = errors.New("publish directory is not a git repository")
	// ErrNoDirectory is returned when neither repo_directory nor html_directory is set.
	ErrNoDirectory = errors.New("no publish directory")
)

// Runner executes a command in dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	var out bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), errors.Wrapf(err, "%s %s: %s", name, strings.Join(args, " "), strings.TrimSpace(out.String()))
	}

	return out.String(), nil
}

// Options says where and what to push.
type Options struct {
	Directory string
	Remote    string
	Branch    string
	Message   string
}

// OptionsFromConfig uses repo_directory, falling back to the active html_directory.
func OptionsFromConfig(c *config.Config) Options {
	dir := c.Publish.RepoDirectory
	if dir == "" {
		dir = c.Active().HTMLDirectory
	}

	return Options{
		Directory: dir,
		Remote:    c.Publish.Remote,
		Branch:    c.Publish.Branch,
		Message:   c.Publish.Message,
	}
}

// Result tells what Publish did.
type Result struct {
	Committed bool
	Pushed    bool
	Changes   int // paths reported by git status
}

// Publisher stages, commits and pushes one directory.
type Publisher struct {
	runner Runner
	opts   Options
}

// New returns a Publisher. A nil runner means ExecRunner.
func New(runner Runner, opts Options) *Publisher {
	if runner == nil {
		runner = ExecRunner{}
	}

	return &Publisher{runner: runner, opts: opts}
}

func (p *Publisher) git(ctx context.Context, args ...string) (string, error) {
	log.Debug().Str("dir", p.opts.Directory).Strs("args", args).Msg("git")

	return p.runner.Run(ctx, p.opts.Directory, "git", args...)
}

// Publish runs git add, commit and push. Every step is limited to the
// publish directory, files elsewhere in the work tree are never committed.
// Without changes nothing is committed or pushed.
func (p *Publisher) Publish(ctx context.Context) (Result, error) {
	var res Result

	if p.opts.Directory == "" {
		return res, ErrNoDirectory
	}

	out, err := p.git(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return res, errors.Wrap(ErrNotARepository, p.opts.Directory)
	}

	if _, err := p.git(ctx, "add", "-A", "--", "."); err != nil {
		return res, err
	}

	status, err := p.git(ctx, "status", "--porcelain", "--", ".")
	if err != nil {
		return res, err
	}

	for _, line := range strings.Split(status, "\n") {
		if strings.TrimSpace(line) != "" {
			res.Changes++
		}
	}

	if res.Changes == 0 {
		log.Info().Str("dir", p.opts.Directory).Msg("nothing to publish")
		return res, nil
	}

	if _, err := p.git(ctx, "commit", "-m", p.opts.Message, "--", "."); err != nil {
		return res, err
	}

	res.Committed = true

	pushArgs := []string{"push"}
	if p.opts.Remote != "" {
		pushArgs = append(pushArgs, p.opts.Remote)
		if p.opts.Branch != "" {
			pushArgs = append(pushArgs, p.opts.Branch)
		}
	}

	if _, err := p.git(ctx, pushArgs...); err != nil {
		return res, err
	}

	res.Pushed = true

	log.Info().Str("dir", p.opts.Directory).Int("changes", res.Changes).
		Str("remote", p.opts.Remote).Str("branch", p.opts.Branch).Msg("archive published")

	return res, nil
}
