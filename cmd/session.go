package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/pders01/git-notebook/internal/git"
	"github.com/pders01/git-notebook/internal/history"
	"github.com/pders01/git-notebook/internal/models"
	"github.com/pders01/git-notebook/internal/notebook"
	"github.com/pders01/git-notebook/internal/workspace"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// fs is the filesystem every command works on.
var fs afero.Fs = afero.NewOsFs()

// session holds what one command invocation needs. Workspaces created
// during the session are removed by close.
type session struct {
	ctx      context.Context
	out      io.Writer
	manager  *notebook.Manager
	registry *workspace.Registry
}

func newSession(cmd *cobra.Command) (*session, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	manager, err := notebook.NewManager(fs, cfg.Notebooks.Root,
		notebook.WithCommitter(func(dir string) notebook.Committer { return repoFor(dir) }),
		notebook.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	opts := []workspace.Option{workspace.WithPrefix(cfg.Workspace.Prefix), workspace.WithLogger(logger)}
	if cfg.Workspace.TempDir != "" {
		opts = append(opts, workspace.WithBase(cfg.Workspace.TempDir))
	}

	s := &session{
		ctx:      context.Background(),
		out:      os.Stdout,
		manager:  manager,
		registry: workspace.NewRegistry(fs, opts...),
	}
	if cmd != nil {
		s.ctx = cmd.Context()
		s.out = cmd.OutOrStdout()
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	return s, nil
}

func (s *session) close() {
	s.registry.CleanupAll()
}

func (s *session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func (s *session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

// repoFor opens the git repository of a notebook directory with the
// configured binary and timeout.
func repoFor(dir string) *git.Repo {
	repo := git.NewRepo(dir)
	if cfg != nil {
		repo.Binary = cfg.Git.Binary
		repo.Timeout = cfg.Git.Timeout
	}
	return repo
}

// requireGit fails when the git executable cannot be run.
func (s *session) requireGit() error {
	timeout := git.DefaultCheckTimeout
	if cfg != nil {
		timeout = cfg.Git.CheckTimeout
	}
	if !repoFor("").Available(s.ctx, timeout) {
		return git.ErrUnavailable
	}
	return nil
}

func (s *session) miner(nb *notebook.Notebook) *history.Miner {
	return history.NewMiner(nb.Dir, repoFor(nb.Dir), s.registry, logger)
}

// resolveRef maps ref onto an identifier: a live item, sub-notebook or the
// notebook itself, otherwise ref is taken as a raw identifier so items that
// no longer exist can still be looked up in history.
func resolveRef(nb *notebook.Notebook, ref string) (string, models.Node, bool) {
	node, err := nb.Lookup(ref)
	if err != nil {
		return ref, models.Node{}, false
	}
	return node.ID(), node, true
}

// containerRef resolves an optional parent reference to a container id,
// defaulting to the notebook root.
func containerRef(nb *notebook.Notebook, ref string) (string, error) {
	if ref == "" {
		return nb.Root.ID, nil
	}
	node, err := nb.Lookup(ref)
	if err != nil {
		return "", err
	}
	if !node.IsContainer() {
		return "", fmt.Errorf("%q is a %s, not a notebook", ref, node.Kind)
	}
	return node.ID(), nil
}

// readContent returns inline text, the contents of path, or stdin, in that
// order of preference.
func readContent(inline, path string, stdin io.Reader) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}
	if stdin == nil {
		return "", nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// writeStructured prints v as JSON or toon when requested and reports
// whether it did.
func writeStructured(out io.Writer, v any, asJSON, asToon bool) (bool, error) {
	if asJSON {
		output, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(output))
		return true, nil
	}

	if asToon {
		output, err := gotoon.Encode(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode Toon: %w", err)
		}
		fmt.Fprintln(out, output)
		return true, nil
	}
	return false, nil
}

// absent reports errors that mean "nothing in history" rather than a
// failure of the environment.
func absent(err error) bool {
	return errors.Is(err, history.ErrAbsent) || errors.Is(err, history.ErrNotFound)
}

func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}

func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return strings.ToValidUTF8(s[:maxLen], "") + "..."
}
