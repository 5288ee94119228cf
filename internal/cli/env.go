package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/sinedied/azd-infra/internal/config"
	"github.com/sinedied/azd-infra/internal/ctxlog"
	"github.com/sinedied/azd-infra/internal/dialect"
	"github.com/sinedied/azd-infra/internal/graph"
	"github.com/sinedied/azd-infra/internal/project"
	"github.com/sinedied/azd-infra/internal/repository"
	"github.com/spf13/cobra"
)

// commandEnv is everything one command invocation works with.
type commandEnv struct {
	ctx      context.Context
	out      io.Writer
	in       *bufio.Reader
	opts     globalOptions
	cfg      config.Config
	registry *dialect.Registry
	project  *project.Project

	upstream *repository.Source
}

func resolveTargetPath(args []string) (string, error) {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return abs, nil
}

// newCommandEnv parses the shared flags, loads the configuration of the
// project at the target path and validates the project.
func newCommandEnv(cmd *cobra.Command, args []string) (*commandEnv, error) {
	opts, err := parseGlobalOptions(cmd)
	if err != nil {
		return nil, err
	}
	if opts.NoColor {
		color.Enable = false
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(opts.Verbose, opts.LogFormat, cmd.ErrOrStderr())
	ctx = ctxlog.WithLogger(ctx, logger)

	target, err := resolveTargetPath(args)
	if err != nil {
		return nil, err
	}
	logger.Debug("running command", "command", cmd.Name(), "path", target, "options", opts)

	cfg, err := config.Load(target)
	if err != nil {
		return nil, err
	}
	if opts.FromRepo != "" {
		cfg.FromRepo = opts.FromRepo
	}

	registry := dialect.NewDefaultRegistry()
	proj, err := project.Load(target, cfg.InfraPath, registry, opts.Dialect)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded project", "root", proj.Root, "infra", proj.InfraPath, "dialect", proj.Dialect.Name())

	return &commandEnv{
		ctx:      ctx,
		out:      cmd.OutOrStdout(),
		in:       bufio.NewReader(cmd.InOrStdin()),
		opts:     opts,
		cfg:      cfg,
		registry: registry,
		project:  proj,
	}, nil
}

func (e *commandEnv) printf(format string, args ...any) {
	fmt.Fprintf(e.out, format, args...)
}

func (e *commandEnv) println(args ...any) {
	fmt.Fprintln(e.out, args...)
}

// openUpstream returns the reference checkout, cloning it on first use.
func (e *commandEnv) openUpstream() (*repository.Source, error) {
	if e.upstream != nil {
		return e.upstream, nil
	}
	src, err := repository.Open(e.ctx, repository.Options{
		Repository: e.cfg.Repository,
		Branch:     e.cfg.Branch,
		FromRepo:   e.cfg.FromRepo,
		CloneDir:   e.cfg.CloneDir,
		CacheSize:  e.cfg.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve core templates: %w", err)
	}
	e.upstream = src
	return src, nil
}

// upstreamTemplates returns the reference templates of the project's dialect.
func (e *commandEnv) upstreamTemplates() (fs.FS, error) {
	src, err := e.openUpstream()
	if err != nil {
		return nil, err
	}
	return src.FS(e.project.Dialect.TemplatePath())
}

// resolveProject resolves every template of the project's infra folder.
func (e *commandEnv) resolveProject() (*graph.DependencyInfo, error) {
	files, err := e.project.AllFiles()
	if err != nil {
		return nil, err
	}
	return e.resolve(e.project.FS, files, e.project.InfraPath, "Resolving")
}

func (e *commandEnv) resolve(fsys fs.FS, files []string, basePath, label string) (*graph.DependencyInfo, error) {
	progress := newResolveProgressReporter(label, e.opts.Verbose)
	info, err := graph.Resolve(e.ctx, fsys, e.project.Dialect, files, basePath,
		graph.WithConcurrency(e.cfg.Concurrency),
		graph.WithObserver(progress.Update),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	progress.Done(len(info.All))
	return info, nil
}

// checkClean refuses to modify a project with uncommitted changes.
func (e *commandEnv) checkClean() error {
	return repository.CheckClean(e.ctx, e.project.Root, e.opts.AllowUnclean)
}

// confirm asks question unless --yes was given.
func (e *commandEnv) confirm(question string) bool {
	if e.opts.Yes {
		return true
	}
	return askForConfirmation(e.out, e.in, question)
}

// projectPath maps a slash path relative to the project root to the OS.
func (e *commandEnv) projectPath(rel string) string {
	return e.project.Abs(rel)
}

func (e *commandEnv) infraDir() string {
	return e.projectPath(e.project.InfraPath)
}
