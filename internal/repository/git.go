package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sinedied/azd-infra/internal/ctxlog"
)

// ErrDirtyWorkingTree is returned by CheckClean when the project has
// uncommitted changes.
var ErrDirtyWorkingTree = errors.New("Your working directory has uncommitted changes.\nPlease commit or stash your changes before running this command.")

// ErrNotGitRepository is returned when a directory is not inside a git
// work tree.
var ErrNotGitRepository = errors.New("not inside a git repository")

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	ctxlog.FromContext(ctx).Debug("running git", "args", args)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, msg)
	}
	return stdout.String(), nil
}

// Clone replaces dest with a shallow clone of repo. An empty branch clones
// the default branch.
func Clone(ctx context.Context, repo, branch, dest string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("cloning reference repository", "repository", repo, "branch", branch, "dest", dest)

	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dest, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	args := []string{"clone", "--depth", "1"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, repo, dest)
	if _, err := runGit(ctx, "", args...); err != nil {
		return fmt.Errorf("failed to clone %s: %w", repo, err)
	}

	logger.Debug("cloned reference repository", "dest", dest)
	return nil
}

// IsDirty reports whether the work tree containing dir has uncommitted
// changes, untracked files included.
func IsDirty(ctx context.Context, dir string) (bool, error) {
	out, err := runGit(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to check if repository is clean: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

// CheckClean fails with ErrDirtyWorkingTree when dir has uncommitted
// changes, unless allowUnclean is set.
func CheckClean(ctx context.Context, dir string, allowUnclean bool) error {
	if allowUnclean {
		return nil
	}
	dirty, err := IsDirty(ctx, dir)
	if err != nil {
		return err
	}
	if dirty {
		return ErrDirtyWorkingTree
	}
	return nil
}

// ResolveGitPaths returns the work tree root and the git directory of the
// repository containing workingDir.
func ResolveGitPaths(ctx context.Context, workingDir string) (repoRoot string, gitDir string, err error) {
	repoRootOut, err := runGit(ctx, workingDir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", "", ErrNotGitRepository
	}

	gitDirOut, err := runGit(ctx, workingDir, "rev-parse", "--git-dir")
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve git directory: %w", err)
	}

	repoRoot = strings.TrimSpace(repoRootOut)
	gitDir = strings.TrimSpace(gitDirOut)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(workingDir, gitDir)
	}
	return repoRoot, gitDir, nil
}
