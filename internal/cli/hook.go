package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sinedied/azd-infra/internal/fileutil"
	"github.com/sinedied/azd-infra/internal/repository"
	"github.com/spf13/cobra"
)

const (
	HookStart = "# >>> azd-infra check hook >>>"
	HookEnd   = "# <<< azd-infra check hook <<<"
)

func RunInstallHook(cmd *cobra.Command, args []string) error {
	projectPath, err := resolveTargetPath(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repoRoot, gitDir, err := repository.ResolveGitPaths(ctx, projectPath)
	if err != nil {
		return err
	}

	projectRel, err := relativeProjectPath(repoRoot, projectPath)
	if err != nil {
		return err
	}

	hookPath := filepath.Join(gitDir, "hooks", "pre-commit")
	if err := os.MkdirAll(filepath.Dir(hookPath), 0755); err != nil {
		return fmt.Errorf("failed to create hook directory: %w", err)
	}

	existing := ""
	if data, err := os.ReadFile(hookPath); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read existing hook: %w", err)
	}

	updated := UpsertCheckHook(existing, repoRoot, projectRel)
	if err := os.WriteFile(hookPath, []byte(updated), 0755); err != nil {
		return fmt.Errorf("failed to write hook: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Installed pre-commit hook at %s\n", hookPath)
	return nil
}

func relativeProjectPath(repoRoot, projectPath string) (string, error) {
	root, err := filepath.EvalSymlinks(repoRoot)
	if err != nil {
		root = repoRoot
	}
	target, err := filepath.EvalSymlinks(projectPath)
	if err != nil {
		target = projectPath
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("failed to locate project in repository: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func UpsertCheckHook(existingHook, repoRoot, projectRel string) string {
	block := BuildCheckHookBlock(repoRoot, projectRel)

	if existingHook == "" {
		return "#!/bin/sh\n\n" + block + "\n"
	}

	start := strings.Index(existingHook, HookStart)
	end := strings.Index(existingHook, HookEnd)
	if start >= 0 && end >= start {
		end += len(HookEnd)
		updated := existingHook[:start] + block + existingHook[end:]
		return fileutil.EnsureTrailingNewline(updated)
	}

	base := fileutil.EnsureTrailingNewline(existingHook)
	if !strings.HasPrefix(base, "#!") {
		base = "#!/bin/sh\n" + base
	}
	return base + "\n" + block + "\n"
}

func BuildCheckHookBlock(repoRoot, projectRel string) string {
	if projectRel == "" {
		projectRel = "."
	}
	return fmt.Sprintf(
		"%s\nrepo_root=%q\nif command -v azd-infra >/dev/null 2>&1; then\n  (cd \"$repo_root\" && azd-infra check %q) || exit 1\nfi\n%s",
		HookStart,
		repoRoot,
		projectRel,
		HookEnd,
	)
}
