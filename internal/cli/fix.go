package cli

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/gookit/color"
	"github.com/sinedied/azd-infra/internal/ctxlog"
	"github.com/sinedied/azd-infra/internal/fileutil"
	"github.com/sinedied/azd-infra/internal/graph"
	"github.com/spf13/cobra"
)

// CoreDir holds the shared core templates inside the infra folder.
const CoreDir = "core"

func RunFix(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd, args)
	if err != nil {
		return err
	}
	return runFix(env)
}

func runFix(env *commandEnv) error {
	env.println("Checking your infrastructure for issues...")

	info, err := env.resolveProject()
	if err != nil {
		return err
	}

	printIssues(env, info, false)
	if info.IsClean() {
		return nil
	}

	if !env.confirm("Add/remove files?") {
		env.println("Cancelled, no changes made.")
		return nil
	}

	if err := env.checkClean(); err != nil {
		return err
	}

	if len(info.Missing) > 0 {
		if err := fixMissingModules(env, info.Missing); err != nil {
			return err
		}
	}
	if len(info.Unused) > 0 {
		if err := removeUnusedModules(env, info.Unused); err != nil {
			return err
		}
	}

	env.println("Fix completed.")
	return nil
}

// printIssues reports the module count followed by missing and unused
// modules. With explain, each unused module says why.
func printIssues(env *commandEnv, info *graph.DependencyInfo, explain bool) {
	env.printf("Found %s infra modules.\n", color.Cyan.Sprint(len(info.All)))

	if len(info.Outside) > 0 {
		env.printf("References outside the project: %s\n", color.Yellow.Sprint(len(info.Outside)))
		for _, ref := range slices.Sorted(maps.Keys(info.Outside)) {
			usedBy := SummarizePaths(info.Outside[ref], 8)
			env.println("- " + color.Yellow.Sprint(ref) + color.Gray.Sprintf(" (used by %s)", usedBy))
		}
	}

	if info.IsClean() {
		env.println("No unused or missing modules found, all good!")
		return
	}

	if len(info.Missing) > 0 {
		env.printf("Missing modules: %s\n", color.Red.Sprint(len(info.Missing)))
		for _, module := range info.Missing {
			usedBy := SummarizePaths(info.UsedBy(module), 8)
			env.println("- " + color.Red.Sprint(module) + color.Gray.Sprintf(" (used by %s)", usedBy))
		}
	}

	if len(info.Unused) > 0 {
		env.printf("Unused modules: %s\n", color.Yellow.Sprint(len(info.Unused)))
		for _, module := range info.Unused {
			line := "- " + color.Yellow.Sprint(module)
			if explain {
				line += color.Gray.Sprintf(" (%s)", info.Explain(module))
			}
			env.println(line)
		}
	}
}

// fixMissingModules copies missing core modules from the reference
// templates. Modules outside the core folder are project specific and are
// only reported.
func fixMissingModules(env *commandEnv, missing []string) error {
	env.println("Adding missing modules...")
	logger := ctxlog.FromContext(env.ctx)
	corePrefix := path.Join(env.project.InfraPath, CoreDir) + "/"

	upstream, err := env.upstreamTemplates()
	if err != nil {
		return err
	}

	for _, module := range missing {
		if !strings.HasPrefix(module, corePrefix) {
			env.println(color.Yellow.Sprintf("Skipping non-core module: %s", module))
			continue
		}

		rel := strings.TrimPrefix(module, env.project.InfraPath+"/")
		files, err := env.project.Dialect.Files(upstream, rel)
		if err != nil {
			logger.Debug("core module lookup failed", "module", module, "error", err)
			env.println(color.Red.Sprintf("Missing core module does not exist: %s", module))
			continue
		}

		for _, file := range files {
			target := env.projectPath(path.Join(env.project.InfraPath, file))
			logger.Debug("copying missing module", "source", file, "target", target)
			if err := fileutil.CopyFromFS(upstream, file, target); err != nil {
				return fmt.Errorf("failed to add missing module %s: %w", module, err)
			}
		}
		env.println(color.Green.Sprintf("Added: %s", module))
	}
	return nil
}

// removeUnusedModules deletes the files of every unused module, pruning the
// directories left empty.
func removeUnusedModules(env *commandEnv, unused []string) error {
	env.println("Removing unused modules...")
	infraDir := env.infraDir()

	for _, module := range unused {
		files, err := env.project.Dialect.Files(env.project.FS, module)
		if err != nil {
			return fmt.Errorf("failed to remove unused module %s: %w", module, err)
		}
		for _, file := range files {
			if err := fileutil.RemoveFile(env.projectPath(file), infraDir); err != nil {
				return fmt.Errorf("failed to remove unused module %s: %w", module, err)
			}
		}
		env.println(color.Green.Sprintf("Removed: %s", module))
	}
	return nil
}
