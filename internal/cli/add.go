package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/bmatcuk/doublestar"
	"github.com/gookit/color"
	"github.com/sinedied/azd-infra/internal/ctxlog"
	"github.com/sinedied/azd-infra/internal/fileutil"
	"github.com/sinedied/azd-infra/internal/graph"
	"github.com/sinedied/azd-infra/internal/project"
	"github.com/spf13/cobra"
)

func RunAdd(cmd *cobra.Command, args []string) error {
	patterns, err := OptionalStringSliceFlag(cmd, "template")
	if err != nil {
		return err
	}
	env, err := newCommandEnv(cmd, args)
	if err != nil {
		return err
	}
	return runAdd(env, patterns)
}

func runAdd(env *commandEnv, patterns []string) error {
	env.println("Retrieving latest core templates...")

	upstream, err := env.upstreamTemplates()
	if err != nil {
		return err
	}
	coreTemplates, err := project.Inventory(upstream, ".", env.project.Dialect.CoreGlobs(), nil)
	if err != nil {
		return err
	}

	var selected []string
	if len(patterns) > 0 {
		selected, err = matchTemplates(coreTemplates, patterns)
	} else {
		selected, err = selectMany(env.out, env.in, "Select core templates to add", coreTemplates)
	}
	if err != nil {
		return err
	}
	ctxlog.FromContext(env.ctx).Debug("selected core templates", "templates", selected)

	if len(selected) == 0 {
		env.println("No core templates selected, nothing to add.")
		return nil
	}

	templatesToAdd, missing, err := resolveTemplateFiles(env, upstream, selected)
	if err != nil {
		return err
	}

	env.println("Resolved core templates with dependencies:")
	for _, file := range templatesToAdd {
		env.printf("- %s\n", file)
	}
	for _, module := range missing {
		env.println(color.Yellow.Sprintf("Skipping missing dependency: %s", module))
	}

	count := color.Cyan.Sprint(len(templatesToAdd))
	if !env.confirm(fmt.Sprintf("Add %s core template(s) to your project?", count)) {
		env.println("Cancelled, no templates added.")
		return nil
	}

	for _, file := range templatesToAdd {
		target := env.projectPath(path.Join(env.project.InfraPath, file))
		if err := fileutil.CopyFromFS(upstream, file, target); err != nil {
			return fmt.Errorf("failed to copy core template %s to %s: %w", file, target, err)
		}
	}

	env.printf("Added %s core templates to your project.\n", count)
	return nil
}

// matchTemplates picks the core templates matching any of patterns, each an
// exact path or a doublestar glob. A pattern matching nothing is an error.
func matchTemplates(templates, patterns []string) ([]string, error) {
	picked := make(map[string]bool)
	for _, pattern := range patterns {
		pattern = path.Clean(pattern)
		matched := false
		for _, template := range templates {
			ok, err := doublestar.Match(pattern, template)
			if err != nil {
				return nil, fmt.Errorf("invalid template pattern %q: %w", pattern, err)
			}
			if ok || template == pattern {
				picked[template] = true
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("no core template matches %q", pattern)
		}
	}

	selected := make([]string, 0, len(picked))
	for _, template := range templates {
		if picked[template] {
			selected = append(selected, template)
		}
	}
	return selected, nil
}

// resolveTemplateFiles expands the selection with every module it depends
// on, then lists the files to copy: the files of each resolved module
// followed by the selected files that belong to no module.
func resolveTemplateFiles(env *commandEnv, upstream fs.FS, selected []string) ([]string, []string, error) {
	d := env.project.Dialect
	files := make([]string, 0, len(selected))
	missing := make([]string, 0)

	info, err := env.resolve(upstream, selected, ".", "Resolving")
	switch {
	case errors.Is(err, graph.ErrNoSeeds):
	case err != nil:
		return nil, nil, err
	default:
		missing = info.Missing
		for _, module := range info.All {
			if _, ok := info.Graph[module]; !ok {
				continue
			}
			moduleFiles, err := d.Files(upstream, module)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to list core template %s: %w", module, err)
			}
			files = append(files, moduleFiles...)
		}
	}

	for _, file := range selected {
		if _, ok := d.Unit(file); !ok {
			files = append(files, file)
		}
	}
	return fileutil.DedupeStrings(files), missing, nil
}
