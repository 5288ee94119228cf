package cli

import (
	"errors"

	"github.com/sinedied/azd-infra/internal/fileutil"
	"github.com/sinedied/azd-infra/internal/graph"
	"github.com/spf13/cobra"
)

// ErrIssuesFound is returned by check when modules are missing or unused.
var ErrIssuesFound = errors.New("infrastructure has missing or unused modules")

func RunCheck(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	explain, err := OptionalBoolFlag(cmd, "explain", false)
	if err != nil {
		return err
	}

	env, err := newCommandEnv(cmd, args)
	if err != nil {
		return err
	}

	info, err := env.resolveProject()
	if err != nil {
		return err
	}

	if asJSON {
		if err := fileutil.PrintJSON(env.out, newCheckSummary(env, info, explain)); err != nil {
			return err
		}
	} else {
		printIssues(env, info, explain)
	}

	if !info.IsClean() {
		return ErrIssuesFound
	}
	return nil
}

func newCheckSummary(env *commandEnv, info *graph.DependencyInfo, explain bool) CheckSummary {
	summary := CheckSummary{
		Mode:           "check",
		RootPath:       env.project.Root,
		InfraPath:      env.project.InfraPath,
		Dialect:        env.project.Dialect.Name(),
		Clean:          info.IsClean(),
		Modules:        len(info.All),
		MissingCount:   len(info.Missing),
		UnusedCount:    len(info.Unused),
		DependencyInfo: info,
	}
	if explain && len(info.Unused) > 0 {
		summary.Reasons = make(map[string]string, len(info.Unused))
		for _, module := range info.Unused {
			summary.Reasons[module] = info.Explain(module)
		}
	}
	if len(info.Missing) > 0 {
		dependents := info.Dependents()
		summary.UsedBy = make(map[string][]string, len(info.Missing))
		for _, module := range info.Missing {
			summary.UsedBy[module] = dependents[module]
		}
	}
	return summary
}
