package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "azd-infra",
		Short: "Manage the infrastructure templates of Azure Developer CLI projects",
		Long: `azd-infra keeps the infra folder of an Azure Developer CLI project in
sync with the core templates published in the Azure/azure-dev repository.

It resolves the module dependency graph of your templates, reports modules
that are referenced but missing and modules that are never used, and can
add, update or fix core templates for you.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := rootCmd.PersistentFlags()
	flags.Bool("yes", false, "Do not ask for confirmation")
	flags.Bool("verbose", false, "Show detailed logs")
	flags.Var(newChoiceValue("text", "text", "json"), "log-format", "Log format: text|json")
	flags.Bool("allow-unclean", false, "Allow changes with uncommitted files in the working tree")
	flags.String("from-repo", "", "Use a local azure-dev checkout instead of cloning it")
	flags.Bool("no-color", false, "Disable coloured output")
	flags.Var(newChoiceValue("auto", "auto", "bicep", "terraform"), "dialect", "Template dialect: auto|bicep|terraform")

	// Template Commands
	addCmd := &cobra.Command{
		Use:   "add [path]",
		Short: "Add core templates and their dependencies to a project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunAdd,
	}
	addCmd.Flags().StringSliceP("template", "t", []string{}, "Core templates to add, as paths or glob patterns (default: interactive)")

	updateCmd := &cobra.Command{
		Use:   "update [path]",
		Short: "Update core templates that differ from upstream",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunUpdate,
	}

	fixCmd := &cobra.Command{
		Use:     "fix [path]",
		Aliases: []string{"clean"},
		Short:   "Add missing core modules and remove unused modules",
		Args:    cobra.MaximumNArgs(1),
		RunE:    RunFix,
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh [path]",
		Short: "Update core templates, then fix missing and unused modules",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunRefresh,
	}

	// Inspect Commands
	checkCmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Report missing and unused modules without changing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunCheck,
	}
	checkCmd.Flags().Bool("json", false, "Print machine-readable dependency info")
	checkCmd.Flags().Bool("explain", false, "Explain why each unused module is unused")

	// Additional Commands
	installHookCmd := &cobra.Command{
		Use:   "install-hook [path]",
		Short: "Install git pre-commit hook running azd-infra check",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunInstallHook,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "azd-infra %s\n", version)
		},
	}

	rootCmd.AddCommand(
		addCmd,
		updateCmd,
		fixCmd,
		refreshCmd,
		checkCmd,
		installHookCmd,
		versionCmd,
	)

	return rootCmd
}
