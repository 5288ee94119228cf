package cli

import "github.com/spf13/cobra"

func RunRefresh(cmd *cobra.Command, args []string) error {
	env, err := newCommandEnv(cmd, args)
	if err != nil {
		return err
	}

	if err := runUpdate(env); err != nil {
		return err
	}

	// update already checked the working tree and may have dirtied it.
	env.opts.AllowUnclean = true
	return runFix(env)
}
