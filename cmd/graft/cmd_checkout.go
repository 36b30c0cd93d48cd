package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch|hash>",
		Short: "Switch HEAD, the index, and the working tree to a branch or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			result, err := e.Checkout(args[0])
			if err != nil {
				return err
			}
			if result.Branch != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch '%s'\n", result.Branch)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Note: checking out '%s' detached HEAD at %s\n", args[0], shortHash(result.Commit))
			}
			return nil
		},
	}
}
