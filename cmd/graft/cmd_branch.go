package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	var del bool

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, create a new one pointing at HEAD, or delete one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}

			if del {
				if len(args) != 1 {
					return fmt.Errorf("branch --delete requires exactly one branch name")
				}
				return e.Refs.DeleteBranch(args[0])
			}

			if len(args) == 0 {
				names, err := e.Refs.ListBranches()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			headHash, err := e.Refs.Resolve("HEAD", true)
			if err != nil {
				return err
			}
			return e.Refs.CreateBranch(args[0], headHash)
		},
	}

	cmd.Flags().BoolVarP(&del, "delete", "d", false, "delete the named branch")
	return cmd
}
