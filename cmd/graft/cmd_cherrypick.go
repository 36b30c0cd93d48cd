package main

import (
	"errors"
	"fmt"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/odvcencio/graft/pkg/object"
	"github.com/spf13/cobra"
)

func newCherryPickCmd() *cobra.Command {
	var abort, continuePick bool
	cmd := &cobra.Command{
		Use:   "cherry-pick <hash>",
		Short: "Replay a commit's change onto HEAD",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			committer, err := currentCommitter(e)
			if err != nil {
				return err
			}

			if abort {
				return e.CherryPickAbort()
			}
			if continuePick {
				hash, err := e.CherryPickContinue(committer)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cherry-pick %s\n", shortHash(hash))
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("cherry-pick: a commit to pick is required")
			}

			result, err := e.CherryPick(object.Hash(args[0]), committer)
			if err != nil {
				if errors.Is(err, historyengine.ErrCherryPickConflicts) {
					fmt.Fprintln(cmd.OutOrStdout(), "error: could not apply the commit; fix conflicts and run cherry-pick --continue")
					for _, p := range result.Conflicts {
						fmt.Fprintf(cmd.OutOrStdout(), "\tconflict: %s\n", p)
					}
					return nil
				}
				return err
			}
			if result.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to commit; skipped empty replay")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cherry-pick %s\n", shortHash(result.Commit))
			return nil
		},
	}
	cmd.Flags().BoolVar(&abort, "abort", false, "abort an in-progress cherry-pick")
	cmd.Flags().BoolVar(&continuePick, "continue", false, "finish a conflicted cherry-pick")
	return cmd
}
