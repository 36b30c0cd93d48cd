package main

import (
	"errors"
	"fmt"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/odvcencio/graft/pkg/object"
	"github.com/spf13/cobra"
)

func newRebaseCmd() *cobra.Command {
	var abort, continueRebase bool
	cmd := &cobra.Command{
		Use:   "rebase <upstream>",
		Short: "Replay HEAD's unique commits onto upstream",
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

			var result historyengine.RebaseResult
			if abort {
				return e.RebaseAbort()
			} else if continueRebase {
				result, err = e.RebaseContinue(committer)
			} else {
				if len(args) != 1 {
					return fmt.Errorf("rebase: an upstream branch or commit is required")
				}
				upstream, resolveErr := e.Refs.Resolve("refs/heads/"+args[0], true)
				if resolveErr != nil {
					upstream = object.Hash(args[0])
				}
				result, err = e.Rebase(upstream, committer)
			}

			if err != nil {
				if errors.Is(err, historyengine.ErrRebaseConflicts) {
					fmt.Fprintln(cmd.OutOrStdout(), "error: could not apply a commit; fix conflicts and run rebase --continue")
					for _, p := range result.Conflicts {
						fmt.Fprintf(cmd.OutOrStdout(), "\tconflict: %s\n", p)
					}
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rebase finished at %s\n", shortHash(result.Commit))
			return nil
		},
	}
	cmd.Flags().BoolVar(&abort, "abort", false, "abort an in-progress rebase")
	cmd.Flags().BoolVar(&continueRebase, "continue", false, "resume a paused rebase")
	return cmd
}
