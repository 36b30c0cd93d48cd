package main

import (
	"errors"
	"fmt"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/odvcencio/graft/pkg/object"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var message string
	var abort, continueMerge bool
	cmd := &cobra.Command{
		Use:   "merge <branch|hash>",
		Short: "Merge another branch into HEAD",
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
				return e.MergeAbort()
			}
			if continueMerge {
				hash, err := e.MergeContinue(committer, message)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "merge %s\n", shortHash(hash))
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("merge: a branch or commit to merge is required")
			}

			theirHash, err := e.Refs.Resolve("refs/heads/"+args[0], true)
			if err != nil {
				theirHash = object.Hash(args[0])
			}
			if message == "" {
				message = fmt.Sprintf("Merge %s", args[0])
			}

			result, err := e.Merge(theirHash, committer, message)
			if err != nil {
				if errors.Is(err, historyengine.ErrMergeConflicts) {
					fmt.Fprintln(cmd.OutOrStdout(), "Automatic merge failed; fix conflicts and then commit the result.")
					for _, p := range result.Conflicts {
						fmt.Fprintf(cmd.OutOrStdout(), "\tconflict: %s\n", p)
					}
					return nil
				}
				return err
			}
			if result.FastForward {
				fmt.Fprintf(cmd.OutOrStdout(), "Fast-forward to %s\n", shortHash(result.Commit))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "merge %s\n", shortHash(result.Commit))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "merge commit message")
	cmd.Flags().BoolVar(&abort, "abort", false, "abort an in-progress merge")
	cmd.Flags().BoolVar(&continueMerge, "continue", false, "finish a conflicted merge")
	return cmd
}
