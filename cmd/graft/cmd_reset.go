package main

import (
	"fmt"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/odvcencio/graft/pkg/object"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var soft, hard bool
	cmd := &cobra.Command{
		Use:   "reset <commit>",
		Short: "Move HEAD, and optionally the index and working tree, to a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			target, err := e.Refs.Resolve("refs/heads/"+args[0], true)
			if err != nil {
				target = object.Hash(args[0])
			}

			mode := historyengine.ResetMixed
			switch {
			case soft:
				mode = historyengine.ResetSoft
			case hard:
				mode = historyengine.ResetHard
			}

			if err := e.Reset(target, mode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "HEAD is now at %s\n", shortHash(target))
			return nil
		},
	}
	cmd.Flags().BoolVar(&soft, "soft", false, "move HEAD only")
	cmd.Flags().BoolVar(&hard, "hard", false, "move HEAD, the index, and the working tree")
	return cmd
}
