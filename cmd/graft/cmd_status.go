package main

import (
	"fmt"

	"github.com/odvcencio/graft/pkg/workingtree"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged, unstaged, and untracked changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			ic := workingtree.NewIgnoreChecker(e.Root)
			st, err := e.Status(ic)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(st.Conflicts) > 0 {
				fmt.Fprintln(out, "Unmerged paths:")
				for _, p := range st.Conflicts {
					fmt.Fprintf(out, "\tconflict: %s\n", p)
				}
			}
			if len(st.Staged) > 0 {
				fmt.Fprintln(out, "Changes to be committed:")
				for _, c := range st.Staged {
					fmt.Fprintf(out, "\t%s: %s\n", c.Type, c.Path)
				}
			}
			if len(st.Unstaged) > 0 {
				fmt.Fprintln(out, "Changes not staged for commit:")
				for _, c := range st.Unstaged {
					fmt.Fprintf(out, "\t%s: %s\n", c.Type, c.Path)
				}
			}
			if len(st.Untracked) > 0 {
				fmt.Fprintln(out, "Untracked files:")
				for _, p := range st.Untracked {
					fmt.Fprintf(out, "\t%s\n", p)
				}
			}
			return nil
		},
	}
}
