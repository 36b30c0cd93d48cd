package main

import (
	"fmt"

	"github.com/odvcencio/graft/pkg/object"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			commits, err := e.Log("", limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range commits {
				hash := object.HashObject(object.TypeCommit, object.MarshalCommit(c))
				fmt.Fprintf(out, "commit %s\n", shortHash(hash))
				fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
				fmt.Fprintf(out, "\n    %s\n\n", c.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 = unbounded)")
	return cmd
}
