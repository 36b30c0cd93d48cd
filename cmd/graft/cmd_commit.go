package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}
			e, err := openEngine()
			if err != nil {
				return err
			}
			committer, err := currentCommitter(e)
			if err != nil {
				return err
			}
			hash, err := e.Commit(message, committer)
			if err != nil {
				return err
			}

			branch := "HEAD"
			if _, symbolic, target, err := e.Refs.ResolveOne("HEAD"); err == nil && symbolic && strings.HasPrefix(target, "refs/heads/") {
				branch = strings.TrimPrefix(target, "refs/heads/")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, shortHash(hash), message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
