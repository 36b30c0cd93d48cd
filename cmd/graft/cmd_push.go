package main

import (
	"fmt"
	"path/filepath"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/odvcencio/graft/pkg/remote"
	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "push <remote>",
		Short: "Push a branch to a configured remote, fast-forward only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			cfg, err := e.LoadConfig()
			if err != nil {
				return err
			}
			url, err := cfg.RemoteURL(args[0])
			if err != nil {
				return err
			}

			r := remote.Open(filepath.Join(url, historyengine.MetaDirName))
			newHash, written, err := remote.Push(e.Store, e.Refs, r, branch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %s (%d new objects) -> %s\n", branch, written, shortHash(newHash))
			return nil
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "main", "local branch to push")
	return cmd
}
