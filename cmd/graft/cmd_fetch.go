package main

import (
	"fmt"
	"path/filepath"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/odvcencio/graft/pkg/remote"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "fetch <remote>",
		Short: "Fetch a branch from a configured remote",
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
			newHash, written, err := remote.Fetch(e.Store, e.Refs, r, args[0], branch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %s (%d new objects) -> %s\n", branch, written, shortHash(newHash))
			return nil
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "main", "remote branch to fetch")
	return cmd
}
