package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/graft/pkg/historyengine"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var branch string
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			if _, err := historyengine.Init(abs, branch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty repository in %s\n",
				filepath.Join(abs, historyengine.MetaDirName)+string(filepath.Separator))
			return nil
		},
	}
	cmd.Flags().StringVar(&branch, "branch", "main", "name of the initial branch")
	return cmd
}
