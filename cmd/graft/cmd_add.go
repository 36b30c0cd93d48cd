package main

import (
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <paths...>",
		Short: "Stage files for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			idx, err := e.LoadIndex()
			if err != nil {
				return err
			}
			for _, path := range args {
				hash, err := e.WT.WriteBlob(e.Store, path)
				if err != nil {
					return err
				}
				idx.Stage(path, hash)
			}
			return e.SaveIndex(idx)
		},
	}
}
