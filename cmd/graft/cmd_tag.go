package main

import (
	"fmt"

	"github.com/odvcencio/graft/pkg/object"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "tag [name] [target]",
		Short: "List lightweight tags, or create one pointing at target (default HEAD)",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				names, err := e.Refs.ListTags()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			targetHash, err := e.Refs.Resolve("HEAD", true)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				if h, err := e.Refs.Resolve("refs/heads/"+args[1], true); err == nil {
					targetHash = h
				} else {
					targetHash = object.Hash(args[1])
				}
			}
			return e.Refs.CreateTag(args[0], targetHash, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing tag")

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			return e.Refs.DeleteTag(args[0])
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print the commit a tag resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			hash, err := e.Refs.ResolveTag(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.AddCommand(deleteCmd, showCmd)
	return cmd
}
