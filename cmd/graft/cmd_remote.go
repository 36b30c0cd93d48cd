package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage configured remotes",
	}

	addCmd := &cobra.Command{
		Use:   "add <name> <path>",
		Short: "Add a remote pointing at another repository's directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			cfg, err := e.LoadConfig()
			if err != nil {
				return err
			}
			if err := cfg.SetRemote(args[0], args[1]); err != nil {
				return err
			}
			return e.SaveConfig(cfg)
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a configured remote",
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
			if err := cfg.RemoveRemote(args[0]); err != nil {
				return err
			}
			return e.SaveConfig(cfg)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured remotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine()
			if err != nil {
				return err
			}
			cfg, err := e.LoadConfig()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(cfg.Remotes))
			for name := range cfg.Remotes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, cfg.Remotes[name].URL)
			}
			return nil
		},
	}

	cmd.AddCommand(addCmd, removeCmd, listCmd)
	return cmd
}
