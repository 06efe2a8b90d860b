package main

import (
	"github.com/spf13/cobra"
)

func newActiveCmd(root *rootOptions) *cobra.Command {
	var pack, env string
	cmd := &cobra.Command{
		Use:   "active",
		Short: "Show the pack version live in an environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEnvironment(env); err != nil {
				return err
			}
			admin, err := root.admin()
			if err != nil {
				return err
			}
			active, err := admin.ActiveVersion(cmd.Context(), pack, env)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), active)
		},
	}
	cmd.Flags().StringVar(&pack, "pack", "", "Pack code (business line)")
	cmd.Flags().StringVar(&env, "env", "prod", "Environment (dev, staging, prod)")
	_ = cmd.MarkFlagRequired("pack")
	return cmd
}
