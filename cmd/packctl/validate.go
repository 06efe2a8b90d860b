package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		pack    string
		version int
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the domain pack schema check on a stored version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkVersion(version); err != nil {
				return err
			}
			admin, err := root.admin()
			if err != nil {
				return err
			}
			res, err := admin.Validate(cmd.Context(), pack, version)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("%s:%d has %d schema issue(s)", pack, version, len(res.Issues))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pack, "pack", "", "Pack code")
	cmd.Flags().IntVar(&version, "version", 0, "Version number")
	_ = cmd.MarkFlagRequired("pack")
	_ = cmd.MarkFlagRequired("version")
	return cmd
}
