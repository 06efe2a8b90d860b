package main

import (
	"github.com/spf13/cobra"
)

type releaseOptions struct {
	pack       string
	version    int
	env        string
	releasedBy string
}

// newReleaseCmd validates a version and releases it into an environment.
func newReleaseCmd(root *rootOptions) *cobra.Command {
	opts := &releaseOptions{}
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Validate a pack version and release it into an environment",
		Example: `  packctl release --pack delivery_ops --version 1 --env prod
  packctl release --pack delivery_ops --version 2 --env staging --released-by ci`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkVersion(opts.version); err != nil {
				return err
			}
			if err := checkEnvironment(opts.env); err != nil {
				return err
			}
			admin, err := root.admin()
			if err != nil {
				return err
			}
			binding, err := admin.ValidateAndRelease(cmd.Context(), opts.pack, opts.version, opts.env, opts.releasedBy)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), binding)
		},
	}
	cmd.Flags().StringVar(&opts.pack, "pack", "", "Pack code")
	cmd.Flags().IntVar(&opts.version, "version", 0, "Version number to release")
	cmd.Flags().StringVar(&opts.env, "env", "", "Target environment (dev, staging, prod)")
	cmd.Flags().StringVar(&opts.releasedBy, "released-by", "release-bot", "Actor recorded on the release binding")
	_ = cmd.MarkFlagRequired("pack")
	_ = cmd.MarkFlagRequired("version")
	_ = cmd.MarkFlagRequired("env")
	return cmd
}
