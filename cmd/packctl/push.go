package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/config-center/pkg/configsdk"
)

type pushOptions struct {
	pack          string
	file          string
	createdBy     string
	schemaVersion string
	note          string
	createName    string
}

// newPushCmd uploads a pack file as the next version of a pack.
func newPushCmd(root *rootOptions) *cobra.Command {
	opts := &pushOptions{}
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Create a new pack version from a YAML or JSON file",
		Example: `  packctl push --pack delivery_ops --file delivery_ops.yaml --created-by ci --note "raise routing weight"
  packctl push --pack delivery_ops --file pack.json --created-by alice --create "Delivery Ops"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := loadPackFile(opts.file)
			if err != nil {
				return err
			}
			admin, err := root.admin()
			if err != nil {
				return err
			}
			if opts.createName != "" {
				if _, err := admin.CreatePack(cmd.Context(), opts.pack, opts.createName); err != nil && !configsdk.IsAlreadyExists(err) {
					return fmt.Errorf("create pack %s: %w", opts.pack, err)
				}
			}
			v, err := admin.CreateVersion(cmd.Context(), opts.pack, configsdk.NewVersion{
				SchemaVersion: opts.schemaVersion,
				ChangeNote:    opts.note,
				CreatedBy:     opts.createdBy,
				ContentJSON:   content,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"packCode":  v.PackCode,
				"versionNo": v.VersionNo,
			})
		},
	}
	cmd.Flags().StringVar(&opts.pack, "pack", "", "Pack code")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Pack file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&opts.createdBy, "created-by", "", "Author recorded on the version")
	cmd.Flags().StringVar(&opts.schemaVersion, "schema-version", "1.0.0", "Schema version of the pack content")
	cmd.Flags().StringVar(&opts.note, "note", "", "Change note")
	cmd.Flags().StringVar(&opts.createName, "create", "", "Create the pack with this name if it does not exist")
	_ = cmd.MarkFlagRequired("pack")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("created-by")
	return cmd
}

// loadPackFile returns the file content as JSON. YAML is converted.
func loadPackFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pack file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse pack file: %w", err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("pack file is not representable as JSON: %w", err)
		}
		return out, nil
	default:
		if !json.Valid(data) {
			return nil, fmt.Errorf("pack file %s is not valid JSON", path)
		}
		return json.RawMessage(data), nil
	}
}
