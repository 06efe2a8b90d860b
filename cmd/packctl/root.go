package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/config-center/pkg/configsdk"
)

const defaultBaseURL = "http://127.0.0.1:4010"

var environments = []string{"dev", "staging", "prod"}

type rootOptions struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "packctl",
		Short: "Release automation for config center domain packs",
		Long: `packctl talks to a config center over HTTP.

The base URL and api key default to CONFIG_CENTER_BASE_URL and
CONFIG_CENTER_API_KEY.

Example:
  packctl push --pack delivery_ops --file pack.yaml --created-by ci
  packctl release --pack delivery_ops --version 3 --env prod`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", envOr("CONFIG_CENTER_BASE_URL", defaultBaseURL), "Config center base URL")
	rootCmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", os.Getenv("CONFIG_CENTER_API_KEY"), "API key for mutating endpoints")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", configsdk.DefaultTimeout, "Per-request timeout")

	rootCmd.AddCommand(
		newReleaseCmd(opts),
		newValidateCmd(opts),
		newPushCmd(opts),
		newActiveCmd(opts),
	)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (o *rootOptions) admin() (*configsdk.AdminClient, error) {
	return configsdk.NewAdmin(configsdk.Options{
		BaseURL:    o.baseURL,
		APIKey:     o.apiKey,
		HTTPClient: &http.Client{Timeout: o.timeout},
	})
}

func checkEnvironment(env string) error {
	for _, e := range environments {
		if e == env {
			return nil
		}
	}
	return fmt.Errorf("--env must be one of: %s", strings.Join(environments, ", "))
}

func checkVersion(n int) error {
	if n < 1 {
		return fmt.Errorf("--version must be a positive integer")
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
