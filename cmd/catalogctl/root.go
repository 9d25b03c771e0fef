package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rpupo63/video-catalog-backend/client"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	server  string
	token   string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Command-line client for the video catalog API",
		Long: `catalogctl browses and curates the video catalog.

Reads are public. add, edit and delete need the administrator's access token.

Examples:
  catalogctl list --sort rating --limit 5
  catalogctl list -q golang --tag talks
  catalogctl get 3f1c...
  catalogctl add --url https://youtu.be/abc123456 --title "Talk" --tags go,talks
  catalogctl edit 3f1c... --rating 5 --publish-date ""
  catalogctl delete 3f1c...`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", envOr("CATALOG_URL", "http://localhost:8080"), "Catalog API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("CATALOG_TOKEN"), "Administrator access token")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newDeleteCmd(opts),
		newAdminCmd(opts),
	)
	return rootCmd
}

func (o *globalOptions) client() *client.Client {
	return client.New(o.server, client.WithTimeout(o.timeout))
}

// session confirms the token with the server before any mutation is sent.
func (o *globalOptions) session(ctx context.Context, c *client.Client) (*client.Session, error) {
	if o.token == "" {
		return nil, fmt.Errorf("--token or CATALOG_TOKEN is required")
	}
	session := &client.Session{}
	if err := session.Apply(ctx, c, o.token); err != nil {
		return nil, err
	}
	return session, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
