package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON      bool
	flagServerURL string
	flagToken     string

	apiClient *Client
)

var rootCmd = &cobra.Command{
	Use:   "potctl",
	Short: "SplitPot CLI — inspect and administer a shared expense group",
	Long: `potctl talks to a SplitPot server with a member token and lets you
check balances, print the settlement plan, and run the admin
maintenance operations from the terminal.

Get started:
  potctl --token X whoami       Show the member behind the token
  potctl balances               Per-member balances for the group
  potctl settle-plan            Who pays whom to settle up`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		server := flagServerURL
		if server == "" {
			server = os.Getenv("POTCTL_SERVER")
		}
		if server == "" {
			server = "http://localhost:8080"
		}
		token := flagToken
		if token == "" {
			token = os.Getenv("POTCTL_TOKEN")
		}
		apiClient = NewClient(server, token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "Server URL (default: $POTCTL_SERVER or http://localhost:8080)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Member token (default: $POTCTL_TOKEN)")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func requireAuth() error {
	if apiClient == nil || apiClient.Token == "" {
		return fmt.Errorf("no token configured — pass --token or set POTCTL_TOKEN")
	}
	return nil
}
