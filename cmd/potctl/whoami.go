package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type sessionInfo struct {
	Member struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		IsAdmin bool   `json:"isAdmin"`
	} `json:"member"`
	Group struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Code     string `json:"code"`
		Currency string `json:"currency"`
	} `json:"group"`
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the member and group behind the current token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp Response[sessionInfo]
		if err := apiClient.Get("/auth/me", nil, &resp); err != nil {
			return fmt.Errorf("fetching session: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		role := "member"
		if resp.Data.Member.IsAdmin {
			role = "admin"
		}
		fmt.Printf("%s (%s) in %q — join code %s, currency %s\n",
			resp.Data.Member.Name, role,
			resp.Data.Group.Name, resp.Data.Group.Code, resp.Data.Group.Currency)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
