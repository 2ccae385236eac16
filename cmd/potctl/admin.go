package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var clearPendingCmd = &cobra.Command{
	Use:   "clear-pending",
	Short: "Remove all pending join verifications (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp Response[struct {
			Cleared int64 `json:"cleared"`
		}]
		if err := apiClient.Delete("/verifications", &resp); err != nil {
			return fmt.Errorf("clearing verifications: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}
		fmt.Printf("Cleared %d pending verification(s).\n", resp.Data.Cleared)
		return nil
	},
}

var resetExpensesForce bool

var resetExpensesCmd = &cobra.Command{
	Use:   "reset-expenses",
	Short: "Delete every expense in the group (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if !resetExpensesForce {
			fmt.Print("This deletes every expense in the group. Type 'yes' to continue: ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(answer) != "yes" {
				return fmt.Errorf("aborted")
			}
		}

		var resp Response[struct {
			Removed int64 `json:"removed"`
		}]
		if err := apiClient.Delete("/expenses", &resp); err != nil {
			return fmt.Errorf("resetting expenses: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}
		fmt.Printf("Removed %d expense(s).\n", resp.Data.Removed)
		return nil
	},
}

func init() {
	resetExpensesCmd.Flags().BoolVar(&resetExpensesForce, "force", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearPendingCmd)
	rootCmd.AddCommand(resetExpensesCmd)
}
