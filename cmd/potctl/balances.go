package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type memberBalance struct {
	MemberID  string  `json:"memberID"`
	Name      string  `json:"name"`
	IsAdmin   bool    `json:"isAdmin"`
	TotalPaid float64 `json:"totalPaid"`
	TotalOwed float64 `json:"totalOwed"`
	Balance   float64 `json:"balance"`
}

var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show per-member balances for the group",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp Response[[]memberBalance]
		if err := apiClient.Get("/balances", nil, &resp); err != nil {
			return fmt.Errorf("fetching balances: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPAID\tOWED\tBALANCE")
		for _, b := range resp.Data {
			fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%+.2f\n", b.Name, b.TotalPaid, b.TotalOwed, b.Balance)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}
