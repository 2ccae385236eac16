package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type transfer struct {
	FromID   string  `json:"fromID"`
	FromName string  `json:"fromName"`
	ToID     string  `json:"toID"`
	ToName   string  `json:"toName"`
	Amount   float64 `json:"amount"`
}

var settlePlanCmd = &cobra.Command{
	Use:   "settle-plan",
	Short: "Print who pays whom to settle the group",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp Response[[]transfer]
		if err := apiClient.Get("/settlements", nil, &resp); err != nil {
			return fmt.Errorf("fetching settlement plan: %w", err)
		}

		if flagJSON {
			printJSON(resp.Data)
			return nil
		}

		if len(resp.Data) == 0 {
			fmt.Println("All settled up.")
			return nil
		}
		for _, t := range resp.Data {
			fmt.Printf("%s pays %s %.2f\n", t.FromName, t.ToName, t.Amount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settlePlanCmd)
}
