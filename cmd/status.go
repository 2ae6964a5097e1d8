package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print statistics about the persisted crawl state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := st.Load(ctx)
		if err != nil {
			return err
		}
		if snap == nil {
			fmt.Println("no crawl state found")
			return nil
		}

		totalNumbers := 0
		for _, numbers := range snap.StreetNumbers {
			totalNumbers += len(numbers)
		}

		fmt.Printf("streets:                %d\n", len(snap.Streets))
		fmt.Printf("completed branches:     %d\n", len(snap.CompletedQueries))
		fmt.Printf("streets with numbers:   %d\n", len(snap.StreetNumbers))
		fmt.Printf("total house numbers:    %d\n", totalNumbers)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
