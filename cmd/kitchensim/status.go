package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/mini-kitchen/internal/persistence"
)

// NewStatusCommand creates the command that prints the saved progress.
func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved restaurant progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := persistence.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			save, found, err := db.LoadState()
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("No saved state.")
				return nil
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(save)
			}

			fmt.Printf("Run:       %s\n", save.RunID)
			fmt.Printf("Stage:     %s\n", save.Stage)
			fmt.Printf("Tick:      %d\n", save.LastTick)
			fmt.Printf("Coins:     %s\n", save.Coins.String())
			fmt.Printf("Staff:     %d cooks, %d waiters, %d customers\n",
				save.BackWorkers, save.FrontWorkers, save.Customers)
			fmt.Printf("Stations:  %v\n", save.Stations)
			fmt.Printf("Offers:    %v\n", save.Offers)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the save as JSON")
	return cmd
}
