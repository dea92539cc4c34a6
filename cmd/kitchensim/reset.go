package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/mini-kitchen/internal/persistence"
)

// NewResetCommand creates the command that wipes saved progress.
func NewResetCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete saved progress and stored events",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := persistence.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Reset(); err != nil {
				return err
			}
			fmt.Println("Saved progress cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
