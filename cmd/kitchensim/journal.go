package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/mini-kitchen/internal/persistence"
)

// NewJournalCommand creates the command that prints archived events.
func NewJournalCommand() *cobra.Command {
	var (
		dir      string
		runID    string
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print events from the compressed event journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				dir = cfg.Database.JournalDir
			}
			files, err := persistence.JournalFiles(dir, "events")
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Printf("No journal files in %s\n", dir)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tRUN\tTICK\tCATEGORY\tDESCRIPTION")
			printed := 0
			for _, path := range files {
				err := persistence.ReadJournal(path, func(e persistence.JournalEntry) bool {
					if runID != "" && e.RunID != runID {
						return true
					}
					if category != "" && e.Event.Category != category {
						return true
					}
					fmt.Fprintf(w, "%s\t%.8s\t%d\t%s\t%s\n",
						humanize.Time(e.At), e.RunID, e.Event.Tick, e.Event.Category, e.Event.Description)
					printed++
					return limit <= 0 || printed < limit
				})
				if err != nil {
					return fmt.Errorf("read %s: %w", filepath.Base(path), err)
				}
				if limit > 0 && printed >= limit {
					break
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Journal directory (default from config)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show events of this run ID")
	cmd.Flags().StringVar(&category, "category", "", "Only show events of this category")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum events to print (0 = all)")
	return cmd
}
