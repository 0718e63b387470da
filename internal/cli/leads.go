package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/asjidimtiaz/leadqual/internal/config"
	"github.com/asjidimtiaz/leadqual/internal/store"
)

func newLeadsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List recent leads from the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if cfg.Store.Driver != "sqlite" {
				return fmt.Errorf("leads require the sqlite store driver, got %q", cfg.Store.Driver)
			}

			db, err := store.Open(paths.DatabasePath(&cfg), log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			leads, err := store.NewSQLiteLeadStore(db).List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(leads) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no leads yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tNAME\tEMAIL\tSERVICE\tSCORE\tTIER\tSOURCE")
			for _, l := range leads {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					l.CreatedAt.Format(time.DateOnly), l.Name, l.Email, l.Service, l.Score, l.Tier, l.Source)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of leads to show")
	return cmd
}
