package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/gleaner/internal/store"
	"github.com/jmylchreest/gleaner/pkg/gleaner"
)

var storeKinds = []string{gleaner.KindCatalog, gleaner.KindNews}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or reset the seen-id store",
	Long: `Inspect or reset the sqlite file named by --store.

Examples:
  gleaner store count --store seen.db
  gleaner store reset news --store seen.db`,
}

var storeCountCmd = &cobra.Command{
	Use:   "count [kind]...",
	Short: "Print the number of remembered ids per kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(args, func(ctx context.Context, db *store.SQLite, kind string) error {
			n, err := db.Count(ctx, kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", kind, n)
			return nil
		})
	},
}

var storeResetCmd = &cobra.Command{
	Use:   "reset <kind>...",
	Short: "Forget every remembered id of the given kinds",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(args, func(ctx context.Context, db *store.SQLite, kind string) error {
			if err := db.Forget(ctx, kind); err != nil {
				return err
			}
			logInfo("forgot %s ids", kind)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeCountCmd, storeResetCmd)
}

// withStore opens the configured store and runs fn once per kind. No kinds
// means every kind.
func withStore(kinds []string, fn func(context.Context, *store.SQLite, string) error) error {
	if settings.Store == "" {
		return errors.New("no store configured, set --store")
	}
	if len(kinds) == 0 {
		kinds = storeKinds
	}
	for _, k := range kinds {
		if !slices.Contains(storeKinds, k) {
			return fmt.Errorf("unknown store kind %q (want one of %v)", k, storeKinds)
		}
	}

	db, err := store.Open(settings.Store)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	for _, k := range kinds {
		if err := fn(ctx, db, k); err != nil {
			return err
		}
	}
	return nil
}
