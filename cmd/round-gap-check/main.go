package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/iov-one/block-explorer/pkg/config"
	"github.com/iov-one/block-explorer/pkg/store"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	var from, to uint64

	cmd := &cobra.Command{
		Use:           "round-gap-check",
		Short:         "Report rounds missing from the archive",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(config.NewViper())
			if err != nil {
				return err
			}
			if !conf.ArchiveEnabled() {
				return fmt.Errorf("postgres is not configured")
			}

			db, err := sql.Open("postgres", conf.PostgresURI())
			if err != nil {
				return err
			}
			defer db.Close()

			return check(cmd.Context(), store.NewStore(db), from, to)
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 0, "first round to check, defaults to the lowest archived round")
	cmd.Flags().Uint64Var(&to, "to", 0, "last round to check, defaults to the highest archived round")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func check(ctx context.Context, st *store.Store, from, to uint64) error {
	if from == 0 || to == 0 {
		lo, hi, err := st.RoundRange(ctx)
		if err != nil {
			return err
		}
		if from == 0 {
			from = lo
		}
		if to == 0 {
			to = hi
		}
	}

	missing, err := st.MissingRounds(ctx, from, to)
	if err != nil {
		return err
	}

	if len(missing) == 0 {
		fmt.Printf("no rounds missing in [%d, %d]\n", from, to)
	} else {
		fmt.Printf("%d rounds missing in [%d, %d]: %v\n", len(missing), from, to, missing)
	}
	return nil
}
