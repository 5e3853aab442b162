package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var pruneOlderThan time.Duration

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Inspect and maintain the seen-URL store",
}

var seenCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print how many URLs have been emitted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Load(ctx); err != nil {
			return eris.Wrap(err, "seen count")
		}

		fmt.Printf("%d\n", store.Count())
		return nil
	},
}

var seenPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop seen entries older than a cutoff",
	Long:  "Removes entries first seen before the cutoff. Pruned stories will be re-emitted if a source still carries them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if pruneOlderThan <= 0 {
			return eris.New("seen prune: --older-than must be positive")
		}

		store, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Load(ctx); err != nil {
			return eris.Wrap(err, "seen prune: load")
		}

		removed, err := store.Prune(ctx, pruneOlderThan)
		if err != nil {
			return eris.Wrap(err, "seen prune")
		}
		if err := store.Save(ctx); err != nil {
			return eris.Wrap(err, "seen prune: save")
		}

		zap.L().Info("seen: pruned entries",
			zap.Int("removed", removed),
			zap.Duration("older_than", pruneOlderThan),
		)
		fmt.Printf("removed %d entries\n", removed)
		return nil
	},
}

func init() {
	seenPruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 90*24*time.Hour, "drop entries first seen before now minus this duration")
	seenCmd.AddCommand(seenCountCmd)
	seenCmd.AddCommand(seenPruneCmd)
	rootCmd.AddCommand(seenCmd)
}
