package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/store"
)

var snapshotsLimit int

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored opportunity snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Migrate(ctx); err != nil {
			return err
		}

		snaps, err := s.ListSnapshots(ctx, snapshotsLimit)
		if err != nil {
			return err
		}

		if len(snaps) == 0 {
			fmt.Println("no snapshots stored")
			return nil
		}

		printSnapshots(snaps)
		return nil
	},
}

func printSnapshots(snaps []store.Snapshot) {
	fmt.Printf("%-38s %-24s %6s %s\n", "ID", "Name", "Count", "Created")
	for _, snap := range snaps {
		fmt.Printf("%-38s %-24s %6d %s\n",
			snap.ID, snap.Name, snap.Count, snap.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func init() {
	snapshotsCmd.Flags().IntVar(&snapshotsLimit, "limit", 20, "max snapshots to list")
	rootCmd.AddCommand(snapshotsCmd)
}
