package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/forecast-cli/internal/loader"
)

var (
	importFile string
	importName string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an opportunity file as a stored snapshot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opps, err := loader.Load(importFile)
		if err != nil {
			return eris.Wrap(err, "import")
		}

		s, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Migrate(ctx); err != nil {
			return err
		}

		name := importName
		if name == "" {
			name = filepath.Base(importFile)
		}

		snap, err := s.SaveSnapshot(ctx, name, opps)
		if err != nil {
			return err
		}

		zap.L().Info("snapshot imported",
			zap.String("id", snap.ID),
			zap.String("name", snap.Name),
			zap.Int("opportunities", snap.Count),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "CSV or XLSX opportunity file (required)")
	importCmd.Flags().StringVar(&importName, "name", "", "snapshot name (default: file name)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
