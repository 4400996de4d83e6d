package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/forecast-cli/internal/analytics"
	"github.com/sells-group/forecast-cli/internal/loader"
	"github.com/sells-group/forecast-cli/internal/model"
	"github.com/sells-group/forecast-cli/internal/store"
)

// Shared data-source flags. One command runs per invocation, so analysis
// commands register the same variables.
var (
	inputPath  string
	snapshotID string

	filterOwner  string
	filterStage  string
	filterStatus string

	asOf string
)

// addDataFlags registers the input-selection and filter flags every analysis
// command shares.
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&inputPath, "input", "", "CSV or XLSX opportunity file")
	cmd.Flags().StringVar(&snapshotID, "snapshot", "", "stored snapshot ID (default: latest)")
	cmd.Flags().StringVar(&filterOwner, "owner", "", "restrict to one owner")
	cmd.Flags().StringVar(&filterStage, "stage", "", "restrict to one stage")
	cmd.Flags().StringVar(&filterStatus, "status", "", "restrict to one status")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date for age calculations (YYYY-MM-DD, default today)")
}

func dataFilter() model.Filter {
	return model.Filter{
		Owner:  filterOwner,
		Stage:  model.Stage(filterStage),
		Status: model.Status(filterStatus),
	}
}

// asOfDate resolves the reference date for pipeline-age calculations.
func asOfDate() (time.Time, error) {
	if asOf == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	t, err := time.Parse(time.DateOnly, asOf)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "parse --as-of %q", asOf)
	}
	return t, nil
}

// openStore builds the configured snapshot store backend.
func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q (want sqlite or postgres)", cfg.Store.Driver)
	}
}

// loadOpportunities reads the working set from --input when given, otherwise
// from the snapshot store (--snapshot, or the latest snapshot).
func loadOpportunities(ctx context.Context) ([]model.Opportunity, error) {
	if inputPath != "" {
		opps, err := loader.Load(inputPath)
		if err != nil {
			return nil, err
		}
		return dataFilter().Apply(opps), nil
	}

	s, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}

	id := snapshotID
	if id == "" {
		latest, err := s.LatestSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, eris.New("no snapshots stored; run import or pass --input")
		}
		id = latest.ID
	}

	return s.LoadOpportunities(ctx, id, dataFilter())
}

// stageProbabilities resolves the probability table: configured defaults,
// overlaid with observed historical rates when enabled.
func stageProbabilities(opps []model.Opportunity, useHistorical bool) model.StageProbabilities {
	probs := cfg.Probabilities.StageProbabilities()
	if useHistorical || cfg.UseHistorical {
		probs = analytics.Historical(opps).Merged(probs)
	}
	return probs
}
