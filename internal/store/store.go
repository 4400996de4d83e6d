// Package store persists opportunity snapshots so analyses can run against
// imported data without re-reading the source file.
package store

import (
	"context"
	"time"

	"github.com/sells-group/forecast-cli/internal/model"
)

// Snapshot is one imported set of opportunities.
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the persistence interface for opportunity snapshots.
type Store interface {
	// SaveSnapshot persists a new snapshot and all its opportunities.
	SaveSnapshot(ctx context.Context, name string, opps []model.Opportunity) (*Snapshot, error)

	// GetSnapshot looks a snapshot up by ID.
	GetSnapshot(ctx context.Context, id string) (*Snapshot, error)

	// LatestSnapshot returns the most recently saved snapshot, nil if the
	// store is empty.
	LatestSnapshot(ctx context.Context) (*Snapshot, error)

	// ListSnapshots returns snapshots newest first.
	ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error)

	// LoadOpportunities reads a snapshot's opportunities, restricted by the
	// filter's owner, stage, and status criteria.
	LoadOpportunities(ctx context.Context, snapshotID string, f model.Filter) ([]model.Opportunity, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
