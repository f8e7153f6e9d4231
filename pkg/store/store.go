// Package store persists chart documents for the HTTP server.
//
// Two backends are provided: [MemoryStore] for development and testing,
// and [MongoStore] for deployments where charts must survive restarts and
// be shared across instances. Records are identified by server-generated
// UUIDs.
package store

import (
	"context"
	"time"

	"github.com/funnelviz/funnelviz/pkg/chart"
)

// Record is a stored chart with identity and timestamps.
type Record struct {
	ID        string      `json:"id" bson:"_id"`
	Chart     chart.Chart `json:"chart" bson:"chart"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for chart storage backends.
type Store interface {
	// Create stores a new chart and returns the record with its generated ID.
	Create(ctx context.Context, c chart.Chart) (*Record, error)

	// Get retrieves a record by ID. Returns a CHART_NOT_FOUND error for
	// unknown IDs.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]Record, error)

	// Update replaces the chart of an existing record.
	Update(ctx context.Context, id string, c chart.Chart) (*Record, error)

	// Delete removes a record. Returns a CHART_NOT_FOUND error for unknown
	// IDs.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
