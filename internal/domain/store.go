package domain

import (
	"context"

	"uelco_jobs/internal/model"
)

type RecordStore interface {
	// Load fetches every record from the remote worksheet, normalized to the
	// fixed schema.
	Load(ctx context.Context) ([]model.Record, error)

	// Save overwrites the remote worksheet with the given records. Full
	// replace, there is no partial update.
	Save(ctx context.Context, records []model.Record) error
}
