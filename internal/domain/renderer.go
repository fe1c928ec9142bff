package domain

import "uelco_jobs/internal/model"

type CardRenderer interface {
	// Render produces the printable job card for one record.
	Render(record model.Record) ([]byte, error)
}
