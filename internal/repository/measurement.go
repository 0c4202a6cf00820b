package repository

import (
	"context"

	"leftoverapi/internal/model"
)

// MeasurementRepository defines data access for measurements.
// Writes keep users.measure_cnt in step with the measurement rows in the same transaction.
type MeasurementRepository interface {
	// Create inserts a measurement and increments the owner's measure count.
	Create(ctx context.Context, m *model.Measurement) (*model.Measurement, error)

	// ListByUser returns a user's measurements, newest first, and their total count.
	ListByUser(ctx context.Context, userID int64, pq PageQuery) (*PageResult[model.Measurement], error)

	// FindOwned returns a measurement only if it belongs to userID.
	FindOwned(ctx context.Context, id, userID int64) (*model.Measurement, error)

	// DeleteOwned removes a measurement only if it belongs to userID, decrementing the
	// owner's measure count (never below zero). It returns the deleted row.
	DeleteOwned(ctx context.Context, id, userID int64) (*model.Measurement, error)
}
