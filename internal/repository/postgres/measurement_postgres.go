package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"leftoverapi/internal/database"
	"leftoverapi/internal/model"
	"leftoverapi/internal/repository"
)

// MeasurementPostgres is a PostgreSQL implementation of repository.MeasurementRepository.
type MeasurementPostgres struct {
	db *sql.DB
}

// NewMeasurementPostgres creates a new MeasurementPostgres repository.
func NewMeasurementPostgres(db *sql.DB) *MeasurementPostgres {
	return &MeasurementPostgres{db: db}
}

var _ repository.MeasurementRepository = (*MeasurementPostgres)(nil)

// Create inserts the measurement and bumps the owner's measure_cnt atomically.
func (r *MeasurementPostgres) Create(ctx context.Context, m *model.Measurement) (*model.Measurement, error) {
	const qInsert = `
		INSERT INTO measurements (user_id, image_url, leftover_ratio)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, image_url, leftover_ratio, measured_at
	`
	const qCount = `UPDATE users SET measure_cnt = measure_cnt + 1 WHERE id = $1`

	var out model.Measurement
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, qInsert, m.UserID, m.ImageURL, m.LeftoverRatio).Scan(
			&out.ID,
			&out.UserID,
			&out.ImageURL,
			&out.LeftoverRatio,
			&out.MeasuredAt,
		); err != nil {
			return fmt.Errorf("insert measurement: %w", err)
		}
		if _, err := tx.ExecContext(ctx, qCount, m.UserID); err != nil {
			return fmt.Errorf("increment measure count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByUser returns a user's measurements using LIMIT/OFFSET pagination and a total count.
func (r *MeasurementPostgres) ListByUser(ctx context.Context, userID int64, pq repository.PageQuery) (*repository.PageResult[model.Measurement], error) {
	const qCount = `SELECT COUNT(*) FROM measurements WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, userID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, user_id, image_url, leftover_ratio, measured_at
		FROM measurements
		WHERE user_id = $1
		ORDER BY measured_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, userID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Measurement, 0)
	for rows.Next() {
		var m model.Measurement
		if err := rows.Scan(&m.ID, &m.UserID, &m.ImageURL, &m.LeftoverRatio, &m.MeasuredAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Measurement]{Items: items, Total: total}, nil
}

// FindOwned returns the measurement only when user_id matches. A missing or foreign row yields sql.ErrNoRows.
func (r *MeasurementPostgres) FindOwned(ctx context.Context, id, userID int64) (*model.Measurement, error) {
	const q = `
		SELECT id, user_id, image_url, leftover_ratio, measured_at
		FROM measurements
		WHERE id = $1 AND user_id = $2
	`
	var m model.Measurement
	if err := r.db.QueryRowContext(ctx, q, id, userID).Scan(&m.ID, &m.UserID, &m.ImageURL, &m.LeftoverRatio, &m.MeasuredAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteOwned deletes the row only when user_id matches. A missing or foreign row yields sql.ErrNoRows.
func (r *MeasurementPostgres) DeleteOwned(ctx context.Context, id, userID int64) (*model.Measurement, error) {
	const qDelete = `
		DELETE FROM measurements
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, image_url, leftover_ratio, measured_at
	`
	const qCount = `UPDATE users SET measure_cnt = GREATEST(measure_cnt - 1, 0) WHERE id = $1`

	var out model.Measurement
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, qDelete, id, userID).Scan(
			&out.ID,
			&out.UserID,
			&out.ImageURL,
			&out.LeftoverRatio,
			&out.MeasuredAt,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, qCount, userID); err != nil {
			return fmt.Errorf("decrement measure count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
