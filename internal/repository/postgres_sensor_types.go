package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

type PostgresSensorTypesRepo struct {
	db *sql.DB
}

func NewPostgresSensorTypesRepo(db *sql.DB) *PostgresSensorTypesRepo {
	return &PostgresSensorTypesRepo{db: db}
}

const sensorTypeColumns = "id, res_name, parameters, data_types, labels, vertical_id"

func scanSensorType(row *sql.Row) (*domain.SensorType, error) {
	var st domain.SensorType
	err := row.Scan(&st.ID, &st.Name, pq.Array(&st.Parameters), pq.Array(&st.DataTypes),
		pq.Array(&st.Labels), &st.VerticalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan sensor type: %w", err)
	}
	return &st, nil
}

func (r *PostgresSensorTypesRepo) GetByID(ctx context.Context, id int) (*domain.SensorType, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sensorTypeColumns+` FROM sensor_types WHERE id = $1`, id)
	return scanSensorType(row)
}

func (r *PostgresSensorTypesRepo) GetByName(ctx context.Context, name string) (*domain.SensorType, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sensorTypeColumns+` FROM sensor_types WHERE res_name = $1`, name)
	return scanSensorType(row)
}

func (r *PostgresSensorTypesRepo) List(ctx context.Context) ([]*domain.SensorType, error) {
	return r.list(ctx, `SELECT `+sensorTypeColumns+` FROM sensor_types ORDER BY id`)
}

func (r *PostgresSensorTypesRepo) ListByVertical(ctx context.Context, verticalID int) ([]*domain.SensorType, error) {
	return r.list(ctx,
		`SELECT `+sensorTypeColumns+` FROM sensor_types WHERE vertical_id = $1 ORDER BY id`, verticalID)
}

func (r *PostgresSensorTypesRepo) list(ctx context.Context, query string, args ...any) ([]*domain.SensorType, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensor types: %w", err)
	}
	defer rows.Close()

	var out []*domain.SensorType
	for rows.Next() {
		var st domain.SensorType
		if err := rows.Scan(&st.ID, &st.Name, pq.Array(&st.Parameters), pq.Array(&st.DataTypes),
			pq.Array(&st.Labels), &st.VerticalID); err != nil {
			return nil, fmt.Errorf("failed to scan sensor type: %w", err)
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}

func (r *PostgresSensorTypesRepo) Insert(ctx context.Context, st *domain.SensorType) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO sensor_types (res_name, parameters, data_types, labels, vertical_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		st.Name, pq.Array(st.Parameters), pq.Array(st.DataTypes), pq.Array(st.Labels), st.VerticalID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("failed to insert sensor type: %w", err)
	}
	st.ID = id
	return id, nil
}

func (r *PostgresSensorTypesRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sensor_types WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sensor type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSensorTypesRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sensor_types`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sensor types: %w", err)
	}
	return n, nil
}

func (r *PostgresSensorTypesRepo) CountByVertical(ctx context.Context, verticalID int) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sensor_types WHERE vertical_id = $1`, verticalID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sensor types: %w", err)
	}
	return n, nil
}
