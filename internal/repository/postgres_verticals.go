package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

type PostgresVerticalsRepo struct {
	db *sql.DB
}

func NewPostgresVerticalsRepo(db *sql.DB) *PostgresVerticalsRepo {
	return &PostgresVerticalsRepo{db: db}
}

const verticalColumns = "id, res_name, res_short_name, COALESCE(description, ''), labels, orid"

func scanVertical(row *sql.Row) (*domain.Vertical, error) {
	var v domain.Vertical
	err := row.Scan(&v.ID, &v.Name, &v.ShortCode, &v.Description, pq.Array(&v.Labels), &v.ORID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan vertical: %w", err)
	}
	return &v, nil
}

func (r *PostgresVerticalsRepo) GetByID(ctx context.Context, id int) (*domain.Vertical, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+verticalColumns+` FROM verticals WHERE id = $1`, id)
	return scanVertical(row)
}

func (r *PostgresVerticalsRepo) GetByName(ctx context.Context, name string) (*domain.Vertical, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+verticalColumns+` FROM verticals WHERE res_name = $1`, name)
	return scanVertical(row)
}

func (r *PostgresVerticalsRepo) GetBySensorTypeID(ctx context.Context, sensorTypeID int) (*domain.Vertical, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT v.id, v.res_name, v.res_short_name, COALESCE(v.description, ''), v.labels, v.orid
		 FROM verticals v
		 JOIN sensor_types st ON st.vertical_id = v.id
		 WHERE st.id = $1`, sensorTypeID)
	return scanVertical(row)
}

func (r *PostgresVerticalsRepo) List(ctx context.Context) ([]*domain.Vertical, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+verticalColumns+` FROM verticals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list verticals: %w", err)
	}
	defer rows.Close()

	var out []*domain.Vertical
	for rows.Next() {
		var v domain.Vertical
		if err := rows.Scan(&v.ID, &v.Name, &v.ShortCode, &v.Description, pq.Array(&v.Labels), &v.ORID); err != nil {
			return nil, fmt.Errorf("failed to scan vertical: %w", err)
		}
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (r *PostgresVerticalsRepo) Insert(ctx context.Context, v *domain.Vertical) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO verticals (res_name, res_short_name, description, labels, orid)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		v.Name, v.ShortCode, v.Description, pq.Array(v.Labels), v.ORID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("failed to insert vertical: %w", err)
	}
	v.ID = id
	return id, nil
}

func (r *PostgresVerticalsRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verticals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vertical: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresVerticalsRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verticals`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count verticals: %w", err)
	}
	return n, nil
}
