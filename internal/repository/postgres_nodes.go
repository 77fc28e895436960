package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

type PostgresNodesRepo struct {
	db *sql.DB
}

func NewPostgresNodesRepo(db *sql.DB) *PostgresNodesRepo {
	return &PostgresNodesRepo{db: db}
}

const nodeColumns = `id, sensor_type_id, sensor_node_number, name, node_name, labels,
	lat, long, COALESCE(location, ''), COALESCE(area, ''), orid, node_data_orid, token_num`

func scanNode(row *sql.Row) (*domain.Node, error) {
	var n domain.Node
	err := row.Scan(&n.ID, &n.SensorTypeID, &n.SensorNodeNumber, &n.Name, &n.NodeName,
		pq.Array(&n.Labels), &n.Lat, &n.Long, &n.Location, &n.Area, &n.ORID, &n.NodeDataORID, &n.TokenNum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}
	return &n, nil
}

func (r *PostgresNodesRepo) GetByID(ctx context.Context, id int) (*domain.Node, error) {
	return scanNode(r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE id = $1`, id))
}

func (r *PostgresNodesRepo) GetByName(ctx context.Context, name string) (*domain.Node, error) {
	return scanNode(r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE name = $1`, name))
}

func (r *PostgresNodesRepo) GetByNodeName(ctx context.Context, nodeName string) (*domain.Node, error) {
	return scanNode(r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE node_name = $1`, nodeName))
}

func (r *PostgresNodesRepo) GetByTokenNum(ctx context.Context, tokenNum int) (*domain.Node, error) {
	return scanNode(r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE token_num = $1`, tokenNum))
}

func (r *PostgresNodesRepo) FindBySensorTypeAndCoords(ctx context.Context, sensorTypeID int, lat, long float64) (*domain.Node, error) {
	return scanNode(r.db.QueryRowContext(ctx,
		`SELECT `+nodeColumns+` FROM nodes
		 WHERE sensor_type_id = $1 AND lat = $2 AND long = $3
		 ORDER BY id LIMIT 1`, sensorTypeID, lat, long))
}

func (r *PostgresNodesRepo) List(ctx context.Context) ([]*domain.Node, error) {
	return r.list(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY id`)
}

func (r *PostgresNodesRepo) ListBySensorType(ctx context.Context, sensorTypeID int) ([]*domain.Node, error) {
	return r.list(ctx,
		`SELECT `+nodeColumns+` FROM nodes WHERE sensor_type_id = $1 ORDER BY id`, sensorTypeID)
}

func (r *PostgresNodesRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Node, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	defer rows.Close()

	var out []*domain.Node
	for rows.Next() {
		var n domain.Node
		if err := rows.Scan(&n.ID, &n.SensorTypeID, &n.SensorNodeNumber, &n.Name, &n.NodeName,
			pq.Array(&n.Labels), &n.Lat, &n.Long, &n.Location, &n.Area, &n.ORID, &n.NodeDataORID, &n.TokenNum); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

func (r *PostgresNodesRepo) NextNodeNumber(ctx context.Context, sensorTypeID int) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sensor_node_number), 0) + 1 FROM nodes WHERE sensor_type_id = $1`,
		sensorTypeID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next node number: %w", err)
	}
	return next, nil
}

func (r *PostgresNodesRepo) Insert(ctx context.Context, n *domain.Node) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO nodes (sensor_type_id, sensor_node_number, name, node_name, labels,
		                    lat, long, location, area, orid, node_data_orid, token_num)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULL)
		 RETURNING id`,
		n.SensorTypeID, n.SensorNodeNumber, n.Name, n.NodeName, pq.Array(n.Labels),
		n.Lat, n.Long, n.Location, n.Area, n.ORID, n.NodeDataORID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("failed to insert node: %w", err)
	}
	n.ID = id
	return id, nil
}

func (r *PostgresNodesRepo) SetTokenNum(ctx context.Context, id, tokenNum int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE nodes SET token_num = $2 WHERE id = $1 AND token_num IS NULL`, id, tokenNum)
	if err != nil {
		return fmt.Errorf("failed to set token number: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *PostgresNodesRepo) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresNodesRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return n, nil
}

func (r *PostgresNodesRepo) CountBySensorType(ctx context.Context, sensorTypeID int) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM nodes WHERE sensor_type_id = $1`, sensorTypeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return n, nil
}

func (r *PostgresNodesRepo) CountDistinctAreas(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT area) FROM nodes WHERE area IS NOT NULL AND area <> ''`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count areas: %w", err)
	}
	return n, nil
}
