package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

type PostgresTokensRepo struct {
	db *sql.DB
}

func NewPostgresTokensRepo(db *sql.DB) *PostgresTokensRepo {
	return &PostgresTokensRepo{db: db}
}

func (r *PostgresTokensRepo) Get(ctx context.Context, sensorTypeID, tokenID int) (*domain.Token, error) {
	var t domain.Token
	err := r.db.QueryRowContext(ctx,
		`SELECT sensor_type, token_id, assigned_to, status, issue_time, node_id
		 FROM tokens WHERE sensor_type = $1 AND token_id = $2`,
		sensorTypeID, tokenID,
	).Scan(&t.SensorTypeID, &t.TokenID, &t.AssignedTo, &t.Status, &t.IssueTime, &t.NodeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan token: %w", err)
	}
	return &t, nil
}

func (r *PostgresTokensRepo) NextTokenID(ctx context.Context, sensorTypeID int) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(token_id), 0) + 1 FROM tokens WHERE sensor_type = $1`,
		sensorTypeID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next token id: %w", err)
	}
	return next, nil
}

func (r *PostgresTokensRepo) Insert(ctx context.Context, t *domain.Token) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (sensor_type, token_id, assigned_to, status, issue_time)
		 VALUES ($1, $2, $3, $4, $5)`,
		t.SensorTypeID, t.TokenID, t.AssignedTo, t.Status, t.IssueTime)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

func (r *PostgresTokensRepo) MarkDeployed(ctx context.Context, sensorTypeID, tokenID, nodeID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tokens SET status = TRUE, node_id = $3
		 WHERE sensor_type = $1 AND token_id = $2`,
		sensorTypeID, tokenID, nodeID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to mark token deployed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
