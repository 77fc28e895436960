package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

type PostgresUsersRepo struct {
	db *sql.DB
}

func NewPostgresUsersRepo(db *sql.DB) *PostgresUsersRepo {
	return &PostgresUsersRepo{db: db}
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.UserType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUsersRepo) GetByID(ctx context.Context, id int) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, user_type FROM users WHERE id = $1`, id))
}

func (r *PostgresUsersRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password, user_type FROM users WHERE email = $1`, email))
}

func (r *PostgresUsersRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, email, password, user_type FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.UserType); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *PostgresUsersRepo) Insert(ctx context.Context, u *domain.User) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password, user_type)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		u.Username, u.Email, u.Password, u.UserType,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID = id
	return id, nil
}

func (r *PostgresUsersRepo) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type PostgresNodeOwnersRepo struct {
	db *sql.DB
}

func NewPostgresNodeOwnersRepo(db *sql.DB) *PostgresNodeOwnersRepo {
	return &PostgresNodeOwnersRepo{db: db}
}

func (r *PostgresNodeOwnersRepo) GetByNodeID(ctx context.Context, nodeID int) (*domain.NodeOwner, error) {
	var o domain.NodeOwner
	err := r.db.QueryRowContext(ctx,
		`SELECT id, node_id, vendor_id, api_key_hash FROM node_owners WHERE node_id = $1`,
		nodeID,
	).Scan(&o.ID, &o.NodeID, &o.VendorID, &o.APIKeyHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan node owner: %w", err)
	}
	return &o, nil
}

func (r *PostgresNodeOwnersRepo) Insert(ctx context.Context, o *domain.NodeOwner) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO node_owners (node_id, vendor_id, api_key_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		o.NodeID, o.VendorID, o.APIKeyHash,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrConflict
		}
		return 0, fmt.Errorf("failed to insert node owner: %w", err)
	}
	o.ID = id
	return id, nil
}

func (r *PostgresNodeOwnersRepo) Delete(ctx context.Context, nodeID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM node_owners WHERE node_id = $1`, nodeID)
	if err != nil {
		return fmt.Errorf("failed to delete node owner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
