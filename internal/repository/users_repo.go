package repository

import (
	"context"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

// UsersRepository stores platform users (admin, user, vendor).
type UsersRepository interface {
	GetByID(ctx context.Context, id int) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Insert(ctx context.Context, u *domain.User) (int, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// NodeOwnersRepository assigns vendor users to nodes. The unique constraint
// on node_id keeps it to at most one owner per node.
type NodeOwnersRepository interface {
	GetByNodeID(ctx context.Context, nodeID int) (*domain.NodeOwner, error)
	Insert(ctx context.Context, o *domain.NodeOwner) (int, error)
	Delete(ctx context.Context, nodeID int) error
}
