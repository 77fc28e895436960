package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

type MemoryUsersRepo struct {
	mu     sync.RWMutex
	nextID int
	rows   map[int]*domain.User
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{nextID: 1, rows: map[int]*domain.User{}}
}

func (r *MemoryUsersRepo) GetByID(_ context.Context, id int) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUsersRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUsersRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.User, 0, len(r.rows))
	for _, u := range r.rows {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryUsersRepo) Insert(_ context.Context, u *domain.User) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Email == u.Email {
			return 0, ErrConflict
		}
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.rows[u.ID] = &cp
	return u.ID, nil
}

func (r *MemoryUsersRepo) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = passwordHash
	return nil
}

type MemoryTokensRepo struct {
	mu   sync.RWMutex
	rows map[[2]int]*domain.Token
}

func NewMemoryTokensRepo() *MemoryTokensRepo {
	return &MemoryTokensRepo{rows: map[[2]int]*domain.Token{}}
}

func (r *MemoryTokensRepo) Get(_ context.Context, sensorTypeID, tokenID int) (*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.rows[[2]int{sensorTypeID, tokenID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTokensRepo) NextTokenID(_ context.Context, sensorTypeID int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for key := range r.rows {
		if key[0] == sensorTypeID && key[1] > max {
			max = key[1]
		}
	}
	return max + 1, nil
}

func (r *MemoryTokensRepo) Insert(_ context.Context, t *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [2]int{t.SensorTypeID, t.TokenID}
	if _, ok := r.rows[key]; ok {
		return ErrConflict
	}
	cp := *t
	r.rows[key] = &cp
	return nil
}

func (r *MemoryTokensRepo) MarkDeployed(_ context.Context, sensorTypeID, tokenID, nodeID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[[2]int{sensorTypeID, tokenID}]
	if !ok {
		return ErrNotFound
	}
	for key, other := range r.rows {
		if key != [2]int{sensorTypeID, tokenID} && other.NodeID.Valid && other.NodeID.Int64 == int64(nodeID) {
			return ErrConflict
		}
	}
	t.Status = true
	t.NodeID.Valid = true
	t.NodeID.Int64 = int64(nodeID)
	return nil
}

type MemoryNodeOwnersRepo struct {
	mu     sync.RWMutex
	nextID int
	rows   map[int]*domain.NodeOwner // keyed by node id
}

func NewMemoryNodeOwnersRepo() *MemoryNodeOwnersRepo {
	return &MemoryNodeOwnersRepo{nextID: 1, rows: map[int]*domain.NodeOwner{}}
}

func (r *MemoryNodeOwnersRepo) GetByNodeID(_ context.Context, nodeID int) (*domain.NodeOwner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.rows[nodeID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryNodeOwnersRepo) Insert(_ context.Context, o *domain.NodeOwner) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[o.NodeID]; ok {
		return 0, ErrConflict
	}
	o.ID = r.nextID
	r.nextID++
	cp := *o
	r.rows[o.NodeID] = &cp
	return o.ID, nil
}

func (r *MemoryNodeOwnersRepo) Delete(_ context.Context, nodeID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[nodeID]; !ok {
		return ErrNotFound
	}
	delete(r.rows, nodeID)
	return nil
}
