package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

type MemoryNodesRepo struct {
	mu     sync.RWMutex
	nextID int
	rows   map[int]*domain.Node
}

func NewMemoryNodesRepo() *MemoryNodesRepo {
	return &MemoryNodesRepo{nextID: 1, rows: map[int]*domain.Node{}}
}

func (r *MemoryNodesRepo) GetByID(_ context.Context, id int) (*domain.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *MemoryNodesRepo) GetByName(_ context.Context, name string) (*domain.Node, error) {
	return r.find(func(n *domain.Node) bool { return n.Name == name })
}

func (r *MemoryNodesRepo) GetByNodeName(_ context.Context, nodeName string) (*domain.Node, error) {
	return r.find(func(n *domain.Node) bool { return n.NodeName == nodeName })
}

func (r *MemoryNodesRepo) GetByTokenNum(_ context.Context, tokenNum int) (*domain.Node, error) {
	return r.find(func(n *domain.Node) bool {
		return n.TokenNum.Valid && n.TokenNum.Int64 == int64(tokenNum)
	})
}

func (r *MemoryNodesRepo) FindBySensorTypeAndCoords(_ context.Context, sensorTypeID int, lat, long float64) (*domain.Node, error) {
	return r.find(func(n *domain.Node) bool {
		return n.SensorTypeID == sensorTypeID && n.Lat == lat && n.Long == long
	})
}

func (r *MemoryNodesRepo) find(match func(*domain.Node) bool) (*domain.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *domain.Node
	for _, n := range r.rows {
		if match(n) && (best == nil || n.ID < best.ID) {
			best = n
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *MemoryNodesRepo) List(_ context.Context) ([]*domain.Node, error) {
	return r.listWhere(func(*domain.Node) bool { return true })
}

func (r *MemoryNodesRepo) ListBySensorType(_ context.Context, sensorTypeID int) ([]*domain.Node, error) {
	return r.listWhere(func(n *domain.Node) bool { return n.SensorTypeID == sensorTypeID })
}

func (r *MemoryNodesRepo) listWhere(match func(*domain.Node) bool) ([]*domain.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Node
	for _, n := range r.rows {
		if match(n) {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryNodesRepo) NextNodeNumber(_ context.Context, sensorTypeID int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	max := 0
	for _, n := range r.rows {
		if n.SensorTypeID == sensorTypeID && n.SensorNodeNumber > max {
			max = n.SensorNodeNumber
		}
	}
	return max + 1, nil
}

func (r *MemoryNodesRepo) Insert(_ context.Context, n *domain.Node) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Name == n.Name || existing.NodeName == n.NodeName ||
			(existing.SensorTypeID == n.SensorTypeID && existing.SensorNodeNumber == n.SensorNodeNumber) {
			return 0, ErrConflict
		}
	}
	n.ID = r.nextID
	r.nextID++
	n.TokenNum.Valid = false
	cp := *n
	r.rows[n.ID] = &cp
	return n.ID, nil
}

func (r *MemoryNodesRepo) SetTokenNum(_ context.Context, id, tokenNum int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok || n.TokenNum.Valid {
		return ErrConflict
	}
	n.TokenNum.Valid = true
	n.TokenNum.Int64 = int64(tokenNum)
	return nil
}

func (r *MemoryNodesRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryNodesRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

func (r *MemoryNodesRepo) CountBySensorType(_ context.Context, sensorTypeID int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, row := range r.rows {
		if row.SensorTypeID == sensorTypeID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryNodesRepo) CountDistinctAreas(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	areas := map[string]struct{}{}
	for _, n := range r.rows {
		if n.Area != "" {
			areas[n.Area] = struct{}{}
		}
	}
	return len(areas), nil
}
