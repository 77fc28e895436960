package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ctOP-IIITH/backend/internal/domain"
)

// In-memory implementations backing service tests and DB-less dev mode.

type MemoryVerticalsRepo struct {
	mu     sync.RWMutex
	nextID int
	rows   map[int]*domain.Vertical
	// sensorTypes lets GetBySensorTypeID resolve ownership without a join
	sensorTypes *MemorySensorTypesRepo
}

func NewMemoryVerticalsRepo(sensorTypes *MemorySensorTypesRepo) *MemoryVerticalsRepo {
	return &MemoryVerticalsRepo{nextID: 1, rows: map[int]*domain.Vertical{}, sensorTypes: sensorTypes}
}

func (r *MemoryVerticalsRepo) GetByID(_ context.Context, id int) (*domain.Vertical, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *MemoryVerticalsRepo) GetByName(_ context.Context, name string) (*domain.Vertical, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.rows {
		if v.Name == name {
			cp := *v
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryVerticalsRepo) GetBySensorTypeID(ctx context.Context, sensorTypeID int) (*domain.Vertical, error) {
	st, err := r.sensorTypes.GetByID(ctx, sensorTypeID)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, st.VerticalID)
}

func (r *MemoryVerticalsRepo) List(_ context.Context) ([]*domain.Vertical, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Vertical, 0, len(r.rows))
	for _, v := range r.rows {
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryVerticalsRepo) Insert(_ context.Context, v *domain.Vertical) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.Name == v.Name || existing.ShortCode == v.ShortCode {
			return 0, ErrConflict
		}
	}
	v.ID = r.nextID
	r.nextID++
	cp := *v
	r.rows[v.ID] = &cp
	return v.ID, nil
}

func (r *MemoryVerticalsRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryVerticalsRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

type MemorySensorTypesRepo struct {
	mu     sync.RWMutex
	nextID int
	rows   map[int]*domain.SensorType
}

func NewMemorySensorTypesRepo() *MemorySensorTypesRepo {
	return &MemorySensorTypesRepo{nextID: 1, rows: map[int]*domain.SensorType{}}
}

func (r *MemorySensorTypesRepo) GetByID(_ context.Context, id int) (*domain.SensorType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *MemorySensorTypesRepo) GetByName(_ context.Context, name string) (*domain.SensorType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, st := range r.rows {
		if st.Name == name {
			cp := *st
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemorySensorTypesRepo) List(_ context.Context) ([]*domain.SensorType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.SensorType, 0, len(r.rows))
	for _, st := range r.rows {
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemorySensorTypesRepo) ListByVertical(_ context.Context, verticalID int) ([]*domain.SensorType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.SensorType
	for _, st := range r.rows {
		if st.VerticalID == verticalID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemorySensorTypesRepo) Insert(_ context.Context, st *domain.SensorType) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.VerticalID == st.VerticalID && existing.Name == st.Name {
			return 0, ErrConflict
		}
	}
	st.ID = r.nextID
	r.nextID++
	cp := *st
	r.rows[st.ID] = &cp
	return st.ID, nil
}

func (r *MemorySensorTypesRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemorySensorTypesRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows), nil
}

func (r *MemorySensorTypesRepo) CountByVertical(_ context.Context, verticalID int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, st := range r.rows {
		if st.VerticalID == verticalID {
			n++
		}
	}
	return n, nil
}
