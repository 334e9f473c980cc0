package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shenikar/violation_pipeline/internal/models"
	"github.com/shenikar/violation_pipeline/internal/service"
)

// MemoryRunRepository хранит запуски в памяти процесса. Используется в режиме run без БД.
type MemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]models.Run
}

func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{runs: make(map[uuid.UUID]models.Run)}
}

func (r *MemoryRunRepository) Save(_ context.Context, run *models.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *MemoryRunRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("run with id %s: %w", id, service.ErrRunNotFound)
	}
	return &run, nil
}

func (r *MemoryRunRepository) ListRuns(_ context.Context, page, pageSize int) ([]*models.Run, error) {
	r.mu.RLock()
	all := make([]*models.Run, 0, len(r.runs))
	for _, run := range r.runs {
		all = append(all, &run)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b *models.Run) int {
		return b.StartedAt.Compare(a.StartedAt)
	})

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return []*models.Run{}, nil
	}
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return []*models.Run{}, nil
	}
	return all[offset:min(offset+pageSize, len(all))], nil
}

// GetRunFromCache - кеша нет, всегда промах
func (r *MemoryRunRepository) GetRunFromCache(context.Context, uuid.UUID) (*models.Run, error) {
	return nil, nil
}

func (r *MemoryRunRepository) SetRunCache(context.Context, *models.Run) error {
	return nil
}

var _ service.RunRepository = (*MemoryRunRepository)(nil)
