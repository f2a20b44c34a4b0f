package journal

import (
	"context"
	"sync"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// MemoryRepository keeps records in process memory. Used by tests and by the
// CLI when no persistence is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []models.OrderRecord
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Read(ctx context.Context) ([]models.OrderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.OrderRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *MemoryRepository) Append(ctx context.Context, rec models.OrderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]models.OrderRecord{rec}, m.records...)
	return nil
}

func (m *MemoryRepository) Prune(ctx context.Context, max int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if max >= 0 && len(m.records) > max {
		m.records = m.records[:max]
	}
	return nil
}

func (m *MemoryRepository) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}
