package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// FileRepository persists the journal as a single JSON document on disk.
// A missing or unreadable store is treated as an empty journal rather than
// an error, so a corrupt file never blocks new submissions.
type FileRepository struct {
	path   string
	logger *logrus.Logger

	mu sync.Mutex
}

var _ Repository = (*FileRepository)(nil)

func NewFileRepository(path string, logger *logrus.Logger) *FileRepository {
	return &FileRepository{
		path:   path,
		logger: logger,
	}
}

func (f *FileRepository) Read(ctx context.Context) ([]models.OrderRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(), nil
}

func (f *FileRepository) Append(ctx context.Context, rec models.OrderRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := append([]models.OrderRecord{rec}, f.load()...)
	return f.save(recs)
}

func (f *FileRepository) Prune(ctx context.Context, max int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.load()
	if max < 0 || len(recs) <= max {
		return nil
	}
	return f.save(recs[:max])
}

func (f *FileRepository) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save([]models.OrderRecord{})
}

// load reads the store, mapping every failure mode to an empty journal.
func (f *FileRepository) load() []models.OrderRecord {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.WithError(err).WithField("path", f.path).Warn("Failed to read order journal, treating as empty")
		}
		return nil
	}

	var recs []models.OrderRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		f.logger.WithError(err).WithField("path", f.path).Warn("Corrupt order journal, treating as empty")
		return nil
	}
	return recs
}

func (f *FileRepository) save(recs []models.OrderRecord) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode order journal: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal directory: %w", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write order journal: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace order journal: %w", err)
	}
	return nil
}
