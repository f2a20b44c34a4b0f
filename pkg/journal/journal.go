// Package journal keeps the client-local log of submitted orders: an
// append-only list capped at the newest 100 records, persisted through an
// injected repository, with an in-process change notification so other open
// views can refresh after every write.
package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// DefaultCapacity is the journal cap: appends beyond it drop the oldest
// records.
const DefaultCapacity = 100

type Journal struct {
	repo     Repository
	capacity int
	logger   *logrus.Logger

	mu   sync.Mutex
	subs []chan struct{}
}

func New(repo Repository, logger *logrus.Logger) *Journal {
	return &Journal{
		repo:     repo,
		capacity: DefaultCapacity,
		logger:   logger,
	}
}

// Record appends one entry at the head, prunes to capacity and notifies
// subscribers. Missing ID and timestamp are filled in.
func (j *Journal) Record(ctx context.Context, rec models.OrderRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	if err := j.repo.Append(ctx, rec); err != nil {
		return fmt.Errorf("append order record: %w", err)
	}
	if err := j.repo.Prune(ctx, j.capacity); err != nil {
		return fmt.Errorf("prune order journal: %w", err)
	}

	j.notify()
	return nil
}

// History returns all records, newest first.
func (j *Journal) History(ctx context.Context) ([]models.OrderRecord, error) {
	recs, err := j.repo.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read order journal: %w", err)
	}
	return recs, nil
}

// Clear drops every record. Only an explicit user action calls this.
func (j *Journal) Clear(ctx context.Context) error {
	if err := j.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear order journal: %w", err)
	}
	j.logger.Info("Order journal cleared")
	j.notify()
	return nil
}

// Subscribe returns a channel that receives a tick after every journal
// write. The channel is buffered; a slow subscriber coalesces ticks instead
// of blocking writers.
func (j *Journal) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	j.mu.Lock()
	j.subs = append(j.subs, ch)
	j.mu.Unlock()
	return ch
}

func (j *Journal) notify() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, ch := range j.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
