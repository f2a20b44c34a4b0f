package journal

import (
	"context"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// Repository persists the order journal. Implementations keep records
// newest-first: Append inserts at the head and Read returns head-first.
// The journal service owns the capacity policy; repositories only execute
// the prune they are told to.
type Repository interface {
	Read(ctx context.Context) ([]models.OrderRecord, error)
	Append(ctx context.Context, rec models.OrderRecord) error
	Prune(ctx context.Context, max int) error
	Clear(ctx context.Context) error
}
