package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// ErrNoSubmission is returned by DuplicateTest before any envelope has been
// submitted successfully.
var ErrNoSubmission = errors.New("no previous submission to re-send")

// Executor is the slice of the proxy client the submitter needs.
type Executor interface {
	ExecuteOrders(ctx context.Context, req *models.ExecuteRequest) (*models.ExecuteResponse, error)
}

// Recorder receives a journal record for every order that reached the
// backend.
type Recorder interface {
	Record(ctx context.Context, rec models.OrderRecord) error
}

// Result pairs a backend response with the request ID it was submitted
// under, so the caller can drive a duplicate test later.
type Result struct {
	RequestID string                  `json:"requestId"`
	Response  *models.ExecuteResponse `json:"response"`
}

// Submitter builds execute envelopes and sends them to the backend. Every
// envelope is a dry run; no live-trading path exists in this layer.
//
// Overlapping submissions are serialized by generation: each Submit takes a
// new generation, and only the response belonging to the newest generation
// is kept as the stored last result. A stale response is still returned to
// its own caller.
type Submitter struct {
	client  Executor
	journal Recorder
	logger  *logrus.Logger

	mu       sync.Mutex
	gen      uint64
	last     *models.ExecuteRequest
	lastResp *models.ExecuteResponse
}

func NewSubmitter(client Executor, journal Recorder, logger *logrus.Logger) *Submitter {
	return &Submitter{
		client:  client,
		journal: journal,
		logger:  logger,
	}
}

// Submit validates the orders, wraps them in a fresh envelope and POSTs it.
// The envelope and response are retained for DuplicateTest only while no
// newer submission has started.
func (s *Submitter) Submit(ctx context.Context, reqs ...models.OrderRequest) (*Result, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no orders", ErrInvalid)
	}
	for _, o := range reqs {
		if err := Validate(o); err != nil {
			return nil, err
		}
	}

	envelope := &models.ExecuteRequest{
		DryRun:    true,
		RequestID: NewRequestID(),
		Orders:    reqs,
	}

	s.mu.Lock()
	s.gen++
	myGen := s.gen
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"request_id": envelope.RequestID,
		"orders":     len(envelope.Orders),
	}).Info("Submitting dry-run order envelope")

	resp, err := s.client.ExecuteOrders(ctx, envelope)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if myGen == s.gen {
		s.last = envelope
		s.lastResp = resp
	}
	s.mu.Unlock()

	s.record(ctx, envelope)

	return &Result{RequestID: envelope.RequestID, Response: resp}, nil
}

// DuplicateTest re-sends the last submitted envelope unchanged, with the
// same request ID, orders and dry-run flag, in a fresh HTTP call. The
// client never detects duplication itself; it only hands the backend a
// stable ID to detect it with.
func (s *Submitter) DuplicateTest(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	envelope := s.last
	s.mu.Unlock()

	if envelope == nil {
		return nil, ErrNoSubmission
	}

	s.logger.WithField("request_id", envelope.RequestID).Info("Re-sending envelope for duplicate test")

	resp, err := s.client.ExecuteOrders(ctx, envelope)
	if err != nil {
		return nil, err
	}
	return &Result{RequestID: envelope.RequestID, Response: resp}, nil
}

// Last returns the stored result of the newest completed submission.
func (s *Submitter) Last() (*Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, false
	}
	return &Result{RequestID: s.last.RequestID, Response: s.lastResp}, true
}

func (s *Submitter) record(ctx context.Context, envelope *models.ExecuteRequest) {
	if s.journal == nil {
		return
	}

	status := models.OrderStatusPending
	if envelope.DryRun {
		status = models.OrderStatusDryRun
	}

	for _, o := range envelope.Orders {
		rec := models.OrderRecord{
			Timestamp:  time.Now().UTC(),
			Symbol:     o.Symbol,
			Side:       o.Side,
			Qty:        o.Qty,
			Type:       o.Type,
			LimitPrice: o.LimitPrice,
			Status:     status,
			DryRun:     envelope.DryRun,
		}
		if err := s.journal.Record(ctx, rec); err != nil {
			s.logger.WithError(err).WithField("symbol", o.Symbol).Error("Failed to record order in journal")
		}
	}
}

// NewRequestID mints the idempotency token attached to an execute envelope.
// Format: req-<unix millis>-<random base36>.
func NewRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fall back to the clock if crypto/rand is unavailable.
		return fmt.Sprintf("req-%d-%s", time.Now().UnixMilli(), strconv.FormatInt(time.Now().UnixNano(), 36))
	}
	return fmt.Sprintf("req-%d-%s", time.Now().UnixMilli(), new(big.Int).SetBytes(b).Text(36))
}
