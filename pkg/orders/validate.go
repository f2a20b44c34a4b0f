package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

// ErrInvalid wraps every local validation failure so callers can reject a
// request before anything is sent to the backend.
var ErrInvalid = errors.New("invalid order")

// NewOrderRequest builds a request with the symbol normalized the way the
// execute endpoint expects it.
func NewOrderRequest(symbol string, side models.OrderSide, qty int64, typ models.OrderType, limitPrice float64) models.OrderRequest {
	return models.OrderRequest{
		Symbol:     strings.ToUpper(strings.TrimSpace(symbol)),
		Side:       side,
		Qty:        qty,
		Type:       typ,
		LimitPrice: limitPrice,
	}
}

// Validate checks one order locally. All violations are reported, not just
// the first.
func Validate(o models.OrderRequest) error {
	var merr *multierror.Error

	if strings.TrimSpace(o.Symbol) == "" {
		merr = multierror.Append(merr, fmt.Errorf("symbol is required"))
	}

	switch o.Side {
	case models.OrderSideBuy, models.OrderSideSell:
	default:
		merr = multierror.Append(merr, fmt.Errorf("invalid side %q", o.Side))
	}

	if o.Qty <= 0 {
		merr = multierror.Append(merr, fmt.Errorf("qty must be a positive integer"))
	}

	switch o.Type {
	case models.OrderTypeMarket:
		if o.LimitPrice != 0 {
			merr = multierror.Append(merr, fmt.Errorf("market orders must not carry a limit price"))
		}
	case models.OrderTypeLimit:
		if o.LimitPrice <= 0 {
			merr = multierror.Append(merr, fmt.Errorf("limit orders require limitPrice > 0"))
		}
	default:
		merr = multierror.Append(merr, fmt.Errorf("invalid order type %q", o.Type))
	}

	if err := merr.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	return nil
}
