// Package payment abstracts the external payment gateway behind a small
// port so checkout can be exercised without network calls.
package payment

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Intent is the gateway's handle for a pending payment.
type Intent struct {
	ID           string
	ClientSecret string
}

type Provider interface {
	// CreateIntent registers a payment of amount (major units, e.g. dollars)
	// with the gateway. Not idempotent: callers must not retry on failure.
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, userID uuid.UUID) (*Intent, error)
}
