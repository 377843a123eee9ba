package payment

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeProvider creates Stripe payment intents. Amounts are converted to
// minor units (cents) at this boundary only.
type StripeProvider struct{}

func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, userID uuid.UUID) (*Intent, error) {
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID.String())

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("payment: failed to create payment intent: %w", err)
	}

	return &Intent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}
