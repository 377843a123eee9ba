package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ecomdemo/storefront/internal/payment"
)

var (
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidItem       = errors.New("invalid order item")
	ErrTotalMismatch     = errors.New("total does not match the sum of item prices")
	ErrPaymentFailed     = errors.New("payment intent creation failed")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type CheckoutInput struct {
	UserID uuid.UUID
	Items  []CheckoutItem
	Total  decimal.Decimal
}

type CheckoutResult struct {
	OrderID      uuid.UUID
	ClientSecret string
}

type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Order, error)
}

type service struct {
	repo     Repository
	payments payment.Provider
}

func NewService(repo Repository, payments payment.Provider) Service {
	return &service{repo: repo, payments: payments}
}

// Checkout validates the payload, creates a payment intent for the total,
// then persists the order, its items, and the cart clearing in a single
// transaction. The intent is created first and never retried: a storage
// failure afterwards leaves the cart intact and no order behind, only an
// unconsumed intent at the gateway.
func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	computedTotal := decimal.Zero
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: product id cannot be nil", ErrInvalidItem)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %s must be greater than zero", ErrInvalidItem, item.ProductID)
		}
		if item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price for product %s cannot be negative", ErrInvalidItem, item.ProductID)
		}
		computedTotal = computedTotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if !computedTotal.Equal(input.Total) {
		log.Warn().
			Stringer("user_id", input.UserID).
			Str("submitted_total", input.Total.String()).
			Str("computed_total", computedTotal.String()).
			Msg("service: checkout total mismatch")
		return nil, ErrTotalMismatch
	}

	intent, err := s.payments.CreateIntent(ctx, computedTotal, "usd", input.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", input.UserID).Msg("service: failed to create payment intent")
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	o := &Order{
		UserID: input.UserID,
		Total:  computedTotal,
		Status: StatusPending,
		Items:  make([]OrderItem, 0, len(input.Items)),
	}
	for _, item := range input.Items {
		o.Items = append(o.Items, OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := s.repo.CreateFromCheckout(ctx, o); err != nil {
		// The intent is already registered at the gateway; log its id so
		// the orphan can be reconciled. No retry: intent creation is not
		// idempotent.
		log.Error().Err(err).
			Stringer("user_id", input.UserID).
			Str("payment_intent_id", intent.ID).
			Msg("service: failed to persist order after payment intent creation")
		return nil, fmt.Errorf("service: failed to persist order: %w", err)
	}

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", o.UserID).
		Str("total", o.Total.String()).
		Msg("Order created")

	return &CheckoutResult{OrderID: o.ID, ClientSecret: intent.ClientSecret}, nil
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus Status) (*Order, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		return current, nil
	}

	if !current.Status.CanTransitionTo(newStatus) {
		log.Warn().
			Stringer("order_id", id).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Stringer("new_status", newStatus).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().
		Stringer("order_id", id).
		Stringer("old_status", current.Status).
		Stringer("new_status", newStatus).
		Msg("Order status updated")

	current.Status = newStatus
	return current, nil
}
