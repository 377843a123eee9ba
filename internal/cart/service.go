package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var ErrInvalidQuantity = errors.New("quantity must be greater than zero")

// SetResult reports the outcome of an absolute quantity set: either the
// updated item, or Deleted when the requested quantity was zero or below.
type SetResult struct {
	Item    *Item
	Deleted bool
}

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]Item, error)
	AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Item, error)
	SetQuantityByID(ctx context.Context, id uuid.UUID, quantity int) (*SetResult, error)
	SetQuantityByUserProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*SetResult, error)
	RemoveItem(ctx context.Context, id uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch cart")
		return nil, fmt.Errorf("service: failed to fetch cart: %w", err)
	}

	return items, nil
}

// AddToCart merges quantity into the user's line for the product: an
// existing line is incremented, a missing one inserted.
func (s *service) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item := &Item{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.repo.Upsert(ctx, item); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Stringer("product_id", productID).Msg("service: failed to add to cart")
		return nil, fmt.Errorf("service: failed to add to cart: %w", err)
	}

	return item, nil
}

// SetQuantityByID overwrites the stored quantity. Zero or negative removes
// the line instead of erroring.
func (s *service) SetQuantityByID(ctx context.Context, id uuid.UUID, quantity int) (*SetResult, error) {
	if quantity <= 0 {
		if err := s.repo.DeleteByID(ctx, id); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return nil, ErrItemNotFound
			}
			log.Error().Err(err).Stringer("item_id", id).Msg("service: failed to remove cart item")
			return nil, fmt.Errorf("service: failed to remove cart item: %w", err)
		}
		return &SetResult{Deleted: true}, nil
	}

	item, err := s.repo.SetQuantityByID(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", id).Msg("service: failed to set cart quantity")
		return nil, fmt.Errorf("service: failed to set cart quantity: %w", err)
	}

	return &SetResult{Item: item}, nil
}

func (s *service) SetQuantityByUserProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*SetResult, error) {
	if quantity <= 0 {
		if err := s.repo.DeleteByUserProduct(ctx, userID, productID); err != nil {
			if errors.Is(err, ErrItemNotFound) {
				return nil, ErrItemNotFound
			}
			log.Error().Err(err).Stringer("user_id", userID).Stringer("product_id", productID).Msg("service: failed to remove cart item")
			return nil, fmt.Errorf("service: failed to remove cart item: %w", err)
		}
		return &SetResult{Deleted: true}, nil
	}

	item, err := s.repo.SetQuantityByUserProduct(ctx, userID, productID, quantity)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		log.Error().Err(err).Stringer("user_id", userID).Stringer("product_id", productID).Msg("service: failed to set cart quantity")
		return nil, fmt.Errorf("service: failed to set cart quantity: %w", err)
	}

	return &SetResult{Item: item}, nil
}

func (s *service) RemoveItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", id).Msg("service: failed to remove cart item")
		return fmt.Errorf("service: failed to remove cart item: %w", err)
	}

	return nil
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.ClearByUser(ctx, userID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart")
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}

	return nil
}
