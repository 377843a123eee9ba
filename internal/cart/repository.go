package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Item, error)
	Upsert(ctx context.Context, item *Item) error
	SetQuantityByID(ctx context.Context, id uuid.UUID, quantity int) (*Item, error)
	SetQuantityByUserProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Item, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByUserProduct(ctx context.Context, userID, productID uuid.UUID) error
	ClearByUser(ctx context.Context, userID uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart for user %s: %w", userID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart items: %w", err)
	}

	return items, nil
}

// Upsert adds the item's quantity to an existing (user, product) row, or
// inserts a new one. A single statement so concurrent adds to the same line
// cannot lose updates.
func (r *postgresRepository) Upsert(ctx context.Context, item *Item) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate cart item ID: %w", err)
	}

	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity, created_at
	`
	err = r.db.QueryRow(ctx, query, id, item.UserID, item.ProductID, item.Quantity, time.Now().UTC()).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to upsert cart item: %w", err)
	}

	return nil
}

func (r *postgresRepository) SetQuantityByID(ctx context.Context, id uuid.UUID, quantity int) (*Item, error) {
	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2
		RETURNING id, user_id, product_id, quantity, created_at
	`

	var item Item
	err := r.db.QueryRow(ctx, query, quantity, id).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to set quantity for cart item %s: %w", id, err)
	}

	return &item, nil
}

func (r *postgresRepository) SetQuantityByUserProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Item, error) {
	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE user_id = $2 AND product_id = $3
		RETURNING id, user_id, product_id, quantity, created_at
	`

	var item Item
	err := r.db.QueryRow(ctx, query, quantity, userID, productID).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to set quantity for user %s product %s: %w", userID, productID, err)
	}

	return &item, nil
}

func (r *postgresRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart item %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteByUserProduct(ctx context.Context, userID, productID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart item for user %s product %s: %w", userID, productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *postgresRepository) ClearByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}

	return nil
}
