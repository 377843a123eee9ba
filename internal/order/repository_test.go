package order_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecomdemo/storefront/internal/cart"
	"github.com/ecomdemo/storefront/internal/order"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "123456"),
		envOr("DB_NAME", "storefront_test"),
		envOr("DB_SSLMODE", "disable"),
	)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if pingErr := pool.Ping(ctx); pingErr == nil {
			db = pool
		} else {
			log.Printf("Test database unreachable, skipping repository tests: %v", pingErr)
			pool.Close()
		}
		cancel()
	}

	exitCode := m.Run()

	if db != nil {
		db.Close()
	}

	os.Exit(exitCode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if db == nil {
		t.Skip("test database not available")
	}
	return db
}

func seedUser(t *testing.T) uuid.UUID {
	t.Helper()
	pool := requireDB(t)

	userID := mustUUID(t)
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, password_hash, name) VALUES ($1, $2, 'x', 'Test User')`,
		userID, userID.String()+"@test.local")
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		if _, err := pool.Exec(ctx, `DELETE FROM orders WHERE user_id = $1`, userID); err != nil {
			t.Errorf("failed to clean up test orders: %v", err)
		}
		if _, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
			t.Errorf("failed to clean up test user: %v", err)
		}
	})

	return userID
}

func TestRepository_CreateFromCheckout_ClearsCart(t *testing.T) {
	requireDB(t)
	repo := order.NewRepository(db)
	cartRepo := cart.NewRepository(db)
	ctx := context.Background()

	userID := seedUser(t)
	productID := mustUUID(t)

	item := &cart.Item{UserID: userID, ProductID: productID, Quantity: 2}
	require.NoError(t, cartRepo.Upsert(ctx, item))

	o := &order.Order{
		UserID: userID,
		Total:  decimal.RequireFromString("20.00"),
		Status: order.StatusPending,
		Items: []order.OrderItem{
			{ProductID: productID, Quantity: 2, Price: decimal.RequireFromString("10.00")},
		},
	}
	require.NoError(t, repo.CreateFromCheckout(ctx, o))
	assert.False(t, o.ID.IsNil())

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("20.00")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, productID, got.Items[0].ProductID)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("10.00")))

	remaining, err := cartRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, remaining, "checkout should clear the user's cart")
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	requireDB(t)
	repo := order.NewRepository(db)

	_, err := repo.GetByID(context.Background(), mustUUID(t))
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestRepository_ListByUser(t *testing.T) {
	requireDB(t)
	repo := order.NewRepository(db)
	ctx := context.Background()

	userID := seedUser(t)

	t.Run("empty", func(t *testing.T) {
		orders, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("returns_orders_with_items", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			o := &order.Order{
				UserID: userID,
				Total:  decimal.RequireFromString("5.00"),
				Status: order.StatusPending,
				Items: []order.OrderItem{
					{ProductID: mustUUID(t), Quantity: 1, Price: decimal.RequireFromString("5.00")},
				},
			}
			require.NoError(t, repo.CreateFromCheckout(ctx, o))
		}

		orders, err := repo.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		for _, o := range orders {
			assert.Len(t, o.Items, 1)
		}
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	requireDB(t)
	repo := order.NewRepository(db)
	ctx := context.Background()

	t.Run("missing_order", func(t *testing.T) {
		err := repo.UpdateStatus(ctx, mustUUID(t), order.StatusProcessing)
		assert.ErrorIs(t, err, order.ErrNotFound)
	})

	t.Run("persists_new_status", func(t *testing.T) {
		userID := seedUser(t)

		o := &order.Order{
			UserID: userID,
			Total:  decimal.RequireFromString("5.00"),
			Status: order.StatusPending,
			Items: []order.OrderItem{
				{ProductID: mustUUID(t), Quantity: 1, Price: decimal.RequireFromString("5.00")},
			},
		}
		require.NoError(t, repo.CreateFromCheckout(ctx, o))

		require.NoError(t, repo.UpdateStatus(ctx, o.ID, order.StatusProcessing))

		got, err := repo.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusProcessing, got.Status)
	})
}
