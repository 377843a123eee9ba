package order_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecomdemo/storefront/internal/order"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, input order.CheckoutInput) (*order.CheckoutResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CheckoutResult), args.Error(1)
}

func (m *MockOrderService) GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus order.Status) (*order.Order, error) {
	args := m.Called(ctx, id, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(svc order.Service) *chi.Mux {
	router := chi.NewRouter()
	order.NewHandler(svc).RegisterRoutes(router)
	return router
}

func TestHandler_Checkout(t *testing.T) {
	userID := mustUUID(t)
	productID := mustUUID(t)
	orderID := mustUUID(t)

	t.Run("created", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("Checkout", mock.Anything, mock.MatchedBy(func(input order.CheckoutInput) bool {
			return input.UserID == userID &&
				len(input.Items) == 1 &&
				input.Items[0].Quantity == 2 &&
				input.Total.Equal(decimal.RequireFromString("20.00"))
		})).Return(&order.CheckoutResult{OrderID: orderID, ClientSecret: "pi_secret"}, nil)

		body := []byte(`{
			"userId": "` + userID.String() + `",
			"items": [{"productId": "` + productID.String() + `", "quantity": 2, "price": "10.00"}],
			"total": "20.00"
		}`)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.True(t, env.Success)

		var resp order.CheckoutResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))

		want := order.CheckoutResponse{OrderID: orderID, ClientSecret: "pi_secret"}
		if diff := cmp.Diff(want, resp); diff != "" {
			t.Errorf("checkout response mismatch (-want +got):\n%s", diff)
		}
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing_fields", func(t *testing.T) {
		mockSvc := new(MockOrderService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader([]byte(`{"items": []}`)))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockSvc.AssertNotCalled(t, "Checkout", mock.Anything, mock.Anything)
	})

	t.Run("total_mismatch", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("Checkout", mock.Anything, mock.Anything).Return(nil, order.ErrTotalMismatch)

		body := []byte(`{
			"userId": "` + userID.String() + `",
			"items": [{"productId": "` + productID.String() + `", "quantity": 2, "price": "10.00"}],
			"total": "99.00"
		}`)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("payment_failure", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("Checkout", mock.Anything, mock.Anything).Return(nil, order.ErrPaymentFailed)

		body := []byte(`{
			"userId": "` + userID.String() + `",
			"items": [{"productId": "` + productID.String() + `", "quantity": 2, "price": "10.00"}],
			"total": "20.00"
		}`)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestHandler_GetOrder(t *testing.T) {
	orderID := mustUUID(t)

	t.Run("found_with_items", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("GetOrderByID", mock.Anything, orderID).Return(&order.Order{
			ID:     orderID,
			Status: order.StatusPending,
			Total:  decimal.RequireFromString("20.00"),
			Items:  []order.OrderItem{{OrderID: orderID, Quantity: 2, Price: decimal.RequireFromString("10.00")}},
		}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

		var got order.Order
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, orderID, got.ID)
		assert.Len(t, got.Items, 1)
	})

	t.Run("not_found", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("GetOrderByID", mock.Anything, orderID).Return(nil, order.ErrNotFound)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/"+orderID.String(), nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.False(t, env.Success)
		assert.Empty(t, env.Data)
	})

	t.Run("invalid_id", func(t *testing.T) {
		mockSvc := new(MockOrderService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_UpdateStatus(t *testing.T) {
	orderID := mustUUID(t)

	t.Run("accepted", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("UpdateStatus", mock.Anything, orderID, order.StatusProcessing).Return(&order.Order{
			ID:     orderID,
			Status: order.StatusProcessing,
		}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String(), bytes.NewReader([]byte(`{"status":"processing"}`)))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid_transition", func(t *testing.T) {
		mockSvc := new(MockOrderService)
		mockSvc.On("UpdateStatus", mock.Anything, orderID, order.StatusDelivered).Return(nil, order.ErrInvalidTransition)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String(), bytes.NewReader([]byte(`{"status":"delivered"}`)))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing_status", func(t *testing.T) {
		mockSvc := new(MockOrderService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/orders/"+orderID.String(), bytes.NewReader([]byte(`{}`)))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
