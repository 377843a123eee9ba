package cart_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ecomdemo/storefront/internal/cart"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.Item), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cart.Item, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Item), args.Error(1)
}

func (m *MockCartService) SetQuantityByID(ctx context.Context, id uuid.UUID, quantity int) (*cart.SetResult, error) {
	args := m.Called(ctx, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.SetResult), args.Error(1)
}

func (m *MockCartService) SetQuantityByUserProduct(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cart.SetResult, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.SetResult), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newRouter(svc cart.Service) *chi.Mux {
	router := chi.NewRouter()
	cart.NewHandler(svc).RegisterRoutes(router)
	return router
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandler_GetCart(t *testing.T) {
	userID := mustUUID(t)

	t.Run("returns_items", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("GetCart", mock.Anything, userID).Return([]cart.Item{
			{UserID: userID, Quantity: 2},
		}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/cart?userId="+userID.String(), nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.True(t, env.Success)

		var items []cart.Item
		require.NoError(t, json.Unmarshal(env.Data, &items))
		assert.Len(t, items, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty_cart_is_an_array", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("GetCart", mock.Anything, userID).Return([]cart.Item{}, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/cart?userId="+userID.String(), nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
	})

	t.Run("missing_user_id", func(t *testing.T) {
		mockSvc := new(MockCartService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		mockSvc.AssertNotCalled(t, "GetCart", mock.Anything, mock.Anything)
	})
}

func TestHandler_AddItem(t *testing.T) {
	userID := mustUUID(t)
	productID := mustUUID(t)

	t.Run("created", func(t *testing.T) {
		itemID := mustUUID(t)
		mockSvc := new(MockCartService)
		mockSvc.On("AddToCart", mock.Anything, userID, productID, 3).Return(&cart.Item{
			ID:        itemID,
			UserID:    userID,
			ProductID: productID,
			Quantity:  3,
		}, nil)

		body, err := json.Marshal(map[string]any{
			"userId":    userID,
			"productId": productID,
			"quantity":  3,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewReader(body))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.True(t, env.Success)

		var item cart.Item
		require.NoError(t, json.Unmarshal(env.Data, &item))
		assert.Equal(t, itemID, item.ID)
		assert.Equal(t, 3, item.Quantity)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing_fields", func(t *testing.T) {
		mockSvc := new(MockCartService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewReader([]byte(`{"quantity":1}`)))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockSvc.AssertNotCalled(t, "AddToCart", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero_quantity_rejected", func(t *testing.T) {
		mockSvc := new(MockCartService)

		body, err := json.Marshal(map[string]any{
			"userId":    userID,
			"productId": productID,
			"quantity":  0,
		})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewReader(body))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_UpdateItem(t *testing.T) {
	itemID := mustUUID(t)
	userID := mustUUID(t)
	productID := mustUUID(t)

	t.Run("zero_quantity_reports_deleted", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("SetQuantityByID", mock.Anything, itemID, 0).Return(&cart.SetResult{Deleted: true}, nil)

		body, err := json.Marshal(map[string]any{"id": itemID, "quantity": 0})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/cart", bytes.NewReader(body))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":{"deleted":true}}`, rec.Body.String())
		mockSvc.AssertExpectations(t)
	})

	t.Run("set_by_user_product_pair", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("SetQuantityByUserProduct", mock.Anything, userID, productID, 5).Return(&cart.SetResult{
			Item: &cart.Item{ID: itemID, UserID: userID, ProductID: productID, Quantity: 5},
		}, nil)

		body, err := json.Marshal(map[string]any{"userId": userID, "productId": productID, "quantity": 5})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/cart", bytes.NewReader(body))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)

		var item cart.Item
		require.NoError(t, json.Unmarshal(env.Data, &item))
		assert.Equal(t, 5, item.Quantity)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing_selector", func(t *testing.T) {
		mockSvc := new(MockCartService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/cart", bytes.NewReader([]byte(`{"quantity":2}`)))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing_item", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("SetQuantityByID", mock.Anything, itemID, 2).Return(nil, cart.ErrItemNotFound)

		body, err := json.Marshal(map[string]any{"id": itemID, "quantity": 2})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/cart", bytes.NewReader(body))
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	itemID := mustUUID(t)
	userID := mustUUID(t)

	t.Run("by_item_id", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("RemoveItem", mock.Anything, itemID).Return(nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/cart?id="+itemID.String(), nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("clear_by_user", func(t *testing.T) {
		mockSvc := new(MockCartService)
		mockSvc.On("ClearCart", mock.Anything, userID).Return(nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/cart?userId="+userID.String(), nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no_selector", func(t *testing.T) {
		mockSvc := new(MockCartService)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
		newRouter(mockSvc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
