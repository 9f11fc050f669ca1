package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/airtickets/internal/auth"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/orders"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderUseCase struct {
	mock.Mock
}

func (m *MockOrderUseCase) CreateOrder(ctx context.Context, userID string, input orders.CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) ConfirmOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) CancelOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderUseCase) ExpireOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderUseCase) ExpireStaleOrders(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newOrderContext(method, target string, body []byte, userID, role string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	auth.SetIdentity(c, userID, role)
	return c, w
}

func TestOrderHandler_create(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, nil)

	input := orders.CreateOrderInput{
		FlightID:   1,
		TicketType: domain.TicketTypeOneWay,
		Tickets:    []orders.TicketRequestInput{{Direction: domain.DirectionOutbound, SeatClass: domain.SeatClassEconomy, SeatNumber: "12A"}},
	}
	body, _ := json.Marshal(input)
	c, w := newOrderContext("POST", "/orders", body, "user-1", auth.RoleClient)

	order := &domain.Order{ID: uuid.New(), UserID: "user-1", FlightID: 1, Status: domain.OrderStatusBooked}
	mockService.On("CreateOrder", c.Request.Context(), "user-1", input).Return(order, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, order.ID, response.ID)
	assert.Equal(t, domain.OrderStatusBooked, response.Status)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_create_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "validation", err: domain.NewValidationError("tickets", "this field is required"), status: http.StatusBadRequest, code: "validation_error"},
		{name: "exhausted", err: &domain.ExhaustedError{FlightID: 1, Class: domain.SeatClassFirst}, status: http.StatusConflict, code: "inventory_exhausted"},
		{name: "seat taken", err: &domain.SeatTakenError{FlightID: 1, SeatNumber: "1A"}, status: http.StatusConflict, code: "seat_taken"},
		{name: "flight missing", err: domain.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
		{name: "database", err: errors.New("pq: connection refused"), status: http.StatusInternalServerError, code: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockOrderUseCase{}
			handler := NewOrderHandler(mockService, nil)
			c, w := newOrderContext("POST", "/orders", []byte(`{"flight_id":1}`), "user-1", auth.RoleClient)
			mockService.On("CreateOrder", mock.Anything, "user-1", mock.Anything).Return(nil, tt.err)

			handler.create(c)

			assert.Equal(t, tt.status, w.Code)
			var response errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.code, response.Error)
			assert.NotContains(t, response.Message, "connection refused")
		})
	}
}

func TestOrderHandler_get_Forbidden(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, nil)
	id := uuid.New()

	c, w := newOrderContext("GET", "/orders/"+id.String(), nil, "intruder", auth.RoleClient)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	mockService.On("GetOrder", c.Request.Context(), id).Return(&domain.Order{ID: id, UserID: "owner"}, nil)

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderHandler_get_AdminSeesAnyOrder(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, nil)
	id := uuid.New()

	c, w := newOrderContext("GET", "/orders/"+id.String(), nil, "root", auth.RoleAdmin)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	mockService.On("GetOrder", c.Request.Context(), id).Return(&domain.Order{ID: id, UserID: "owner"}, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderHandler_buy(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, nil)
	id := uuid.New()

	c, w := newOrderContext("POST", "/orders/"+id.String()+"/buy", nil, "owner", auth.RoleClient)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	mockService.On("GetOrder", c.Request.Context(), id).Return(&domain.Order{ID: id, UserID: "owner", Status: domain.OrderStatusBooked}, nil)
	mockService.On("ConfirmOrder", c.Request.Context(), id).Return(&domain.Order{ID: id, UserID: "owner", Status: domain.OrderStatusConfirmed}, nil)

	handler.buy(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, domain.OrderStatusConfirmed, response.Status)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_cancel_Cancelled(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, nil)
	id := uuid.New()

	c, w := newOrderContext("POST", "/orders/"+id.String()+"/cancel", nil, "owner", auth.RoleClient)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	mockService.On("GetOrder", c.Request.Context(), id).Return(&domain.Order{ID: id, UserID: "owner", Status: domain.OrderStatusCancelled}, nil)
	mockService.On("CancelOrder", c.Request.Context(), id).
		Return(nil, &domain.TransitionError{OrderID: id, From: domain.OrderStatusCancelled, To: domain.OrderStatusCancelled})

	handler.cancel(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var response errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "invalid_state_transition", response.Error)
}

func TestOrderHandler_list(t *testing.T) {
	mockService := &MockOrderUseCase{}
	handler := NewOrderHandler(mockService, nil)

	c, w := newOrderContext("GET", "/orders?all=true", nil, "user-1", auth.RoleClient)
	mockService.On("ListOrders", c.Request.Context(), "user-1").Return([]domain.Order{{ID: uuid.New(), UserID: "user-1"}}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)

	admin, w := newOrderContext("GET", "/orders?all=true", nil, "root", auth.RoleAdmin)
	mockService.On("ListOrders", admin.Request.Context(), "").Return([]domain.Order{}, nil)

	handler.list(admin)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_InvalidID(t *testing.T) {
	handler := NewOrderHandler(&MockOrderUseCase{}, nil)

	c, w := newOrderContext("GET", "/orders/nope", nil, "user-1", auth.RoleClient)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
