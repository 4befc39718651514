package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/logger"
	"github.com/fsdevblog/groph-delivery/internal/service"
	"github.com/fsdevblog/groph-delivery/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-delivery/internal/transport/api/testutils"
	"github.com/fsdevblog/groph-delivery/internal/transport/api/tokens"
)

type OrdersHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockOrderService *mocks.MockOrderServicer
	jwtSecret        []byte
}

func TestOrdersHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerTestSuite))
}

func (s *OrdersHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockOrderService = mocks.NewMockOrderServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:          logger.New(os.Stdout),
		OrderService:    s.mockOrderService,
		DeliveryService: mocks.NewMockDeliveryServicer(mockCtrl),
		JWTSecretKey:    s.jwtSecret,
	})
}

func (s *OrdersHandlerTestSuite) token(userID int64, role domain.RoleType) string {
	token, err := tokens.GenerateUserJWT(userID, role, time.Hour, s.jwtSecret)
	s.Require().NoError(err)
	return token
}

func (s *OrdersHandlerTestSuite) TestCreate() {
	clientToken := s.token(10, domain.RoleClient)
	courierToken := s.token(5, domain.RoleCourier)

	validPayload := []byte(`{
		"lines": [{"product_id": 1, "quantity": 2}],
		"delivery_address": "12 rue de la Kasbah",
		"payment_method": "cash"
	}`)
	noLinesPayload := []byte(`{
		"lines": [],
		"delivery_address": "12 rue de la Kasbah",
		"payment_method": "cash"
	}`)
	outOfStockPayload := []byte(`{
		"lines": [{"product_id": 2, "quantity": 50}],
		"delivery_address": "12 rue de la Kasbah",
		"payment_method": "card"
	}`)

	s.mockOrderService.EXPECT().
		Create(gomock.Any(), service.CreateOrderArgs{
			ClientID:      10,
			Lines:         []service.OrderLineInput{{ProductID: 1, Quantity: 2}},
			Address:       "12 rue de la Kasbah",
			PaymentMethod: domain.PaymentMethodCash,
		}).
		Return(&domain.Order{
			ID:       42,
			ClientID: 10,
			Status:   domain.OrderStatusPending,
			Total:    decimal.NewFromInt(20),
		}, nil)
	s.mockOrderService.EXPECT().
		Create(gomock.Any(), gomock.AssignableToTypeOf(service.CreateOrderArgs{})).
		Return(nil, domain.NewInsufficientStockError(2))

	cases := []struct {
		name       string
		payload    []byte
		jwtToken   string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "all ok",
			payload:    validPayload,
			jwtToken:   clientToken,
			wantStatus: http.StatusCreated,
		}, {
			name:       "insufficient stock",
			payload:    outOfStockPayload,
			jwtToken:   clientToken,
			wantStatus: http.StatusConflict,
			wantCode:   "insufficient_stock",
		}, {
			name:       "no lines",
			payload:    noLinesPayload,
			jwtToken:   clientToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "not authorized",
			payload:    validPayload,
			wantStatus: http.StatusUnauthorized,
		}, {
			name:       "wrong role",
			payload:    validPayload,
			jwtToken:   courierToken,
			wantStatus: http.StatusForbidden,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			var reqOpts []func(*testutils.RequestOptions)
			if t.jwtToken != "" {
				reqOpts = append(reqOpts, testutils.WithBearerToken(t.jwtToken))
			}
			resp, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPost,
				URL:    RouteGroup + OrdersRoute,
				Body:   bytes.NewReader(t.payload),
			}, reqOpts...)
			s.Require().NoError(err)
			defer resp.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, resp.StatusCode)
			if t.wantCode != "" {
				var body map[string]any
				s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
				s.Equal(t.wantCode, body["code"])
			}
		})
	}
}

func (s *OrdersHandlerTestSuite) TestUpdateStatus() {
	merchantToken := s.token(70, domain.RoleMerchant)
	clientToken := s.token(10, domain.RoleClient)

	s.mockOrderService.EXPECT().
		UpdateStatus(gomock.Any(), service.UpdateStatusArgs{
			OrderID: 42,
			ActorID: 70,
			Role:    domain.RoleMerchant,
			Target:  domain.OrderStatusAccepted,
		}).
		Return(&domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusAccepted}, nil)
	s.mockOrderService.EXPECT().
		UpdateStatus(gomock.Any(), service.UpdateStatusArgs{
			OrderID: 43,
			ActorID: 70,
			Role:    domain.RoleMerchant,
			Target:  domain.OrderStatusAccepted,
		}).
		Return(nil, fmt.Errorf("updating status of order 43: %w", domain.ErrInvalidTransition))

	cases := []struct {
		name       string
		orderID    string
		payload    []byte
		jwtToken   string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "merchant accepts",
			orderID:    "42",
			payload:    []byte(`{"status": "accepted"}`),
			jwtToken:   merchantToken,
			wantStatus: http.StatusOK,
		}, {
			name:       "already terminal",
			orderID:    "43",
			payload:    []byte(`{"status": "accepted"}`),
			jwtToken:   merchantToken,
			wantStatus: http.StatusConflict,
			wantCode:   "invalid_transition",
		}, {
			name:       "client not allowed",
			orderID:    "42",
			payload:    []byte(`{"status": "accepted"}`),
			jwtToken:   clientToken,
			wantStatus: http.StatusForbidden,
		}, {
			name:       "unknown label",
			orderID:    "42",
			payload:    []byte(`{"status": "shipped"}`),
			jwtToken:   merchantToken,
			wantStatus: http.StatusBadRequest,
		}, {
			name:       "garbage id",
			orderID:    "abc",
			payload:    []byte(`{"status": "accepted"}`),
			jwtToken:   merchantToken,
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			resp, err := testutils.MakeRequest(testutils.RequestArgs{
				Router: s.router,
				Method: http.MethodPut,
				URL:    fmt.Sprintf("%s/orders/%s/status", RouteGroup, t.orderID),
				Body:   bytes.NewReader(t.payload),
			}, testutils.WithBearerToken(t.jwtToken))
			s.Require().NoError(err)
			defer resp.Body.Close() //nolint:errcheck

			s.Equal(t.wantStatus, resp.StatusCode)
			if t.wantCode != "" {
				var body map[string]any
				s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
				s.Equal(t.wantCode, body["code"])
			}
		})
	}
}

func (s *OrdersHandlerTestSuite) TestShow() {
	clientToken := s.token(10, domain.RoleClient)

	s.mockOrderService.EXPECT().
		GetByID(gomock.Any(), int64(42), int64(10), domain.RoleClient).
		Return(&domain.Order{
			ID:       42,
			ClientID: 10,
			Status:   domain.OrderStatusPending,
			Total:    decimal.RequireFromString("20.5"),
			Lines: []domain.OrderLine{
				{OrderID: 42, ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.25")},
			},
		}, nil)
	s.mockOrderService.EXPECT().
		GetByID(gomock.Any(), int64(404), int64(10), domain.RoleClient).
		Return(nil, domain.ErrOrderNotFound)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + "/orders/42",
	}, testutils.WithBearerToken(clientToken))
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck

	s.Equal(http.StatusOK, resp.StatusCode)
	var body orderResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(int64(42), body.ID)
	s.InDelta(20.5, body.Total, 1e-9)
	s.Require().Len(body.Lines, 1)
	s.InDelta(10.25, body.Lines[0].UnitPrice, 1e-9)

	missingResp, missingErr := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + "/orders/404",
	}, testutils.WithBearerToken(clientToken))
	s.Require().NoError(missingErr)
	defer missingResp.Body.Close() //nolint:errcheck
	s.Equal(http.StatusNotFound, missingResp.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestIndex() {
	clientToken := s.token(10, domain.RoleClient)
	pending := domain.OrderStatusPending

	s.mockOrderService.EXPECT().
		GetByClientID(gomock.Any(), int64(10), &pending).
		Return([]domain.Order{{ID: 42, ClientID: 10, Status: pending}}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + MyOrdersRoute + "?status=pending",
	}, testutils.WithBearerToken(clientToken))
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck

	s.Equal(http.StatusOK, resp.StatusCode)
	var body []orderResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Require().Len(body, 1)
	s.Equal(int64(42), body[0].ID)
}

func (s *OrdersHandlerTestSuite) TestCancel() {
	clientToken := s.token(10, domain.RoleClient)

	s.mockOrderService.EXPECT().
		Cancel(gomock.Any(), int64(10), int64(42)).
		Return(&domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusCancelled}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + "/orders/42/cancel",
	}, testutils.WithBearerToken(clientToken))
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint:errcheck

	s.Equal(http.StatusOK, resp.StatusCode)
	var body orderResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(domain.OrderStatusCancelled, body.Status)
}
