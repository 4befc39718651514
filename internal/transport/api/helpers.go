package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/transport/api/middlewares"
)

func getUserIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middlewares.CurrentUserIDKey)
}

func getRoleFromContext(c *gin.Context) domain.RoleType {
	value, _ := c.Get(middlewares.CurrentRoleKey)
	role, _ := value.(domain.RoleType)
	return role
}

// parseIDParam reads the :id route parameter; on garbage it aborts the
// request with 400 and returns false.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order id", "code": "bad_request"})
		return 0, false
	}
	return id, true
}

// parseStatusQuery reads the optional ?status= filter.
func parseStatusQuery(c *gin.Context) (*domain.OrderStatusType, bool) {
	raw, ok := c.GetQuery("status")
	if !ok || raw == "" {
		return nil, true
	}
	status := domain.NormalizeStatus(domain.OrderStatusType(raw))
	if !domain.ValidStatus(status) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid status filter", "code": "bad_request"})
		return nil, false
	}
	return &status, true
}

// abortWithServiceError maps the domain error taxonomy to HTTP statuses
// and stable machine-readable codes dashboards can branch on.
func abortWithServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyOrder):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrOrderUnavailable):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		_ = c.AbortWithError(status, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": domain.ErrorCode(err)})
}

type orderLineResponse struct {
	ProductID int64   `json:"product_id"`
	Quantity  int32   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type orderResponse struct {
	ID          int64                  `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	ClientID    int64                  `json:"client_id"`
	CourierID   *int64                 `json:"courier_id,omitempty"`
	Status      domain.OrderStatusType `json:"status"`
	Total       float64                `json:"total"`
	Address     string                 `json:"delivery_address"`
	Latitude    *float64               `json:"latitude,omitempty"`
	Longitude   *float64               `json:"longitude,omitempty"`
	DeliveredAt *time.Time             `json:"delivered_at,omitempty"`
	Lines       []orderLineResponse    `json:"lines,omitempty"`
}

func newOrderResponse(order domain.Order) orderResponse {
	resp := orderResponse{
		ID:          order.ID,
		CreatedAt:   order.CreatedAt,
		ClientID:    order.ClientID,
		CourierID:   order.CourierID,
		Status:      order.Status,
		Total:       order.Total.InexactFloat64(),
		Address:     order.Address,
		DeliveredAt: order.DeliveredAt,
	}
	if order.Location != nil {
		resp.Latitude = &order.Location.Latitude
		resp.Longitude = &order.Location.Longitude
	}
	for _, line := range order.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.InexactFloat64(),
		})
	}
	return resp
}

func newOrderResponses(orders []domain.Order) []orderResponse {
	var responses = make([]orderResponse, len(orders))
	for i, order := range orders {
		responses[i] = newOrderResponse(order)
	}
	return responses
}
