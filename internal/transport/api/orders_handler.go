package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/service"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type createOrderLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int32 `json:"quantity" binding:"required,min=1"`
}

type createOrderRequest struct {
	Lines         []createOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
	Address       string                   `json:"delivery_address" binding:"required"`
	PaymentMethod domain.PaymentMethodType `json:"payment_method" binding:"required,oneof=cash card wallet"`
	Latitude      *float64                 `json:"latitude"`
	Longitude     *float64                 `json:"longitude"`
}

// Create POST RouteGroup + OrdersRoute.
func (o *OrdersHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": bindErr.Error(), "code": "bad_request"})
		return
	}

	args := service.CreateOrderArgs{
		ClientID:      getUserIDFromContext(c),
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
	}
	for _, line := range req.Lines {
		args.Lines = append(args.Lines, service.OrderLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	if req.Latitude != nil && req.Longitude != nil {
		args.Location = &domain.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(reqCtx, args)
	if createErr != nil {
		abortWithServiceError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, newOrderResponse(*order))
}

// Index GET RouteGroup + MyOrdersRoute.
func (o *OrdersHandler) Index(c *gin.Context) {
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.GetByClientID(reqCtx, getUserIDFromContext(c), status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponses(orders))
}

// Show GET RouteGroup + OrderRoute.
func (o *OrdersHandler) Show(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.GetByID(reqCtx, orderID, getUserIDFromContext(c), getRoleFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order))
}

// Cancel POST RouteGroup + OrderCancelRoute. Client-side cancellation,
// permitted only while the order is pending.
func (o *OrdersHandler) Cancel(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.Cancel(reqCtx, getUserIDFromContext(c), orderID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order))
}

type updateStatusRequest struct {
	Status domain.OrderStatusType `json:"status" binding:"required,order_status"`
}

// UpdateStatus PUT RouteGroup + OrderStatusRoute. Merchant, courier and
// admin transitions; the state machine is enforced in the service.
func (o *OrdersHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": bindErr.Error(), "code": "bad_request"})
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := o.orderSvs.UpdateStatus(reqCtx, service.UpdateStatusArgs{
		OrderID: orderID,
		ActorID: getUserIDFromContext(c),
		Role:    getRoleFromContext(c),
		Target:  req.Status,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order))
}
