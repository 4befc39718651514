package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup       = "/api"
	OrdersRoute      = "/orders"
	MyOrdersRoute    = "/orders/my-orders"
	OrderRoute       = "/orders/:id"
	OrderCancelRoute = "/orders/:id/cancel"
	OrderStatusRoute = "/orders/:id/status"

	AvailableDeliveriesRoute = "/delivery/available"
	MyDeliveriesRoute        = "/delivery/my-deliveries"
	DeliveryAcceptRoute      = "/delivery/:id/accept"
	DeliveryRefuseRoute      = "/delivery/:id/refuse"
	DeliveryCancelRoute      = "/delivery/:id/cancel"
	DeliveryLocationRoute    = "/delivery/:id/location"
)

type RouterArgs struct {
	Logger          *logrus.Logger
	OrderService    OrderServicer
	DeliveryService DeliveryServicer
	JWTSecretKey    []byte
}

func New(args RouterArgs) *gin.Engine {
	if vErr := registerValidators(); vErr != nil && args.Logger != nil {
		args.Logger.WithError(vErr).Error("validator registration failed")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	ordersHandler := NewOrdersHandler(args.OrderService)
	deliveryHandler := NewDeliveryHandler(args.DeliveryService)

	api := r.Group(RouteGroup)
	api.Use(middlewares.AuthRequired(args.JWTSecretKey))

	api.POST(OrdersRoute, middlewares.RoleRequired(domain.RoleClient), ordersHandler.Create)
	api.GET(MyOrdersRoute, middlewares.RoleRequired(domain.RoleClient), ordersHandler.Index)
	api.GET(OrderRoute, ordersHandler.Show)
	api.POST(OrderCancelRoute, middlewares.RoleRequired(domain.RoleClient), ordersHandler.Cancel)
	api.PUT(OrderStatusRoute, middlewares.RoleRequired(domain.RoleMerchant, domain.RoleCourier, domain.RoleAdmin), ordersHandler.UpdateStatus)

	courierOnly := middlewares.RoleRequired(domain.RoleCourier)
	api.GET(AvailableDeliveriesRoute, courierOnly, deliveryHandler.Available)
	api.GET(MyDeliveriesRoute, courierOnly, deliveryHandler.MyDeliveries)
	api.POST(DeliveryAcceptRoute, courierOnly, deliveryHandler.Accept)
	api.POST(DeliveryRefuseRoute, courierOnly, deliveryHandler.Refuse)
	api.POST(DeliveryCancelRoute, courierOnly, deliveryHandler.Cancel)
	api.POST(DeliveryLocationRoute, courierOnly, deliveryHandler.UpdateLocation)
	return r
}
