package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-delivery/internal/domain"
)

type DeliveryHandler struct {
	deliverySvs DeliveryServicer
}

func NewDeliveryHandler(deliverySvs DeliveryServicer) *DeliveryHandler {
	return &DeliveryHandler{
		deliverySvs: deliverySvs,
	}
}

type availableOrderResponse struct {
	Order             orderResponse `json:"order"`
	MerchantName      string        `json:"merchant_name"`
	MerchantAddress   string        `json:"merchant_address"`
	MerchantLatitude  *float64      `json:"merchant_latitude,omitempty"`
	MerchantLongitude *float64      `json:"merchant_longitude,omitempty"`
	DistanceKM        *float64      `json:"distance_km,omitempty"`
}

// Available GET RouteGroup + AvailableDeliveriesRoute. Optional lat/lng
// query parameters sort the result by distance to the pickup merchant.
func (d *DeliveryHandler) Available(c *gin.Context) {
	coords, ok := parseCoordsQuery(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	available, err := d.deliverySvs.ListAvailable(reqCtx, coords)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	var response = make([]availableOrderResponse, len(available))
	for i, a := range available {
		response[i] = availableOrderResponse{
			Order:           newOrderResponse(a.Order),
			MerchantName:    a.MerchantName,
			MerchantAddress: a.MerchantAddress,
			DistanceKM:      a.DistanceKM,
		}
		if a.MerchantLocation != nil {
			response[i].MerchantLatitude = &a.MerchantLocation.Latitude
			response[i].MerchantLongitude = &a.MerchantLocation.Longitude
		}
	}

	c.JSON(http.StatusOK, response)
}

// Accept POST RouteGroup + DeliveryAcceptRoute. At most one courier wins
// a concurrent claim; losers get 409 order_unavailable and should
// refresh the available list.
func (d *DeliveryHandler) Accept(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := d.deliverySvs.Accept(reqCtx, orderID, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order))
}

// Refuse POST RouteGroup + DeliveryRefuseRoute. Declines an unclaimed order.
func (d *DeliveryHandler) Refuse(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := d.deliverySvs.Refuse(reqCtx, orderID)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order))
}

// Cancel POST RouteGroup + DeliveryCancelRoute. Cancels a delivery the
// courier currently holds.
func (d *DeliveryHandler) Cancel(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := d.deliverySvs.CancelClaimed(reqCtx, orderID, getUserIDFromContext(c))
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponse(*order))
}

// MyDeliveries GET RouteGroup + MyDeliveriesRoute.
func (d *DeliveryHandler) MyDeliveries(c *gin.Context) {
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := d.deliverySvs.ListByCourier(reqCtx, getUserIDFromContext(c), status)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newOrderResponses(orders))
}

type updateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// UpdateLocation POST RouteGroup + DeliveryLocationRoute. Stores the
// courier's position and broadcasts it for the client's tracking map.
func (d *DeliveryHandler) UpdateLocation(c *gin.Context) {
	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updateLocationRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": bindErr.Error(), "code": "bad_request"})
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	err := d.deliverySvs.UpdateLocation(reqCtx, orderID, getUserIDFromContext(c), domain.Coordinates{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "location updated"})
}

// parseCoordsQuery reads optional lat/lng query parameters; both must be
// present to count, a lone one is ignored like in the legacy API.
func parseCoordsQuery(c *gin.Context) (*domain.Coordinates, bool) {
	latRaw, latOK := c.GetQuery("lat")
	lngRaw, lngOK := c.GetQuery("lng")
	if !latOK || !lngOK {
		return nil, true
	}

	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lng, lngErr := strconv.ParseFloat(lngRaw, 64)
	if latErr != nil || lngErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid coordinates", "code": "bad_request"})
		return nil, false
	}
	return &domain.Coordinates{Latitude: lat, Longitude: lng}, true
}
