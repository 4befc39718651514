package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

type AppServices struct {
	OrderService    *OrderService
	DeliveryService *DeliveryService
	Notifier        *Notifier
}

func Factory(unitOfWork uow.UOW, broadcaster Broadcaster, l *logrus.Logger) (*AppServices, error) {
	notifier, notifierErr := NewNotifier(unitOfWork, broadcaster, l)
	if notifierErr != nil {
		return nil, fmt.Errorf("service factory: %s", notifierErr.Error())
	}

	orderService, orderServiceErr := NewOrderService(unitOfWork, notifier)
	if orderServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", orderServiceErr.Error())
	}

	deliveryService, deliveryServiceErr := NewDeliveryService(unitOfWork, notifier)
	if deliveryServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", deliveryServiceErr.Error())
	}

	return &AppServices{
		OrderService:    orderService,
		DeliveryService: deliveryService,
		Notifier:        notifier,
	}, nil
}
