package api

import (
	"fmt"
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/fsdevblog/groph-delivery/internal/domain"
)

// validateOrderStatus accepts the transition input labels, including the
// legacy "refused" alias the oneof tag would miss on future additions.
func validateOrderStatus(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return domain.ValidStatus(domain.OrderStatusType(fl.Field().String()))
}

func registerValidators() error {
	v, _ := binding.Validator.Engine().(*validator.Validate)
	if err := v.RegisterValidation("order_status", validateOrderStatus); err != nil {
		return fmt.Errorf("validator registration: %s", err.Error())
	}
	return nil
}
