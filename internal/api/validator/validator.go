package validator

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/LWENA27/sms-getway/internal/metrics"
	"github.com/go-playground/validator/v10"
)

type Error struct {
	FailedField string
	Tag         string
	Value       interface{}
}

type IXValidator interface {
	Validate(endpoint string, data interface{}) []Error
}

type XValidator struct {
	validator *validator.Validate
	metrics   *metrics.Metrics
}

// NewXValidator reports failed fields by their JSON names.
func NewXValidator(validate *validator.Validate, metrics *metrics.Metrics) IXValidator {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &XValidator{
		validator: validate,
		metrics:   metrics,
	}
}

func (x XValidator) Validate(endpoint string, data interface{}) []Error {
	start := time.Now()

	var validationErrors []Error

	err := x.validator.Struct(data)
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, err := range errs {
			validationErrors = append(validationErrors, Error{
				FailedField: err.Field(),
				Tag:         err.Tag(),
				Value:       err.Value(),
			})
			x.metrics.RecordValidationError(err.Field(), err.Tag())
		}
	}

	outcome := "validation_success"
	if len(validationErrors) > 0 {
		outcome = "validation_error"
	}
	x.metrics.RecordValidationDuration(endpoint+"_"+outcome, time.Since(start))

	return validationErrors
}
