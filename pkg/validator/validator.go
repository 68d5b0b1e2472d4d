package validator

import (
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", e.FailedField, e.Tag)
}

var validate = validator.New()

func init() {
	// uuid_required rejects the zero UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	// decimals validate as float64 so gte/gt/lte tags apply to money fields
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// money rejects amounts finer than a cent; columns are numeric(12,2).
	// Decimals reach here as float64 through the type func above, which is
	// exact for every value the columns can hold.
	validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		var d decimal.Decimal
		switch v := fl.Field(); v.Kind() {
		case reflect.Float32, reflect.Float64:
			d = decimal.NewFromFloat(v.Float())
		default:
			dec, ok := v.Interface().(decimal.Decimal)
			if !ok {
				return false
			}
			d = dec
		}
		return d.Equal(d.Round(2))
	})

	// isodate accepts YYYY-MM-DD strings (including named string types)
	validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
		}
		for _, err := range verrs {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// First returns the first validation failure of data, or nil.
func First(data interface{}) *ErrorResponse {
	if errs := ValidateStruct(data); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
