package lib

import (
	"github.com/go-playground/validator/v10"
)

// NewValidator returns validator with "appid" tag registered
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("appid", func(fl validator.FieldLevel) bool {
		return IsValidAppID(fl.Field().String())
	})

	return v
}
