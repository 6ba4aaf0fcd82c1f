package picker

import (
	"location_saver_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// RegisterValidators adds the addresscategory rule to v.
func RegisterValidators(v *validator.Validator) error {
	return v.RegisterValidation("addresscategory", func(fl playground.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
}
