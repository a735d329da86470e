package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Custom validations
	_ = v.RegisterValidation("hexcolor6", validateHexColor)

	return &Validator{
		validate: v,
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColor.MatchString(fl.Field().String())
}
