package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/supinter/ums/core"
)

var (
	genderTag  = "gender"
	genderText = "gender must be M or F"

	statusTag  = "status"
	statusText = "status must be affecté or non_affecté"
)

// InitValidators registers the student validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(genderTag, func(fl validator.FieldLevel) bool {
		g := fl.Field().String()
		return g == GenderMale || g == GenderFemale
	})
	core.RegisterCustomTranslation(validate, translator, genderTag, genderText)

	_ = validate.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == StatusAssigned || s == StatusUnassigned
	})
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}
