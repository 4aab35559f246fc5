package grade

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/supinter/ums/core"
)

var (
	semesterTag  = "semester"
	semesterText = "semester must be 1 or 2"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(semesterTag, func(fl validator.FieldLevel) bool {
		s := fl.Field().Int()
		return s == 1 || s == 2
	})
	core.RegisterCustomTranslation(validate, translator, semesterTag, semesterText)
}
