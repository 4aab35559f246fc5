package archive

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/supinter/ums/core"
)

var (
	docTypeTag  = "doctype"
	docTypeText = "unknown document type"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(docTypeTag, func(fl validator.FieldLevel) bool {
		return IsDocumentType(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, docTypeTag, docTypeText)
}
