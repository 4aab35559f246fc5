package finance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/supinter/ums/core"
)

var (
	txTypeTag  = "txtype"
	txTypeText = "type must be INCOME or EXPENSE"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(txTypeTag, func(fl validator.FieldLevel) bool {
		t := fl.Field().String()
		return t == TypeIncome || t == TypeExpense
	})
	core.RegisterCustomTranslation(validate, translator, txTypeTag, txTypeText)
}
