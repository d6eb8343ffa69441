package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct проверяет структуру запроса по validate тегам
func ValidateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("field %s failed on %s", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}
