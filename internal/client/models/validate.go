package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/expensesheets/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Check runs the struct tag rules on v. Field failures are folded into one
// ErrValidation message naming each field and its rule.
func Check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(parts, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "uuid":
		return name + " must be a UUID"
	case "gt":
		return name + " must be greater than " + fe.Param()
	case "datetime":
		return name + " must match " + fe.Param()
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}
