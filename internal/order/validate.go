package order

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
)

// MinCustomBudget is the smallest free-form budget the form accepts.
const MinCustomBudget = 2000

// Validator applies the form's rules on the server. It is used only when
// strict validation is enabled; the default contract accepts any payload.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator reporting fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns domerrors.ValidationErrors listing every failing field,
// or nil.
func (v *Validator) Validate(s *Submission) error {
	var out domerrors.ValidationErrors

	if err := v.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate order: %w", err)
		}
		for _, fe := range verrs {
			out = append(out, domerrors.NewValidationError(fe.Field(), ruleMessage(fe)))
		}
	}

	// Cross-field rules.
	switch s.OrderType {
	case OrderTypeDelivery:
		if s.Region == "" {
			out = append(out, domerrors.NewValidationError("region", "required for delivery"))
		}
	case OrderTypePickup:
		if s.PickupTime == "" {
			out = append(out, domerrors.NewValidationError("pickupTime", "required for pickup"))
		}
	}
	if s.IsCustomBudget() {
		if amount := ParseLeadingInt(s.BudgetCustom.String()); !(amount >= MinCustomBudget) {
			out = append(out, domerrors.NewValidationError("budgetCustom", fmt.Sprintf("must be at least %d", MinCustomBudget)))
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	case "number":
		return "must be a number"
	default:
		return "failed " + fe.Tag()
	}
}
