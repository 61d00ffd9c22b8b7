// Package order models the order form submission and renders the
// notification text sent to shop administrators.
package order

import (
	"bytes"
	"encoding/json"
	"fmt"

	domerrors "github.com/shirasaka-flower/line-gateway/internal/errors"
)

// Form values with display mappings.
const (
	OrderTypeDelivery = "delivery"
	OrderTypePickup   = "pickup"

	RegionTakamatsu = "takamatsu"
	RegionOther     = "other"

	BudgetCustom = "custom"

	PaymentCredit = "credit"
	PaymentOnsite = "onsite"
)

// Submission is one order form post. Every field is optional at decode time.
type Submission struct {
	Name          Field `json:"name" validate:"required"`
	Phone         Field `json:"phone" validate:"required"`
	Date          Field `json:"date" validate:"required,datetime=2006-01-02"`
	OrderType     Field `json:"orderType" validate:"oneof=delivery pickup"`
	Region        Field `json:"region" validate:"omitempty,oneof=takamatsu other"`
	PickupTime    Field `json:"pickupTime" validate:"omitempty,datetime=15:04"`
	ProductType   Field `json:"productType" validate:"oneof=arrangement bouquet stand orchid"`
	Quantity      Field `json:"quantity" validate:"required,number"`
	Usage         Field `json:"usage"`
	Budget        Field `json:"budget" validate:"oneof=3300 5500 11000 custom"`
	BudgetCustom  Field `json:"budgetCustom" validate:"omitempty,number"`
	PaymentMethod Field `json:"paymentMethod" validate:"oneof=credit onsite"`
	Message       Field `json:"message"`
}

// Decode parses a request body. The body must be a JSON object; unknown keys
// are ignored.
func Decode(body []byte) (*Submission, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", domerrors.ErrMalformedBody)
	}

	var s Submission
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", domerrors.ErrMalformedBody, err)
	}
	return &s, nil
}

// IsCustomBudget reports whether the customer entered a free-form amount.
func (s *Submission) IsCustomBudget() bool {
	return s.Budget == BudgetCustom
}

// PaymentURL returns the hosted checkout link for a card payment on a fixed
// budget tier, if one is configured.
func (s *Submission) PaymentURL(links map[string]string) (string, bool) {
	if s.PaymentMethod != PaymentCredit || s.IsCustomBudget() {
		return "", false
	}
	link, ok := links[string(s.Budget)]
	return link, ok && link != ""
}
