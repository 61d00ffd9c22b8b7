package order

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed order_notification.tmpl
var notificationSource string

// The file's trailing newline is not part of the message.
var notificationTemplate = template.Must(
	template.New("order_notification").Parse(strings.TrimSuffix(notificationSource, "\n")),
)

// notificationView holds the already-rendered values substituted into the
// template. Values are inserted verbatim.
type notificationView struct {
	Name          string
	Phone         string
	Date          string
	ProductType   string
	TypeDetails   string
	Quantity      string
	Usage         string
	Budget        string
	PaymentMethod string
	Message       string
}

func (s *Submission) view() notificationView {
	return notificationView{
		Name:          s.Name.String(),
		Phone:         s.Phone.String(),
		Date:          s.Date.String(),
		ProductType:   ProductTypeDisplay(s.ProductType.String()),
		TypeDetails:   TypeDetails(s.OrderType.String(), s.Region.String(), s.PickupTime.String()),
		Quantity:      s.Quantity.String(),
		Usage:         s.Usage.String(),
		Budget:        BudgetDisplay(s.Budget.String(), s.BudgetCustom.String()),
		PaymentMethod: PaymentMethodDisplay(s.PaymentMethod.String()),
		Message:       MessageDisplay(s.Message.String()),
	}
}

// RenderNotification renders the administrator notification text.
// Output is deterministic for a given submission.
func (s *Submission) RenderNotification() (string, error) {
	var b strings.Builder
	if err := notificationTemplate.Execute(&b, s.view()); err != nil {
		return "", err
	}
	return b.String(), nil
}
