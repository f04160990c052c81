package notify

import (
	"html/template"
	"strings"

	"github.com/pkg/errors"

	"github.com/transdom/transdom/internal/broker/messages"
)

var orderCreatedTmpl = template.Must(template.New("order_created").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>We received your order</h2>
  <p>Hello {{.SenderName}},</p>
  <p>Your shipment order <strong>{{.OrderNo}}</strong> has been received and is
  awaiting review.</p>
  <table cellpadding="6" cellspacing="0" border="0">
    <tr><td>Destination</td><td>{{.ReceiverCountry}} ({{.Zone}})</td></tr>
    <tr><td>Receiver</td><td>{{.ReceiverName}}</td></tr>
    {{if .Description}}<tr><td>Contents</td><td>{{.Description}}</td></tr>{{end}}
    {{if .Weight}}<tr><td>Weight</td><td>{{.Weight}} kg</td></tr>{{end}}
    {{if .AmountPaid}}<tr><td>Amount paid</td><td>NGN {{.AmountPaid}}</td></tr>{{end}}
  </table>
  <p>We will email you again once the order is approved.</p>
  <p>Transdom Express</p>
</body>
</html>`))

var statusChangedTmpl = template.Must(template.New("status_changed").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Order {{.OrderNo}} {{.Status}}</h2>
  <p>Hello {{.SenderName}},</p>
  {{if .Approved}}
  <p>Good news: your shipment order <strong>{{.OrderNo}}</strong> has been
  approved and will be processed shortly.</p>
  {{else}}
  <p>Unfortunately your shipment order <strong>{{.OrderNo}}</strong> was not
  approved. Reply to this email if you believe this is a mistake.</p>
  {{end}}
  <p>Transdom Express</p>
</body>
</html>`))

type statusChangedData struct {
	messages.OrderEvent
	Approved bool
}

// RenderOrderCreated builds the confirmation email for a freshly placed order.
func RenderOrderCreated(ev messages.OrderEvent) (subject, body string, err error) {
	var b strings.Builder
	if err := orderCreatedTmpl.Execute(&b, ev); err != nil {
		return "", "", errors.Wrap(err, "render order created email")
	}
	return "Your Transdom order " + ev.OrderNo, b.String(), nil
}

// RenderStatusChanged builds the approval or rejection email.
func RenderStatusChanged(ev messages.OrderEvent) (subject, body string, err error) {
	var b strings.Builder
	data := statusChangedData{OrderEvent: ev, Approved: ev.Event == messages.EventOrderApproved}
	if err := statusChangedTmpl.Execute(&b, data); err != nil {
		return "", "", errors.Wrap(err, "render status changed email")
	}
	if data.Approved {
		return "Order " + ev.OrderNo + " approved", b.String(), nil
	}
	return "Order " + ev.OrderNo + " update", b.String(), nil
}
