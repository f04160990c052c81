package notify

import (
	"encoding/json"
	"log/slog"

	"github.com/transdom/transdom/internal/broker/messages"
)

// Notifier consumes order events and emails the sender. Delivery is
// best-effort: a failed send is logged and the event is still committed, there
// is no retry queue.
type Notifier struct {
	mail Sender
	log  *slog.Logger
}

func New(mail Sender, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{mail: mail, log: log}
}

func (n *Notifier) Handle(key, value []byte) error {
	var ev messages.OrderEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		n.log.Warn("skip malformed order event", "key", string(key), "err", err)
		return nil
	}
	if ev.SenderEmail == "" {
		n.log.Warn("skip order event without sender email", "order_no", ev.OrderNo)
		return nil
	}

	var subject, body string
	var err error
	switch ev.Event {
	case messages.EventOrderCreated:
		subject, body, err = RenderOrderCreated(ev)
	case messages.EventOrderApproved, messages.EventOrderRejected:
		subject, body, err = RenderStatusChanged(ev)
	default:
		n.log.Debug("ignore order event", "event", ev.Event, "order_no", ev.OrderNo)
		return nil
	}
	if err != nil {
		n.log.Error("render email failed", "order_no", ev.OrderNo, "err", err)
		return nil
	}

	if err := n.mail.Send(ev.SenderEmail, subject, body); err != nil {
		n.log.Error("send email failed", "order_no", ev.OrderNo, "to", ev.SenderEmail, "err", err)
		return nil
	}
	n.log.Info("email sent", "order_no", ev.OrderNo, "event", ev.Event, "to", ev.SenderEmail)
	return nil
}
