package messages

import "time"

// Event types published to the order events topic.
const (
	EventOrderCreated  = "order_created"
	EventOrderApproved = "order_approved"
	EventOrderRejected = "order_rejected"
)

// OrderEvent is the payload for every order lifecycle message. The key of the
// kafka message is the order number, so events for one order stay in order.
type OrderEvent struct {
	Event   string    `json:"event"`
	OrderNo string    `json:"order_no"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`

	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`

	ReceiverName    string `json:"receiver_name"`
	ReceiverCountry string `json:"receiver_country"`

	Zone        string  `json:"zone"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	AmountPaid  string  `json:"amount_paid,omitempty"`
}
