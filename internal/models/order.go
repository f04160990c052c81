package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Party struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type Sender struct {
	Party
	Email string `json:"email"`
}

type Receiver struct {
	Party
	Postcode string `json:"postcode"`
}

type Shipment struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
	Weight      float64         `json:"weight"`
}

type Order struct {
	ID         int64           `json:"id"`
	OrderNo    string          `json:"order_no"`
	Zone       string          `json:"zone"`
	Status     Status          `json:"status"`
	Sender     Sender          `json:"sender"`
	Receiver   Receiver        `json:"receiver"`
	Shipment   Shipment        `json:"shipment"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	CreatedAt  time.Time       `json:"created_at"`
}

// OrderCreateInput carries a validated order submission. The order number and
// status are assigned by the orders service, never by the caller.
type OrderCreateInput struct {
	Zone       string
	Sender     Sender
	Receiver   Receiver
	Shipment   Shipment
	AmountPaid decimal.Decimal
}
