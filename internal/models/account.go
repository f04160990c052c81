package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Gender       string    `json:"gender,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Country      string    `json:"country,omitempty"`
	ReferralCode string    `json:"referral_code,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Admin struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Payment struct {
	ID         int64           `json:"id"`
	PaymentRef string          `json:"payment_ref"`
	OrderNo    string          `json:"order_no,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Method     string          `json:"method,omitempty"`
	UserEmail  string          `json:"user_email"`
	CreatedAt  time.Time       `json:"created_at"`
}
