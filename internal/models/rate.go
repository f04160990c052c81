package models

import "github.com/shopspring/decimal"

// RateTier is one weight-price pair of a zone's rate card.
type RateTier struct {
	Weight float64         `json:"weight"`
	Price  decimal.Decimal `json:"price"`
}

// RateTable is the rate card for one destination zone. Zone codes are
// canonical uppercase. Tiers are unique by weight; no order is guaranteed at
// rest, consumers sort by weight before tier selection.
type RateTable struct {
	Zone     string     `json:"zone"`
	Currency string     `json:"currency"`
	Unit     string     `json:"unit"`
	Tiers    []RateTier `json:"tiers"`
}

// ResolvedPrice is the result of a tier lookup: the matched tier's weight and
// exact price. Formatting happens at the HTTP boundary only.
type ResolvedPrice struct {
	Zone     string
	Weight   float64
	Price    decimal.Decimal
	Currency string
}
