// Package insurance computes the insurance fee for a declared shipment value.
//
// Two policies exist and disagree, so the active one is picked explicitly in
// configuration: a fixed bracket table, or a percentage of the declared value
// with a minimum fee floor.
package insurance

import (
	"github.com/shopspring/decimal"

	"github.com/transdom/transdom/internal/errs"
)

type Policy string

const (
	PolicyBracket Policy = "bracket"
	PolicyPercent Policy = "percent"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyBracket:
		return PolicyBracket, nil
	case PolicyPercent:
		return PolicyPercent, nil
	}
	return "", errs.Validationf("unknown insurance policy %q, must be bracket or percent", s)
}

type Config struct {
	Policy Policy

	// Percent policy only.
	Rate   decimal.Decimal // default 0.02
	MinFee decimal.Decimal // default 500
}

func DefaultConfig(p Policy) Config {
	return Config{
		Policy: p,
		Rate:   decimal.RequireFromString("0.02"),
		MinFee: decimal.NewFromInt(500),
	}
}

type Calculator struct {
	cfg Config
}

func New(cfg Config) *Calculator {
	def := DefaultConfig(cfg.Policy)
	if cfg.Rate.IsZero() {
		cfg.Rate = def.Rate
	}
	if cfg.MinFee.IsZero() {
		cfg.MinFee = def.MinFee
	}
	return &Calculator{cfg: cfg}
}

func (c *Calculator) Policy() Policy {
	return c.cfg.Policy
}

// Quote returns the fee for a declared value. Pure; malformed input is
// treated as <= 0.
func (c *Calculator) Quote(declaredValue decimal.Decimal) decimal.Decimal {
	if c.cfg.Policy == PolicyPercent {
		return c.percentFee(declaredValue)
	}
	return bracketFee(declaredValue)
}

func (c *Calculator) percentFee(v decimal.Decimal) decimal.Decimal {
	if v.LessThanOrEqual(decimal.Zero) {
		return c.cfg.MinFee
	}
	fee := v.Mul(c.cfg.Rate)
	if fee.LessThan(c.cfg.MinFee) {
		return c.cfg.MinFee
	}
	return fee
}

// bracket is one value range of the fixed fee table; the upper bound is
// inclusive.
type bracket struct {
	upTo decimal.Decimal
	fee  decimal.Decimal
}

var brackets = []bracket{
	{decimal.NewFromInt(100_000), decimal.NewFromInt(5_000)},
	{decimal.NewFromInt(200_000), decimal.NewFromInt(7_500)},
	{decimal.NewFromInt(500_000), decimal.NewFromInt(10_000)},
	{decimal.NewFromInt(1_000_000), decimal.NewFromInt(20_000)},
	{decimal.NewFromInt(2_000_000), decimal.NewFromInt(30_000)},
	{decimal.NewFromInt(5_000_000), decimal.NewFromInt(120_000)},
	{decimal.NewFromInt(10_000_000), decimal.NewFromInt(240_000)},
}

// bracketCap is the fee above the last bracket: values over 10m stay at the
// top fee, they are never rejected.
var bracketCap = decimal.NewFromInt(240_000)

func bracketFee(v decimal.Decimal) decimal.Decimal {
	if v.LessThanOrEqual(decimal.Zero) {
		return brackets[0].fee
	}
	for _, b := range brackets {
		if v.LessThanOrEqual(b.upTo) {
			return b.fee
		}
	}
	return bracketCap
}
