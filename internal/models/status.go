package models

import (
	"strings"

	"github.com/transdom/transdom/internal/errs"
)

// Status is the order lifecycle state. Stored lowercase; parsed
// case-insensitively at the boundary so storage never sees a free-form string.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusApproved:
		return StatusApproved, nil
	case StatusRejected:
		return StatusRejected, nil
	}
	return "", errs.Validationf("invalid status %q, must be one of: pending, approved, rejected", s)
}

func (s Status) String() string {
	return string(s)
}
