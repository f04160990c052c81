package pgstore

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

func (s *Storage) InsertPayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	err := s.db.QueryRow(ctx, `
INSERT INTO payments (payment_ref, order_no, amount, currency, method, user_email, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id, created_at
`, p.PaymentRef, p.OrderNo, p.Amount, p.Currency, p.Method, p.UserEmail, time.Now().UTC()).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflictf("payment %s already logged", p.PaymentRef)
		}
		return nil, errs.Storagef(err, "insert payment")
	}
	return p, nil
}

func (s *Storage) ListPaymentsByUser(ctx context.Context, userEmail string) ([]*models.Payment, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, payment_ref, order_no, amount, currency, method, user_email, created_at
FROM payments WHERE user_email = $1 ORDER BY created_at DESC
`, userEmail)
	if err != nil {
		return nil, errors.Wrap(err, "select payments")
	}
	defer rows.Close()

	out := []*models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.PaymentRef, &p.OrderNo, &p.Amount, &p.Currency, &p.Method, &p.UserEmail, &p.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan payment")
		}
		out = append(out, &p)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
