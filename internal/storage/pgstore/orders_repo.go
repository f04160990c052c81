package pgstore

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

const orderColumns = `
  id, order_no, zone, status,
  sender_name, sender_phone, sender_address, sender_city, sender_state, sender_country, sender_email,
  receiver_name, receiver_phone, receiver_address, receiver_city, receiver_state, receiver_country, receiver_post_code,
  shipment_description, shipment_quantity, shipment_value, shipment_weight,
  amount_paid, created_at`

// NextSeq atomically increments the named counter and returns the new value.
// The read-modify-write is a single SQL statement, so two concurrent callers
// can never observe the same value. On failure the caller's submission fails;
// values are never fabricated or cached in process.
func (s *Storage) NextSeq(ctx context.Context, key string) (int64, error) {
	var seq int64
	err := s.db.QueryRow(ctx, `
INSERT INTO counters (key, seq) VALUES ($1, 1)
ON CONFLICT (key) DO UPDATE SET seq = counters.seq + 1
RETURNING seq
`, key).Scan(&seq)
	if err != nil {
		return 0, errs.Storagef(err, "increment counter %q", key)
	}
	return seq, nil
}

func (s *Storage) InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	err := s.db.QueryRow(ctx, `
INSERT INTO orders (
  order_no, zone, status,
  sender_name, sender_phone, sender_address, sender_city, sender_state, sender_country, sender_email,
  receiver_name, receiver_phone, receiver_address, receiver_city, receiver_state, receiver_country, receiver_post_code,
  shipment_description, shipment_quantity, shipment_value, shipment_weight,
  amount_paid, created_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
RETURNING id, created_at
`,
		o.OrderNo, o.Zone, o.Status,
		o.Sender.Name, o.Sender.Phone, o.Sender.Address, o.Sender.City, o.Sender.State, o.Sender.Country, o.Sender.Email,
		o.Receiver.Name, o.Receiver.Phone, o.Receiver.Address, o.Receiver.City, o.Receiver.State, o.Receiver.Country, o.Receiver.Postcode,
		o.Shipment.Description, o.Shipment.Quantity, o.Shipment.Value, o.Shipment.Weight,
		o.AmountPaid, time.Now().UTC(),
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflictf("order %s already exists", o.OrderNo)
		}
		return nil, errs.Storagef(err, "insert order")
	}
	return o, nil
}

func (s *Storage) GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_no = $1`, orderNo)
	o, err := scanOrder(row)
	if err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("order %s not found", orderNo)
		}
		return nil, errors.Wrap(err, "select order")
	}
	return o, nil
}

// GetOrderForSender fetches an order only when it belongs to the given sender.
// Ownership is keyed on sender_email, the single canonical owner field.
func (s *Storage) GetOrderForSender(ctx context.Context, orderNo, senderEmail string) (*models.Order, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_no = $1 AND sender_email = $2`,
		orderNo, senderEmail)
	o, err := scanOrder(row)
	if err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("order %s not found", orderNo)
		}
		return nil, errors.Wrap(err, "select order")
	}
	return o, nil
}

func (s *Storage) ListOrdersBySender(ctx context.Context, senderEmail string) ([]*models.Order, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE sender_email = $1 ORDER BY created_at DESC`,
		senderEmail)
	if err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListOrders is the admin view: optional status and sender filters, newest first.
func (s *Storage) ListOrders(ctx context.Context, status models.Status, senderEmail string, limit int) ([]*models.Order, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	if status != "" {
		args = append(args, status)
		q += ` AND status = $` + itoa(len(args))
	}
	if senderEmail != "" {
		args = append(args, senderEmail)
		q += ` AND sender_email = $` + itoa(len(args))
	}
	args = append(args, limit)
	q += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select orders")
	}
	defer rows.Close()
	return collectOrders(rows)
}

// UpdateOrderStatus overwrites the status unconditionally and returns the
// updated order. Re-applying the same status is allowed.
func (s *Storage) UpdateOrderStatus(ctx context.Context, orderNo string, status models.Status) (*models.Order, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE orders SET status = $2 WHERE order_no = $1 RETURNING `+orderColumns,
		orderNo, status)
	o, err := scanOrder(row)
	if err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("order %s not found", orderNo)
		}
		return nil, errs.Storagef(err, "update order status")
	}
	return o, nil
}

func (s *Storage) DeleteAllOrders(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, errs.Storagef(err, "delete orders")
	}
	return tag.RowsAffected(), nil
}

func (s *Storage) DeleteOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	row := s.db.QueryRow(ctx, `DELETE FROM orders WHERE id = $1 RETURNING `+orderColumns, id)
	o, err := scanOrder(row)
	if err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("order with ID %d not found", id)
		}
		return nil, errs.Storagef(err, "delete order")
	}
	return o, nil
}
