package pgstore

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS shipping_rates (
  id BIGSERIAL PRIMARY KEY,
  zone TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'NGN',
  unit TEXT NOT NULL DEFAULT 'kg',
  tiers JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  UNIQUE (zone)
)`,
		`
CREATE TABLE IF NOT EXISTS counters (
  key TEXT PRIMARY KEY,
  seq BIGINT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS orders (
  id BIGSERIAL PRIMARY KEY,
  order_no TEXT NOT NULL,
  zone TEXT NOT NULL,
  status TEXT NOT NULL,
  sender_name TEXT NOT NULL,
  sender_phone TEXT NOT NULL DEFAULT '',
  sender_address TEXT NOT NULL DEFAULT '',
  sender_city TEXT NOT NULL DEFAULT '',
  sender_state TEXT NOT NULL DEFAULT '',
  sender_country TEXT NOT NULL DEFAULT '',
  sender_email TEXT NOT NULL,
  receiver_name TEXT NOT NULL,
  receiver_phone TEXT NOT NULL DEFAULT '',
  receiver_address TEXT NOT NULL DEFAULT '',
  receiver_city TEXT NOT NULL DEFAULT '',
  receiver_state TEXT NOT NULL DEFAULT '',
  receiver_country TEXT NOT NULL DEFAULT '',
  receiver_post_code TEXT NOT NULL DEFAULT '',
  shipment_description TEXT NOT NULL DEFAULT '',
  shipment_quantity INT NOT NULL DEFAULT 1,
  shipment_value NUMERIC NOT NULL DEFAULT 0,
  shipment_weight DOUBLE PRECISION NOT NULL DEFAULT 0,
  amount_paid NUMERIC NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL,
  UNIQUE (order_no)
)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_sender_email_created_at ON orders(sender_email, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`
CREATE TABLE IF NOT EXISTS order_logs (
  id BIGSERIAL PRIMARY KEY,
  order_no TEXT NOT NULL,
  activity_type TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  actor_email TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_order_logs_order_no_created_at ON order_logs(order_no, created_at DESC)`,
		`
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  email TEXT NOT NULL,
  firstname TEXT NOT NULL DEFAULT '',
  lastname TEXT NOT NULL DEFAULT '',
  gender TEXT NOT NULL DEFAULT '',
  phone_number TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  referral_code TEXT NOT NULL DEFAULT '',
  photo_url TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  UNIQUE (email)
)`,
		`
CREATE TABLE IF NOT EXISTS admins (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  UNIQUE (name)
)`,
		`
CREATE TABLE IF NOT EXISTS payments (
  id BIGSERIAL PRIMARY KEY,
  payment_ref TEXT NOT NULL,
  order_no TEXT NOT NULL DEFAULT '',
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'NGN',
  method TEXT NOT NULL DEFAULT '',
  user_email TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  UNIQUE (payment_ref)
)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_user_email ON payments(user_email)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
