package pgstore

import (
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/transdom/transdom/internal/models"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.OrderNo, &o.Zone, &o.Status,
		&o.Sender.Name, &o.Sender.Phone, &o.Sender.Address, &o.Sender.City, &o.Sender.State, &o.Sender.Country, &o.Sender.Email,
		&o.Receiver.Name, &o.Receiver.Phone, &o.Receiver.Address, &o.Receiver.City, &o.Receiver.State, &o.Receiver.Country, &o.Receiver.Postcode,
		&o.Shipment.Description, &o.Shipment.Quantity, &o.Shipment.Value, &o.Shipment.Weight,
		&o.AmountPaid, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	out := []*models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		out = append(out, o)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
