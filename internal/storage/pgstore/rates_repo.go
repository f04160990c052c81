package pgstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

// UpsertRate fully replaces the zone's rate card: tiers, currency and unit are
// overwritten, never merged. Idempotent for identical input.
func (s *Storage) UpsertRate(ctx context.Context, rate models.RateTable) (*models.RateTable, error) {
	tiers, err := json.Marshal(rate.Tiers)
	if err != nil {
		return nil, errors.Wrap(err, "marshal tiers")
	}

	var stored models.RateTable
	var storedTiers []byte
	err = s.db.QueryRow(ctx, `
INSERT INTO shipping_rates (zone, currency, unit, tiers, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (zone)
DO UPDATE SET currency = EXCLUDED.currency, unit = EXCLUDED.unit,
              tiers = EXCLUDED.tiers, updated_at = EXCLUDED.updated_at
RETURNING zone, currency, unit, tiers
`, rate.Zone, rate.Currency, rate.Unit, tiers, time.Now().UTC()).
		Scan(&stored.Zone, &stored.Currency, &stored.Unit, &storedTiers)
	if err != nil {
		return nil, errors.Wrap(err, "upsert rate")
	}

	if err := json.Unmarshal(storedTiers, &stored.Tiers); err != nil {
		return nil, errors.Wrap(err, "unmarshal tiers")
	}
	return &stored, nil
}

func (s *Storage) GetRateByZone(ctx context.Context, zone string) (*models.RateTable, error) {
	var rate models.RateTable
	var tiers []byte
	err := s.db.QueryRow(ctx, `
SELECT zone, currency, unit, tiers FROM shipping_rates WHERE zone = $1
`, zone).Scan(&rate.Zone, &rate.Currency, &rate.Unit, &tiers)
	if err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("zone %q not found", zone)
		}
		return nil, errors.Wrap(err, "select rate")
	}

	if err := json.Unmarshal(tiers, &rate.Tiers); err != nil {
		return nil, errors.Wrap(err, "unmarshal tiers")
	}
	return &rate, nil
}

// ListRates returns all rate cards, or just one zone's when zone is non-empty.
func (s *Storage) ListRates(ctx context.Context, zone string) ([]*models.RateTable, error) {
	q := `SELECT zone, currency, unit, tiers FROM shipping_rates ORDER BY zone`
	args := []any{}
	if zone != "" {
		q = `SELECT zone, currency, unit, tiers FROM shipping_rates WHERE zone = $1 ORDER BY zone`
		args = append(args, zone)
	}

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select rates")
	}
	defer rows.Close()

	var out []*models.RateTable
	for rows.Next() {
		var rate models.RateTable
		var tiers []byte
		if err := rows.Scan(&rate.Zone, &rate.Currency, &rate.Unit, &tiers); err != nil {
			return nil, errors.Wrap(err, "scan rate")
		}
		if err := json.Unmarshal(tiers, &rate.Tiers); err != nil {
			return nil, errors.Wrap(err, "unmarshal tiers")
		}
		out = append(out, &rate)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) ListZones(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT zone FROM shipping_rates ORDER BY zone`)
	if err != nil {
		return nil, errors.Wrap(err, "select zones")
	}
	defer rows.Close()

	var zones []string
	for rows.Next() {
		var z string
		if err := rows.Scan(&z); err != nil {
			return nil, errors.Wrap(err, "scan zone")
		}
		zones = append(zones, z)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return zones, nil
}
