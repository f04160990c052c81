package rates

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/transdom/transdom/internal/cache"
	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

type Repository interface {
	UpsertRate(ctx context.Context, rate models.RateTable) (*models.RateTable, error)
	GetRateByZone(ctx context.Context, zone string) (*models.RateTable, error)
	ListRates(ctx context.Context, zone string) ([]*models.RateTable, error)
	ListZones(ctx context.Context) ([]string, error)
}

type Service struct {
	repo     Repository
	cache    cache.BytesCache
	cacheTTL time.Duration
}

func New(repo Repository, c cache.BytesCache, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, cache: c, cacheTTL: cacheTTL}
}

// Upsert stores the zone's rate card, replacing any existing card entirely.
// The zone is normalized to canonical uppercase before it hits storage.
func (s *Service) Upsert(ctx context.Context, rate models.RateTable) (*models.RateTable, error) {
	rate.Zone = CanonicalZone(rate.Zone)
	if rate.Zone == "" {
		return nil, errs.Validationf("zone is required")
	}
	if rate.Currency == "" {
		rate.Currency = "NGN"
	}
	if rate.Unit == "" {
		rate.Unit = "kg"
	}
	if len(rate.Tiers) == 0 {
		return nil, errs.Validationf("rates must contain at least one weight-price pair")
	}

	seen := make(map[float64]struct{}, len(rate.Tiers))
	for _, t := range rate.Tiers {
		if t.Weight <= 0 {
			return nil, errs.Validationf("tier weight must be > 0, got %v", t.Weight)
		}
		if t.Price.IsNegative() {
			return nil, errs.Validationf("tier price must not be negative, got %s", t.Price)
		}
		if _, dup := seen[t.Weight]; dup {
			return nil, errs.Validationf("duplicate tier weight %v", t.Weight)
		}
		seen[t.Weight] = struct{}{}
	}

	stored, err := s.repo.UpsertRate(ctx, rate)
	if err != nil {
		return nil, err
	}

	// Drop the cached card so the next lookup sees the new tiers. Best-effort.
	if s.cache != nil {
		_ = s.cache.Del(ctx, rateKey(stored.Zone))
	}
	return stored, nil
}

// List returns all rate cards, optionally filtered to one zone.
func (s *Service) List(ctx context.Context, zone string) ([]*models.RateTable, error) {
	out, err := s.repo.ListRates(ctx, CanonicalZone(zone))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errs.NotFoundf("no shipping rates found")
	}
	return out, nil
}

func (s *Service) Zones(ctx context.Context) ([]string, error) {
	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return nil, errs.NotFoundf("no zones found")
	}
	sort.Strings(zones)
	return zones, nil
}

// ResolvePrice picks the smallest tier whose weight accommodates the shipment.
// When the shipment is heavier than every tier, the largest tier is charged:
// the top rate applies rather than rejecting the order.
func (s *Service) ResolvePrice(ctx context.Context, zone string, weight float64) (*models.ResolvedPrice, error) {
	if weight <= 0 {
		return nil, errs.Validationf("weight must be greater than 0")
	}

	rate, err := s.getRate(ctx, CanonicalZone(zone))
	if err != nil {
		return nil, err
	}
	if len(rate.Tiers) == 0 {
		return nil, errs.NotFoundf("no rates defined for zone %q", rate.Zone)
	}

	tiers := append([]models.RateTier(nil), rate.Tiers...)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Weight < tiers[j].Weight })

	matched := tiers[len(tiers)-1]
	for _, t := range tiers {
		if t.Weight >= weight {
			matched = t
			break
		}
	}

	return &models.ResolvedPrice{
		Zone:     rate.Zone,
		Weight:   matched.Weight,
		Price:    matched.Price,
		Currency: rate.Currency,
	}, nil
}

// getRate reads through the cache. The cache is best-effort: any miss or
// error falls back to storage.
func (s *Service) getRate(ctx context.Context, zone string) (*models.RateTable, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, rateKey(zone)); err == nil && ok {
			var rate models.RateTable
			if json.Unmarshal(b, &rate) == nil {
				return &rate, nil
			}
		}
	}

	rate, err := s.repo.GetRateByZone(ctx, zone)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if b, err := json.Marshal(rate); err == nil {
			_ = s.cache.Set(ctx, rateKey(zone), b, s.cacheTTL)
		}
	}
	return rate, nil
}

func CanonicalZone(zone string) string {
	return strings.ToUpper(strings.TrimSpace(zone))
}

func rateKey(zone string) string {
	return "rates:" + zone
}
