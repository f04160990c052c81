package httpapi

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
	"github.com/transdom/transdom/internal/money"
)

type rateTierPayload struct {
	Weight float64         `json:"weight"`
	Price  decimal.Decimal `json:"price"`
}

type addRatesRequest struct {
	Zone     string            `json:"zone"`
	Currency string            `json:"currency,omitempty"`
	Unit     string            `json:"unit,omitempty"`
	Rates    []rateTierPayload `json:"rates"`
}

func (s *Server) handleAddRates(w http.ResponseWriter, r *http.Request) {
	var req addRatesRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	tiers := make([]models.RateTier, 0, len(req.Rates))
	for _, t := range req.Rates {
		tiers = append(tiers, models.RateTier{Weight: t.Weight, Price: t.Price})
	}

	stored, err := s.rates.Upsert(r.Context(), models.RateTable{
		Zone:     req.Zone,
		Currency: req.Currency,
		Unit:     req.Unit,
		Tiers:    tiers,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stored)
}

func (s *Server) handleListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.rates.List(r.Context(), r.URL.Query().Get("zone"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rates)
}

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.rates.Zones(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"zones": zones})
}

type priceResponse struct {
	Zone           string          `json:"zone"`
	Weight         float64         `json:"weight"`
	MatchedWeight  float64         `json:"matched_weight"`
	Price          decimal.Decimal `json:"price"`
	PriceFormatted string          `json:"price_formatted"`
	Currency       string          `json:"currency"`
}

func (s *Server) handleResolvePrice(w http.ResponseWriter, r *http.Request) {
	zone := r.URL.Query().Get("zone")
	weightStr := r.URL.Query().Get("weight")
	weight, err := strconv.ParseFloat(weightStr, 64)
	if err != nil {
		s.respondError(w, r, errs.Validationf("weight %q is not a number", weightStr))
		return
	}

	resolved, err := s.rates.ResolvePrice(r.Context(), zone, weight)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, priceResponse{
		Zone:           resolved.Zone,
		Weight:         weight,
		MatchedWeight:  resolved.Weight,
		Price:          resolved.Price,
		PriceFormatted: money.FormatPrice(resolved.Price),
		Currency:       resolved.Currency,
	})
}

type insuranceQuoteResponse struct {
	DeclaredValue decimal.Decimal `json:"declared_value"`
	Fee           decimal.Decimal `json:"fee"`
	FeeFormatted  string          `json:"fee_formatted"`
	Policy        string          `json:"policy"`
}

func (s *Server) handleInsuranceQuote(w http.ResponseWriter, r *http.Request) {
	valueStr := r.URL.Query().Get("value")
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		s.respondError(w, r, errs.Validationf("value %q is not a number", valueStr))
		return
	}

	fee := s.insurance.Quote(value)
	respondJSON(w, http.StatusOK, insuranceQuoteResponse{
		DeclaredValue: value,
		Fee:           fee,
		FeeFormatted:  money.FormatPrice(fee),
		Policy:        string(s.insurance.Policy()),
	})
}
