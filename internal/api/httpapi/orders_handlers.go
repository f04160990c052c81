package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

type makeOrderRequest struct {
	Zone     string          `json:"zone"`
	Sender   models.Sender   `json:"sender"`
	Receiver models.Receiver `json:"receiver"`
	Shipment models.Shipment `json:"shipment"`
	Amount   decimal.Decimal `json:"amount_paid"`
}

func (s *Server) handleMakeOrder(w http.ResponseWriter, r *http.Request) {
	var req makeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	// Orders are always placed on the logged-in account, whatever the body says.
	req.Sender.Email = sessionFrom(r.Context()).Email

	order, err := s.orders.CreateOrder(r.Context(), models.OrderCreateInput{
		Zone:       req.Zone,
		Sender:     req.Sender,
		Receiver:   req.Receiver,
		Shipment:   req.Shipment,
		AmountPaid: req.Amount,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

func (s *Server) handleListUserShipments(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.ListUserShipments(r.Context(), sessionFrom(r.Context()).Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	order, err := s.orders.GetShipment(r.Context(), chi.URLParam(r, "orderNo"), sessionFrom(r.Context()).Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleGetOrderLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.orders.GetOrderLogs(r.Context(), chi.URLParam(r, "orderNo"), sessionFrom(r.Context()).Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

type logActivityRequest struct {
	OrderNo      string `json:"order_no"`
	ActivityType string `json:"activity_type"`
	Description  string `json:"description,omitempty"`
}

func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	var req logActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	entry, err := s.orders.LogActivity(r.Context(), req.OrderNo, sessionFrom(r.Context()).Email, req.ActivityType, req.Description)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

type logPaymentRequest struct {
	OrderNo  string          `json:"order_no,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
	Method   string          `json:"method,omitempty"`
}

func (s *Server) handleLogPayment(w http.ResponseWriter, r *http.Request) {
	var req logPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	payment, err := s.orders.LogPayment(r.Context(), models.Payment{
		OrderNo:   req.OrderNo,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Method:    req.Method,
		UserEmail: sessionFrom(r.Context()).Email,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.orders.ListPayments(r.Context(), sessionFrom(r.Context()).Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

func (s *Server) handleAdminListShipments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, r, errs.Validationf("limit %q is not a number", raw))
			return
		}
		limit = n
	}
	orders, err := s.orders.AdminListShipments(r.Context(), q.Get("status"), q.Get("sender"), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleAdminGetOrderLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.orders.AdminGetOrderLogs(r.Context(), chi.URLParam(r, "orderNo"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

type approveOrderRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleApproveOrder(w http.ResponseWriter, r *http.Request) {
	var req approveOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	order, err := s.orders.SetStatus(r.Context(), chi.URLParam(r, "orderNo"), req.Status)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleDeleteAllOrders(w http.ResponseWriter, r *http.Request) {
	n, err := s.orders.DeleteAllOrders(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.respondError(w, r, errs.Validationf("id %q is not a number", raw))
		return
	}
	order, err := s.orders.DeleteOrderByID(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

type validateOrderRequest struct {
	OrderNo string `json:"order_no"`
}

// handleValidateOrder lets an integration partner confirm an order exists and
// read its current status.
func (s *Server) handleValidateOrder(w http.ResponseWriter, r *http.Request) {
	var req validateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.OrderNo == "" {
		s.respondError(w, r, errs.Validationf("order_no is required"))
		return
	}
	order, err := s.orders.GetOrderByNo(r.Context(), req.OrderNo)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"order_no": order.OrderNo,
		"valid":    true,
		"status":   order.Status,
		"order":    order,
	})
}
