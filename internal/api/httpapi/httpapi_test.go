package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
	"github.com/transdom/transdom/internal/services/accounts"
	"github.com/transdom/transdom/internal/services/insurance"
)

type fakeRates struct {
	rate *models.RateTable
}

func (f *fakeRates) Upsert(ctx context.Context, rate models.RateTable) (*models.RateTable, error) {
	if len(rate.Tiers) == 0 {
		return nil, errs.Validationf("rates must contain at least one weight-price pair")
	}
	f.rate = &rate
	return &rate, nil
}
func (f *fakeRates) List(ctx context.Context, zone string) ([]*models.RateTable, error) {
	if f.rate == nil {
		return nil, errs.NotFoundf("no shipping rates found")
	}
	return []*models.RateTable{f.rate}, nil
}
func (f *fakeRates) Zones(ctx context.Context) ([]string, error) {
	if f.rate == nil {
		return nil, errs.NotFoundf("no zones found")
	}
	return []string{f.rate.Zone}, nil
}
func (f *fakeRates) ResolvePrice(ctx context.Context, zone string, weight float64) (*models.ResolvedPrice, error) {
	if weight <= 0 {
		return nil, errs.Validationf("weight must be greater than 0")
	}
	if f.rate == nil || f.rate.Zone != zone {
		return nil, errs.NotFoundf("zone %q not found", zone)
	}
	return &models.ResolvedPrice{
		Zone:     zone,
		Weight:   4,
		Price:    decimal.RequireFromString("126375.73"),
		Currency: "NGN",
	}, nil
}

type fakeOrders struct {
	order   *models.Order
	deleted int64
}

func (f *fakeOrders) CreateOrder(ctx context.Context, in models.OrderCreateInput) (*models.Order, error) {
	o := &models.Order{
		ID:       1,
		OrderNo:  "transdom_order1_20240315",
		Zone:     in.Zone,
		Status:   models.StatusPending,
		Sender:   in.Sender,
		Receiver: in.Receiver,
		Shipment: in.Shipment,
	}
	f.order = o
	return o, nil
}
func (f *fakeOrders) SetStatus(ctx context.Context, orderNo, status string) (*models.Order, error) {
	st, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if f.order == nil || f.order.OrderNo != orderNo {
		return nil, errs.NotFoundf("order %q not found", orderNo)
	}
	f.order.Status = st
	return f.order, nil
}
func (f *fakeOrders) LogActivity(ctx context.Context, orderNo, senderEmail, activityType, description string) (*models.ActivityLogEntry, error) {
	if !models.ValidActivityType(activityType) {
		return nil, errs.Validationf("unknown activity type %q", activityType)
	}
	return &models.ActivityLogEntry{ID: 1, OrderNo: orderNo, ActivityType: activityType, ActorEmail: senderEmail}, nil
}
func (f *fakeOrders) GetOrderLogs(ctx context.Context, orderNo, senderEmail string) ([]*models.ActivityLogEntry, error) {
	if f.order == nil || f.order.OrderNo != orderNo || f.order.Sender.Email != senderEmail {
		return nil, errs.NotFoundf("order %q not found", orderNo)
	}
	return []*models.ActivityLogEntry{{ID: 1, OrderNo: orderNo, ActivityType: models.ActivityCreated}}, nil
}
func (f *fakeOrders) AdminGetOrderLogs(ctx context.Context, orderNo string) ([]*models.ActivityLogEntry, error) {
	if f.order == nil || f.order.OrderNo != orderNo {
		return nil, errs.NotFoundf("order %q not found", orderNo)
	}
	return []*models.ActivityLogEntry{{ID: 1, OrderNo: orderNo, ActivityType: models.ActivityCreated}}, nil
}
func (f *fakeOrders) ListUserShipments(ctx context.Context, senderEmail string) ([]*models.Order, error) {
	if f.order != nil && f.order.Sender.Email == senderEmail {
		return []*models.Order{f.order}, nil
	}
	return []*models.Order{}, nil
}
func (f *fakeOrders) GetShipment(ctx context.Context, orderNo, senderEmail string) (*models.Order, error) {
	if f.order == nil || f.order.OrderNo != orderNo || f.order.Sender.Email != senderEmail {
		return nil, errs.NotFoundf("order %q not found", orderNo)
	}
	return f.order, nil
}
func (f *fakeOrders) GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error) {
	if f.order == nil || f.order.OrderNo != orderNo {
		return nil, errs.NotFoundf("order %q not found", orderNo)
	}
	return f.order, nil
}
func (f *fakeOrders) AdminListShipments(ctx context.Context, status, senderEmail string, limit int) ([]*models.Order, error) {
	if f.order == nil {
		return []*models.Order{}, nil
	}
	return []*models.Order{f.order}, nil
}
func (f *fakeOrders) DeleteAllOrders(ctx context.Context) (int64, error) {
	f.deleted++
	return 3, nil
}
func (f *fakeOrders) DeleteOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	if f.order == nil || f.order.ID != id {
		return nil, errs.NotFoundf("order %d not found", id)
	}
	return f.order, nil
}
func (f *fakeOrders) LogPayment(ctx context.Context, in models.Payment) (*models.Payment, error) {
	if in.Amount.IsZero() {
		return nil, errs.Validationf("amount must be greater than 0")
	}
	in.ID = 1
	in.PaymentRef = "ref-1"
	return &in, nil
}
func (f *fakeOrders) ListPayments(ctx context.Context, userEmail string) ([]*models.Payment, error) {
	return []*models.Payment{}, nil
}

type fakeAccounts struct {
	sessions map[string]*accounts.Session
}

func (f *fakeAccounts) SignupUser(ctx context.Context, in accounts.UserSignup) (*models.User, error) {
	if in.Password == "short" {
		return nil, errs.Validationf("password must be at least 8 characters")
	}
	return &models.User{ID: 1, Email: in.Email}, nil
}
func (f *fakeAccounts) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	if password != "correct horse" {
		return "", nil, errs.Authf("invalid email or password")
	}
	return "user-token", &models.User{ID: 1, Email: email}, nil
}
func (f *fakeAccounts) SignupAdmin(ctx context.Context, name, password string) (*models.Admin, error) {
	return &models.Admin{ID: 1, Name: name}, nil
}
func (f *fakeAccounts) LoginAdmin(ctx context.Context, name, password string) (string, *models.Admin, error) {
	return "admin-token", &models.Admin{ID: 1, Name: name}, nil
}
func (f *fakeAccounts) SessionFromToken(ctx context.Context, token string) (*accounts.Session, error) {
	sess, ok := f.sessions[token]
	if !ok {
		return nil, errs.Authf("invalid or expired token")
	}
	return sess, nil
}
func (f *fakeAccounts) Logout(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func newTestServer() (*Server, *fakeOrders) {
	orders := &fakeOrders{}
	acc := &fakeAccounts{sessions: map[string]*accounts.Session{
		"user-token":  {Email: "ada@example.com", Kind: accounts.KindUser},
		"admin-token": {Email: "ops", Kind: accounts.KindAdmin},
	}}
	ins := insurance.New(insurance.DefaultConfig(insurance.PolicyBracket))
	return New(&fakeRates{}, orders, acc, ins, "secret-key", nil), orders
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer()
	w := do(t, s.Router(), http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestResolvePrice(t *testing.T) {
	s, _ := newTestServer()
	r := s.Router()

	// Seed a rate card through the admin endpoint.
	w := do(t, r, http.MethodPost, "/admin/add-rates", "admin-token", addRatesRequest{
		Zone:  "UK_IRELAND",
		Rates: []rateTierPayload{{Weight: 4, Price: decimal.RequireFromString("126375.73")}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/price?zone=UK_IRELAND&weight=3.5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp priceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, float64(4), resp.MatchedWeight)
	require.Equal(t, "126,375.73", resp.PriceFormatted)

	// Bad weight is a 400, unknown zone a 404.
	w = do(t, r, http.MethodGet, "/price?zone=UK_IRELAND&weight=abc", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/price?zone=MARS&weight=1", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestInsuranceQuote(t *testing.T) {
	s, _ := newTestServer()
	r := s.Router()

	w := do(t, r, http.MethodGet, "/insurance-quote?value=100001", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp insuranceQuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "7,500.00", resp.FeeFormatted)
	require.Equal(t, "bracket", resp.Policy)

	w = do(t, r, http.MethodGet, "/insurance-quote?value=abc", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	s, _ := newTestServer()
	r := s.Router()

	// No token.
	w := do(t, r, http.MethodGet, "/shipments", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Bad token.
	w = do(t, r, http.MethodGet, "/shipments", "bogus", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// User token on an admin route.
	w = do(t, r, http.MethodDelete, "/admin/orders", "user-token", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Admin token on a user route.
	w = do(t, r, http.MethodGet, "/shipments", "admin-token", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderFlow(t *testing.T) {
	s, _ := newTestServer()
	r := s.Router()

	w := do(t, r, http.MethodPost, "/make-order", "user-token", makeOrderRequest{
		Zone:     "UK_IRELAND",
		Sender:   models.Sender{Party: models.Party{Name: "Ada Obi"}, Email: "spoofed@example.com"},
		Receiver: models.Receiver{Party: models.Party{Name: "John Smith", Country: "United Kingdom"}},
		Shipment: models.Shipment{Weight: 3.5, Quantity: 1},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	// The session owns the order regardless of the body's sender email.
	require.Equal(t, "ada@example.com", order.Sender.Email)
	require.Equal(t, models.StatusPending, order.Status)

	w = do(t, r, http.MethodGet, "/shipments/"+order.OrderNo, "user-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/order-logs/"+order.OrderNo, "user-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPatch, "/admin/approve-order/"+order.OrderNo, "admin-token", approveOrderRequest{Status: "approved"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPatch, "/admin/approve-order/"+order.OrderNo, "admin-token", approveOrderRequest{Status: "shipped"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/admin/orders/1", "admin-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, "/admin/orders/notanumber", "admin-token", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupAndLogin(t *testing.T) {
	s, _ := newTestServer()
	r := s.Router()

	w := do(t, r, http.MethodPost, "/signup", "", signupUserRequest{Email: "ada@example.com", Password: "correct horse", Firstname: "Ada", Lastname: "Obi"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPost, "/signup", "", signupUserRequest{Email: "ada@example.com", Password: "short"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/login", "", loginRequest{Email: "ada@example.com", Password: "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "user-token", resp.Token)

	w = do(t, r, http.MethodPost, "/login", "", loginRequest{Email: "ada@example.com", Password: "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidateWithAPIKey(t *testing.T) {
	s, orders := newTestServer()
	r := s.Router()

	_, err := orders.CreateOrder(context.Background(), models.OrderCreateInput{
		Sender: models.Sender{Email: "ada@example.com"},
	})
	require.NoError(t, err)

	body := validateOrderRequest{OrderNo: "transdom_order1_20240315"}

	req := httptest.NewRequest(http.MethodPost, "/validate", marshalBody(t, body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/validate", marshalBody(t, body))
	req.Header.Set("X-API-Key", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/validate", marshalBody(t, body))
	req.Header.Set("X-API-Key", "secret-key")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"valid":true`)
}

func marshalBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}

func TestSwaggerJSONServed(t *testing.T) {
	s, _ := newTestServer()
	w := do(t, s.Router(), http.MethodGet, "/docs/swagger.json", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Transdom Express API")
}
