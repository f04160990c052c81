// Package httpapi exposes the REST surface: public rate lookups, user
// shipments and admin order management.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/transdom/transdom/internal/models"
	"github.com/transdom/transdom/internal/services/accounts"
	"github.com/transdom/transdom/internal/services/insurance"
)

type RatesService interface {
	Upsert(ctx context.Context, rate models.RateTable) (*models.RateTable, error)
	List(ctx context.Context, zone string) ([]*models.RateTable, error)
	Zones(ctx context.Context) ([]string, error)
	ResolvePrice(ctx context.Context, zone string, weight float64) (*models.ResolvedPrice, error)
}

type OrdersService interface {
	CreateOrder(ctx context.Context, in models.OrderCreateInput) (*models.Order, error)
	SetStatus(ctx context.Context, orderNo, status string) (*models.Order, error)
	LogActivity(ctx context.Context, orderNo, senderEmail, activityType, description string) (*models.ActivityLogEntry, error)
	GetOrderLogs(ctx context.Context, orderNo, senderEmail string) ([]*models.ActivityLogEntry, error)
	AdminGetOrderLogs(ctx context.Context, orderNo string) ([]*models.ActivityLogEntry, error)
	ListUserShipments(ctx context.Context, senderEmail string) ([]*models.Order, error)
	GetShipment(ctx context.Context, orderNo, senderEmail string) (*models.Order, error)
	GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error)
	AdminListShipments(ctx context.Context, status, senderEmail string, limit int) ([]*models.Order, error)
	DeleteAllOrders(ctx context.Context) (int64, error)
	DeleteOrderByID(ctx context.Context, id int64) (*models.Order, error)
	LogPayment(ctx context.Context, in models.Payment) (*models.Payment, error)
	ListPayments(ctx context.Context, userEmail string) ([]*models.Payment, error)
}

type AccountsService interface {
	SignupUser(ctx context.Context, in accounts.UserSignup) (*models.User, error)
	LoginUser(ctx context.Context, email, password string) (string, *models.User, error)
	SignupAdmin(ctx context.Context, name, password string) (*models.Admin, error)
	LoginAdmin(ctx context.Context, name, password string) (string, *models.Admin, error)
	SessionFromToken(ctx context.Context, token string) (*accounts.Session, error)
	Logout(ctx context.Context, token string) error
}

type InsuranceCalculator interface {
	Quote(declaredValue decimal.Decimal) decimal.Decimal
	Policy() insurance.Policy
}

type Server struct {
	rates     RatesService
	orders    OrdersService
	accounts  AccountsService
	insurance InsuranceCalculator

	apiKey string
	log    *slog.Logger
}

func New(rates RatesService, orders OrdersService, acc AccountsService, ins InsuranceCalculator, apiKey string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		rates:     rates,
		orders:    orders,
		accounts:  acc,
		insurance: ins,
		apiKey:    apiKey,
		log:       log,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/swagger.json")))
	r.Get("/docs/swagger.json", s.handleSwaggerJSON)

	// Public.
	r.Get("/rates", s.handleListRates)
	r.Get("/zones", s.handleListZones)
	r.Get("/price", s.handleResolvePrice)
	r.Get("/insurance-quote", s.handleInsuranceQuote)
	r.Post("/signup", s.handleSignupUser)
	r.Post("/login", s.handleLoginUser)
	r.Post("/admin/signup", s.handleSignupAdmin)
	r.Post("/admin/login", s.handleLoginAdmin)

	// Authenticated users.
	r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Use(s.requireUser)
		r.Post("/make-order", s.handleMakeOrder)
		r.Get("/shipments", s.handleListUserShipments)
		r.Get("/shipments/{orderNo}", s.handleGetShipment)
		r.Get("/order-logs/{orderNo}", s.handleGetOrderLogs)
		r.Post("/log-order-activity", s.handleLogActivity)
		r.Post("/log-payment", s.handleLogPayment)
		r.Get("/payments", s.handleListPayments)
		r.Post("/logout", s.handleLogout)
	})

	// Admins.
	r.Group(func(r chi.Router) {
		r.Use(s.withSession)
		r.Use(s.requireAdmin)
		r.Post("/admin/add-rates", s.handleAddRates)
		r.Get("/admin/shipments", s.handleAdminListShipments)
		r.Get("/admin/order-logs/{orderNo}", s.handleAdminGetOrderLogs)
		r.Patch("/admin/approve-order/{orderNo}", s.handleApproveOrder)
		r.Delete("/admin/orders", s.handleDeleteAllOrders)
		r.Delete("/admin/orders/{id}", s.handleDeleteOrder)
	})

	// Partner integrations authenticate with an API key, not a session.
	r.With(s.requireAPIKey).Post("/validate", s.handleValidateOrder)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
