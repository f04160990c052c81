package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/transdom/transdom/internal/broker/messages"
	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

// orderCounterKey is the shared counter behind every order number. Incremented
// atomically in storage, so concurrent submissions never collide.
const orderCounterKey = "order_no"

type Repository interface {
	NextSeq(ctx context.Context, key string) (int64, error)
	InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error)
	GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error)
	GetOrderForSender(ctx context.Context, orderNo, senderEmail string) (*models.Order, error)
	ListOrdersBySender(ctx context.Context, senderEmail string) ([]*models.Order, error)
	ListOrders(ctx context.Context, status models.Status, senderEmail string, limit int) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderNo string, status models.Status) (*models.Order, error)
	DeleteAllOrders(ctx context.Context) (int64, error)
	DeleteOrderByID(ctx context.Context, id int64) (*models.Order, error)

	AppendOrderLog(ctx context.Context, e *models.ActivityLogEntry) (*models.ActivityLogEntry, error)
	ListOrderLogs(ctx context.Context, orderNo string) ([]*models.ActivityLogEntry, error)

	EmailExists(ctx context.Context, email string) (bool, error)

	InsertPayment(ctx context.Context, p *models.Payment) (*models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userEmail string) ([]*models.Payment, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Options struct {
	OrderNoPrefix string
	EventsTopic   string
}

type Service struct {
	repo     Repository
	producer Publisher
	log      *slog.Logger

	prefix string
	topic  string
	now    func() time.Time
}

var validate = validator.New()

func New(repo Repository, producer Publisher, log *slog.Logger, opts Options) *Service {
	if log == nil {
		log = slog.Default()
	}
	if opts.OrderNoPrefix == "" {
		opts.OrderNoPrefix = "transdom_"
	}
	if opts.EventsTopic == "" {
		opts.EventsTopic = "order.events"
	}
	return &Service{
		repo:     repo,
		producer: producer,
		log:      log,
		prefix:   opts.OrderNoPrefix,
		topic:    opts.EventsTopic,
		now:      time.Now,
	}
}

// CreateOrder assigns the order number, stores the order as pending and
// records the first ledger entry. The sender must be a registered user; an
// unknown sender is a not-found, not a validation failure.
func (s *Service) CreateOrder(ctx context.Context, in models.OrderCreateInput) (*models.Order, error) {
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	known, err := s.repo.EmailExists(ctx, in.Sender.Email)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, errs.NotFoundf("no account found for sender %q", in.Sender.Email)
	}

	seq, err := s.repo.NextSeq(ctx, orderCounterKey)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		OrderNo:    fmt.Sprintf("%sorder%d_%s", s.prefix, seq, now.Format("20060102")),
		Zone:       strings.ToUpper(strings.TrimSpace(in.Zone)),
		Status:     models.StatusPending,
		Sender:     in.Sender,
		Receiver:   in.Receiver,
		Shipment:   in.Shipment,
		AmountPaid: in.AmountPaid,
	}

	stored, err := s.repo.InsertOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	s.appendLog(ctx, stored.OrderNo, models.ActivityCreated,
		fmt.Sprintf("order %s created", stored.OrderNo), stored.Sender.Email)
	s.publishEvent(ctx, messages.EventOrderCreated, stored)

	return stored, nil
}

// SetStatus moves an order to the given status. Transitions are unconditional:
// an approved order can be sent back to pending.
func (s *Service) SetStatus(ctx context.Context, orderNo, status string) (*models.Order, error) {
	st, err := models.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, orderNo, st)
	if err != nil {
		return nil, err
	}

	s.appendLog(ctx, updated.OrderNo, models.ActivityStatusChanged,
		fmt.Sprintf("order %s marked %s", updated.OrderNo, st), "")

	switch st {
	case models.StatusApproved:
		s.publishEvent(ctx, messages.EventOrderApproved, updated)
	case models.StatusRejected:
		s.publishEvent(ctx, messages.EventOrderRejected, updated)
	}
	return updated, nil
}

// LogActivity appends a ledger entry on behalf of the order's sender.
func (s *Service) LogActivity(ctx context.Context, orderNo, senderEmail, activityType, description string) (*models.ActivityLogEntry, error) {
	if !models.ValidActivityType(activityType) {
		return nil, errs.Validationf("unknown activity type %q", activityType)
	}
	if _, err := s.repo.GetOrderForSender(ctx, orderNo, senderEmail); err != nil {
		return nil, err
	}
	return s.repo.AppendOrderLog(ctx, &models.ActivityLogEntry{
		OrderNo:      orderNo,
		ActivityType: activityType,
		Description:  description,
		ActorEmail:   senderEmail,
	})
}

// GetOrderLogs returns the ledger for an order the sender owns, newest first.
func (s *Service) GetOrderLogs(ctx context.Context, orderNo, senderEmail string) ([]*models.ActivityLogEntry, error) {
	if _, err := s.repo.GetOrderForSender(ctx, orderNo, senderEmail); err != nil {
		return nil, err
	}
	return s.repo.ListOrderLogs(ctx, orderNo)
}

// AdminGetOrderLogs returns the ledger for any order.
func (s *Service) AdminGetOrderLogs(ctx context.Context, orderNo string) ([]*models.ActivityLogEntry, error) {
	if _, err := s.repo.GetOrderByNo(ctx, orderNo); err != nil {
		return nil, err
	}
	return s.repo.ListOrderLogs(ctx, orderNo)
}

func (s *Service) ListUserShipments(ctx context.Context, senderEmail string) ([]*models.Order, error) {
	return s.repo.ListOrdersBySender(ctx, senderEmail)
}

func (s *Service) GetShipment(ctx context.Context, orderNo, senderEmail string) (*models.Order, error) {
	return s.repo.GetOrderForSender(ctx, orderNo, senderEmail)
}

// GetOrderByNo looks an order up regardless of owner. Admin and partner use.
func (s *Service) GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error) {
	return s.repo.GetOrderByNo(ctx, orderNo)
}

// AdminListShipments lists orders across all senders, optionally filtered by
// status and sender email.
func (s *Service) AdminListShipments(ctx context.Context, status, senderEmail string, limit int) ([]*models.Order, error) {
	var st models.Status
	if status != "" {
		parsed, err := models.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		st = parsed
	}
	return s.repo.ListOrders(ctx, st, senderEmail, limit)
}

func (s *Service) DeleteAllOrders(ctx context.Context) (int64, error) {
	return s.repo.DeleteAllOrders(ctx)
}

func (s *Service) DeleteOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	return s.repo.DeleteOrderByID(ctx, id)
}

// LogPayment stores the payment under a generated reference. When the payment
// targets an order the user must own it, and a "paid" ledger entry is written.
func (s *Service) LogPayment(ctx context.Context, in models.Payment) (*models.Payment, error) {
	if in.UserEmail == "" {
		return nil, errs.Validationf("user email is required")
	}
	if in.Amount.IsNegative() || in.Amount.IsZero() {
		return nil, errs.Validationf("amount must be greater than 0")
	}
	if in.Currency == "" {
		in.Currency = "NGN"
	}
	if in.OrderNo != "" {
		if _, err := s.repo.GetOrderForSender(ctx, in.OrderNo, in.UserEmail); err != nil {
			return nil, err
		}
	}

	in.PaymentRef = uuid.NewString()
	stored, err := s.repo.InsertPayment(ctx, &in)
	if err != nil {
		return nil, err
	}

	if stored.OrderNo != "" {
		s.appendLog(ctx, stored.OrderNo, models.ActivityPaid,
			fmt.Sprintf("payment %s of %s %s received", stored.PaymentRef, stored.Currency, stored.Amount), stored.UserEmail)
	}
	return stored, nil
}

func (s *Service) ListPayments(ctx context.Context, userEmail string) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByUser(ctx, userEmail)
}

// appendLog is best-effort: the order mutation is already committed, a ledger
// write failure is logged rather than surfaced.
func (s *Service) appendLog(ctx context.Context, orderNo, activityType, description, actorEmail string) {
	_, err := s.repo.AppendOrderLog(ctx, &models.ActivityLogEntry{
		OrderNo:      orderNo,
		ActivityType: activityType,
		Description:  description,
		ActorEmail:   actorEmail,
	})
	if err != nil {
		s.log.Warn("append order log failed", "order_no", orderNo, "activity", activityType, "err", err)
	}
}

// publishEvent is fire-and-forget: notification delivery never blocks or fails
// the order operation.
func (s *Service) publishEvent(ctx context.Context, event string, o *models.Order) {
	if s.producer == nil {
		return
	}
	payload, err := json.Marshal(messages.OrderEvent{
		Event:           event,
		OrderNo:         o.OrderNo,
		Status:          string(o.Status),
		At:              s.now().UTC(),
		SenderName:      o.Sender.Name,
		SenderEmail:     o.Sender.Email,
		ReceiverName:    o.Receiver.Name,
		ReceiverCountry: o.Receiver.Country,
		Zone:            o.Zone,
		Description:     o.Shipment.Description,
		Weight:          o.Shipment.Weight,
		AmountPaid:      o.AmountPaid.String(),
	})
	if err != nil {
		s.log.Warn("marshal order event failed", "order_no", o.OrderNo, "err", err)
		return
	}
	if err := s.producer.Publish(ctx, s.topic, []byte(o.OrderNo), payload); err != nil {
		s.log.Warn("publish order event failed", "order_no", o.OrderNo, "event", event, "err", err)
	}
}

func validateOrderInput(in models.OrderCreateInput) error {
	if strings.TrimSpace(in.Zone) == "" {
		return errs.Validationf("zone is required")
	}
	if err := validate.Var(in.Sender.Email, "required,email"); err != nil {
		return errs.Validationf("sender email %q is not a valid email address", in.Sender.Email)
	}
	if in.Sender.Name == "" {
		return errs.Validationf("sender name is required")
	}
	if in.Receiver.Name == "" {
		return errs.Validationf("receiver name is required")
	}
	if in.Receiver.Country == "" {
		return errs.Validationf("receiver country is required")
	}
	if in.Shipment.Weight <= 0 {
		return errs.Validationf("shipment weight must be greater than 0")
	}
	if in.Shipment.Quantity <= 0 {
		return errs.Validationf("shipment quantity must be at least 1")
	}
	if in.Shipment.Value.IsNegative() {
		return errs.Validationf("shipment value must not be negative")
	}
	if in.AmountPaid.IsNegative() {
		return errs.Validationf("amount paid must not be negative")
	}
	return nil
}
