package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/transdom/transdom/internal/broker/messages"
	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

type fakeRepo struct {
	seq        int64
	seqErr     error
	orders     map[string]*models.Order
	logs       []*models.ActivityLogEntry
	logErr     error
	emails     map[string]bool
	payments   []*models.Payment
	deletedAll int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: map[string]*models.Order{},
		emails: map[string]bool{},
	}
}

func (f *fakeRepo) NextSeq(ctx context.Context, key string) (int64, error) {
	if f.seqErr != nil {
		return 0, f.seqErr
	}
	f.seq++
	return f.seq, nil
}

func (f *fakeRepo) InsertOrder(ctx context.Context, o *models.Order) (*models.Order, error) {
	if _, ok := f.orders[o.OrderNo]; ok {
		return nil, errs.Conflictf("order %q already exists", o.OrderNo)
	}
	stored := *o
	stored.ID = int64(len(f.orders) + 1)
	stored.CreatedAt = time.Now()
	f.orders[o.OrderNo] = &stored
	return &stored, nil
}

func (f *fakeRepo) GetOrderByNo(ctx context.Context, orderNo string) (*models.Order, error) {
	o, ok := f.orders[orderNo]
	if !ok {
		return nil, errs.NotFoundf("order %q not found", orderNo)
	}
	return o, nil
}

func (f *fakeRepo) GetOrderForSender(ctx context.Context, orderNo, senderEmail string) (*models.Order, error) {
	o, ok := f.orders[orderNo]
	if !ok || o.Sender.Email != senderEmail {
		return nil, errs.NotFoundf("order %q not found", orderNo)
	}
	return o, nil
}

func (f *fakeRepo) ListOrdersBySender(ctx context.Context, senderEmail string) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if o.Sender.Email == senderEmail {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListOrders(ctx context.Context, status models.Status, senderEmail string, limit int) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if status != "" && o.Status != status {
			continue
		}
		if senderEmail != "" && o.Sender.Email != senderEmail {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) UpdateOrderStatus(ctx context.Context, orderNo string, status models.Status) (*models.Order, error) {
	o, ok := f.orders[orderNo]
	if !ok {
		return nil, errs.NotFoundf("order %q not found", orderNo)
	}
	o.Status = status
	return o, nil
}

func (f *fakeRepo) DeleteAllOrders(ctx context.Context) (int64, error) {
	n := int64(len(f.orders))
	f.orders = map[string]*models.Order{}
	f.deletedAll = n
	return n, nil
}

func (f *fakeRepo) DeleteOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	for no, o := range f.orders {
		if o.ID == id {
			delete(f.orders, no)
			return o, nil
		}
	}
	return nil, errs.NotFoundf("order %d not found", id)
}

func (f *fakeRepo) AppendOrderLog(ctx context.Context, e *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	stored := *e
	stored.ID = int64(len(f.logs) + 1)
	stored.CreatedAt = time.Now()
	f.logs = append(f.logs, &stored)
	return &stored, nil
}

func (f *fakeRepo) ListOrderLogs(ctx context.Context, orderNo string) ([]*models.ActivityLogEntry, error) {
	var out []*models.ActivityLogEntry
	for i := len(f.logs) - 1; i >= 0; i-- {
		if f.logs[i].OrderNo == orderNo {
			out = append(out, f.logs[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	return f.emails[email], nil
}

func (f *fakeRepo) InsertPayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	stored := *p
	stored.ID = int64(len(f.payments) + 1)
	stored.CreatedAt = time.Now()
	f.payments = append(f.payments, &stored)
	return &stored, nil
}

func (f *fakeRepo) ListPaymentsByUser(ctx context.Context, userEmail string) ([]*models.Payment, error) {
	var out []*models.Payment
	for _, p := range f.payments {
		if p.UserEmail == userEmail {
			out = append(out, p)
		}
	}
	return out, nil
}

type published struct {
	topic string
	key   []byte
	value []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, key: key, value: value})
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func validInput() models.OrderCreateInput {
	return models.OrderCreateInput{
		Zone: "uk_ireland",
		Sender: models.Sender{
			Party: models.Party{Name: "Ada Obi", Country: "Nigeria"},
			Email: "ada@example.com",
		},
		Receiver: models.Receiver{
			Party:    models.Party{Name: "John Smith", Country: "United Kingdom"},
			Postcode: "SW1A 1AA",
		},
		Shipment: models.Shipment{
			Description: "documents",
			Quantity:    1,
			Value:       decimal.NewFromInt(50000),
			Weight:      3.5,
		},
		AmountPaid: decimal.RequireFromString("126375.73"),
	}
}

func newTestService(repo *fakeRepo, pub Publisher) *Service {
	s := New(repo, pub, testLogger(), Options{})
	s.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestCreateOrder_AssignsNumberAndPending(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	pub := &fakePublisher{}
	s := newTestService(repo, pub)

	got, err := s.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, "transdom_order1_20240315", got.OrderNo)
	require.Equal(t, models.StatusPending, got.Status)
	require.Equal(t, "UK_IRELAND", got.Zone)

	// First ledger entry records the creation.
	require.Len(t, repo.logs, 1)
	require.Equal(t, models.ActivityCreated, repo.logs[0].ActivityType)
	require.Equal(t, got.OrderNo, repo.logs[0].OrderNo)
	require.Equal(t, "ada@example.com", repo.logs[0].ActorEmail)

	// One event, keyed by order number.
	require.Len(t, pub.msgs, 1)
	require.Equal(t, "order.events", pub.msgs[0].topic)
	require.Equal(t, []byte(got.OrderNo), pub.msgs[0].key)

	var ev messages.OrderEvent
	require.NoError(t, json.Unmarshal(pub.msgs[0].value, &ev))
	require.Equal(t, messages.EventOrderCreated, ev.Event)
	require.Equal(t, "pending", ev.Status)
	require.Equal(t, "ada@example.com", ev.SenderEmail)
}

func TestCreateOrder_SequenceAdvances(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	s := newTestService(repo, nil)

	first, err := s.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	second, err := s.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	require.Equal(t, "transdom_order1_20240315", first.OrderNo)
	require.Equal(t, "transdom_order2_20240315", second.OrderNo)
}

func TestCreateOrder_Validation(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	s := newTestService(repo, nil)
	ctx := context.Background()

	in := validInput()
	in.Zone = ""
	_, err := s.CreateOrder(ctx, in)
	require.ErrorIs(t, err, errs.ErrValidation)

	in = validInput()
	in.Sender.Email = "not-an-email"
	_, err = s.CreateOrder(ctx, in)
	require.ErrorIs(t, err, errs.ErrValidation)

	in = validInput()
	in.Shipment.Weight = 0
	_, err = s.CreateOrder(ctx, in)
	require.ErrorIs(t, err, errs.ErrValidation)

	in = validInput()
	in.Shipment.Quantity = 0
	_, err = s.CreateOrder(ctx, in)
	require.ErrorIs(t, err, errs.ErrValidation)

	// Nothing stored, no sequence burned.
	require.Empty(t, repo.orders)
	require.Zero(t, repo.seq)
}

func TestCreateOrder_UnknownSender(t *testing.T) {
	s := newTestService(newFakeRepo(), nil)
	_, err := s.CreateOrder(context.Background(), validInput())
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateOrder_PublishFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	s := newTestService(repo, &fakePublisher{err: errors.New("broker down")})

	got, err := s.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestCreateOrder_LedgerFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	repo.logErr = errors.New("ledger down")
	s := newTestService(repo, nil)

	_, err := s.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
}

func TestSetStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	pub := &fakePublisher{}
	s := newTestService(repo, pub)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validInput())
	require.NoError(t, err)
	pub.msgs = nil
	repo.logs = nil

	got, err := s.SetStatus(ctx, order.OrderNo, "APPROVED")
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, got.Status)
	require.Len(t, repo.logs, 1)
	require.Equal(t, models.ActivityStatusChanged, repo.logs[0].ActivityType)
	require.Len(t, pub.msgs, 1)

	var ev messages.OrderEvent
	require.NoError(t, json.Unmarshal(pub.msgs[0].value, &ev))
	require.Equal(t, messages.EventOrderApproved, ev.Event)

	// An approved order can be pulled back to pending. No event for that.
	pub.msgs = nil
	got, err = s.SetStatus(ctx, order.OrderNo, "pending")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, got.Status)
	require.Empty(t, pub.msgs)

	_, err = s.SetStatus(ctx, order.OrderNo, "shipped")
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.SetStatus(ctx, "transdom_order999_20240315", "approved")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLogActivity(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	s := newTestService(repo, nil)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validInput())
	require.NoError(t, err)

	entry, err := s.LogActivity(ctx, order.OrderNo, "ada@example.com", models.ActivityViewed, "tracking page opened")
	require.NoError(t, err)
	require.Equal(t, models.ActivityViewed, entry.ActivityType)

	_, err = s.LogActivity(ctx, order.OrderNo, "ada@example.com", "teleported", "")
	require.ErrorIs(t, err, errs.ErrValidation)

	// Another user cannot write to this order's ledger.
	_, err = s.LogActivity(ctx, order.OrderNo, "mallory@example.com", models.ActivityViewed, "")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGetOrderLogs_OwnerOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	s := newTestService(repo, nil)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validInput())
	require.NoError(t, err)
	_, err = s.SetStatus(ctx, order.OrderNo, "approved")
	require.NoError(t, err)

	logs, err := s.GetOrderLogs(ctx, order.OrderNo, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// Newest first.
	require.Equal(t, models.ActivityStatusChanged, logs[0].ActivityType)
	require.Equal(t, models.ActivityCreated, logs[1].ActivityType)

	_, err = s.GetOrderLogs(ctx, order.OrderNo, "mallory@example.com")
	require.ErrorIs(t, err, errs.ErrNotFound)

	adminLogs, err := s.AdminGetOrderLogs(ctx, order.OrderNo)
	require.NoError(t, err)
	require.Len(t, adminLogs, 2)
}

func TestLogPayment(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	s := newTestService(repo, nil)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validInput())
	require.NoError(t, err)
	repo.logs = nil

	p, err := s.LogPayment(ctx, models.Payment{
		OrderNo:   order.OrderNo,
		Amount:    decimal.RequireFromString("126375.73"),
		UserEmail: "ada@example.com",
		Method:    "card",
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.PaymentRef)
	require.Equal(t, "NGN", p.Currency)
	require.Len(t, repo.logs, 1)
	require.Equal(t, models.ActivityPaid, repo.logs[0].ActivityType)

	// A payment with no order attached writes no ledger entry.
	repo.logs = nil
	_, err = s.LogPayment(ctx, models.Payment{
		Amount:    decimal.NewFromInt(5000),
		UserEmail: "ada@example.com",
	})
	require.NoError(t, err)
	require.Empty(t, repo.logs)

	_, err = s.LogPayment(ctx, models.Payment{UserEmail: "ada@example.com"})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.LogPayment(ctx, models.Payment{
		OrderNo:   order.OrderNo,
		Amount:    decimal.NewFromInt(1),
		UserEmail: "mallory@example.com",
	})
	require.ErrorIs(t, err, errs.ErrNotFound)

	payments, err := s.ListPayments(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, payments, 2)
}

func TestAdminListShipments_StatusFilter(t *testing.T) {
	repo := newFakeRepo()
	repo.emails["ada@example.com"] = true
	s := newTestService(repo, nil)
	ctx := context.Background()

	order, err := s.CreateOrder(ctx, validInput())
	require.NoError(t, err)
	_, err = s.SetStatus(ctx, order.OrderNo, "approved")
	require.NoError(t, err)

	got, err := s.AdminListShipments(ctx, "approved", "", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.AdminListShipments(ctx, "pending", "", 0)
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = s.AdminListShipments(ctx, "bogus", "", 0)
	require.ErrorIs(t, err, errs.ErrValidation)
}
