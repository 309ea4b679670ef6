package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"bottle-order-tracking/internal/dto"
	"bottle-order-tracking/internal/model"
	"bottle-order-tracking/internal/repository"
)

// memRepo is an in-memory OrderRepository for service tests.
type memRepo struct {
	orders      map[string]*model.Order
	leads       []*model.FranchiseLead
	trackingErr error
	findErr     error
}

func newMemRepo() *memRepo {
	return &memRepo{orders: make(map[string]*model.Order)}
}

func (m *memRepo) Save(_ context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
		o.History = []model.StatusRecord{{Status: o.Status, ChangedAt: now, ChangedBy: o.UserID}}
	}
	o.UpdatedAt = now
	m.orders[o.OrderID] = o
	return nil
}

func (m *memRepo) FindByOrderID(_ context.Context, orderID string) (*model.Order, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (m *memRepo) FindTracking(_ context.Context, orderID string) ([]model.StatusRecord, error) {
	if m.trackingErr != nil {
		return nil, m.trackingErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o.History, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, orderID, status, declineReason string, record model.StatusRecord) error {
	o, ok := m.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	if declineReason != "" {
		o.DeclineReason = declineReason
	}
	o.History = append(o.History, record)
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memRepo) UpdatePaymentStatus(_ context.Context, orderID, paymentStatus string) error {
	o, ok := m.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	o.PaymentStatus = paymentStatus
	return nil
}

func (m *memRepo) FindAll(_ context.Context, _, _ int64) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memRepo) FindByStatus(_ context.Context, status string, _, _ int64) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) FindByUserID(_ context.Context, userID string, _, _ int64) ([]*model.Order, error) {
	var out []*model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memRepo) InsertLead(_ context.Context, lead *model.FranchiseLead) error {
	m.leads = append(m.leads, lead)
	return nil
}

func (m *memRepo) FindLeads(_ context.Context, _, _ int64) ([]*model.FranchiseLead, error) {
	return m.leads, nil
}

func newTestService(repo *memRepo) *OrderStatusService {
	return NewOrderStatusService(repo, zap.NewNop().Sugar())
}

func seedOrder(t *testing.T, svc *OrderStatusService, orderID, userID, status string) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.InitOrder(ctx, orderID, userID, dto.BottleSpec{}); err != nil {
		t.Fatal(err)
	}
	if status != "placed" {
		repo := svc.repo.(*memRepo)
		repo.orders[orderID].Status = status
	}
}

func TestInitOrderDefaults(t *testing.T) {
	svc := newTestService(newMemRepo())

	order, err := svc.InitOrder(context.Background(), "ord-1", "user-1", dto.BottleSpec{Variant: "sparkling", Qty: 500})
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != "placed" {
		t.Errorf("initial status = %q, want placed", order.Status)
	}
	if order.PaymentStatus != model.PaymentPending {
		t.Errorf("initial payment status = %q, want %q", order.PaymentStatus, model.PaymentPending)
	}

	if _, err := svc.InitOrder(context.Background(), "ord-1", "user-1", dto.BottleSpec{}); !errors.Is(err, ErrOrderAlreadyExists) {
		t.Errorf("duplicate init error = %v, want ErrOrderAlreadyExists", err)
	}
}

func TestInitOrderPropagatesLookupFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)

	lookupErr := errors.New("mongo timeout")
	repo.findErr = lookupErr

	// A transient lookup failure must not be mistaken for "not found": the
	// save could overwrite an existing document.
	if _, err := svc.InitOrder(context.Background(), "ord-1", "user-1", dto.BottleSpec{}); !errors.Is(err, lookupErr) {
		t.Fatalf("InitOrder = %v, want the lookup error back", err)
	}
	if len(repo.orders) != 0 {
		t.Error("no document may be saved when the existence check fails")
	}
}

func TestUpdateStatusRoleTable(t *testing.T) {
	cases := []struct {
		name    string
		role    model.Role
		actorID string
		from    string
		to      string
		wantErr error
	}{
		{"printing starts printing", model.RolePrinting, "staff-1", "placed", "printing", nil},
		{"printing hands to plant", model.RolePrinting, "staff-1", "printing", "ready_for_plant", nil},
		{"printing cannot dispatch", model.RolePrinting, "staff-1", "printing", "dispatched", ErrInvalidTransition},
		{"plant processes", model.RolePlant, "staff-2", "ready_for_plant", "plant_processing", nil},
		{"plant dispatches", model.RolePlant, "staff-2", "plant_processing", "dispatched", nil},
		{"plant completes", model.RolePlant, "staff-2", "dispatched", "completed", nil},
		{"plant cannot start printing", model.RolePlant, "staff-2", "placed", "printing", ErrInvalidTransition},
		{"admin takes printing edge", model.RoleAdmin, "admin-1", "placed", "printing", nil},
		{"admin takes plant edge", model.RoleAdmin, "admin-1", "plant_processing", "dispatched", nil},
		{"owner cancels while placed", model.RoleCustomer, "user-1", "placed", "cancelled", nil},
		{"owner cancels while printing", model.RoleCustomer, "user-1", "printing", "cancelled", nil},
		{"owner cannot cancel late", model.RoleCustomer, "user-1", "plant_processing", "cancelled", ErrInvalidTransition},
		{"stranger cannot cancel", model.RoleCustomer, "user-2", "placed", "cancelled", ErrForbidden},
		{"business owner is read-only", model.RoleBusinessOwner, "biz-1", "placed", "printing", ErrForbidden},
		{"unknown target status", model.RoleAdmin, "admin-1", "placed", "warp_drive", ErrInvalidTransition},
		{"terminal order frozen", model.RoleAdmin, "admin-1", "completed", "printing", ErrFinalState},
		{"cancelled order frozen", model.RoleAdmin, "admin-1", "cancelled", "printing", ErrFinalState},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := newTestService(newMemRepo())
			seedOrder(t, svc, "ord-1", "user-1", c.from)

			err := svc.UpdateStatus(context.Background(), "ord-1", c.to, "", Principal{ID: c.actorID, Role: c.role})
			if !errors.Is(err, c.wantErr) {
				t.Fatalf("UpdateStatus(%s -> %s as %s) = %v, want %v", c.from, c.to, c.role, err, c.wantErr)
			}

			if c.wantErr == nil {
				o, _ := svc.GetByOrderID(context.Background(), "ord-1")
				if o.Status != c.to {
					t.Errorf("status = %q, want %q", o.Status, c.to)
				}
				last := o.History[len(o.History)-1]
				if last.Status != c.to || last.ChangedBy != c.actorID {
					t.Errorf("history record = %+v, want status %q by %q", last, c.to, c.actorID)
				}
			}
		})
	}
}

func TestUpdateStatusNormalizesSpelling(t *testing.T) {
	svc := newTestService(newMemRepo())
	seedOrder(t, svc, "ord-1", "user-1", "plant_processing")

	// dispatch resolves to the dispatched edge under the staff synonyms
	err := svc.UpdateStatus(context.Background(), "ord-1", "Dispatch", "", Principal{ID: "staff-2", Role: model.RolePlant})
	if err != nil {
		t.Fatalf("spelling-variant transition failed: %v", err)
	}

	// The canonical token is stored, so the status filter still finds it.
	o, _ := svc.GetByOrderID(context.Background(), "ord-1")
	if o.Status != "dispatched" {
		t.Errorf("stored status = %q, want canonical %q", o.Status, "dispatched")
	}
	if o.History[len(o.History)-1].Status != "dispatched" {
		t.Errorf("history record status = %q, want canonical %q", o.History[len(o.History)-1].Status, "dispatched")
	}
	byStatus, err := svc.GetByStatus(context.Background(), "dispatched", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 1 {
		t.Errorf("status filter found %d orders, want 1", len(byStatus))
	}

	// same status in a different spelling is a no-op
	err = svc.UpdateStatus(context.Background(), "ord-1", "dispatched", "", Principal{ID: "staff-2", Role: model.RolePlant})
	if err != nil {
		t.Fatalf("same-status update should be a no-op, got %v", err)
	}
	o, _ = svc.GetByOrderID(context.Background(), "ord-1")
	if len(o.History) != 2 {
		t.Errorf("no-op update must not append history, got %d records", len(o.History))
	}
}

func TestDeclineRequiresReason(t *testing.T) {
	svc := newTestService(newMemRepo())
	seedOrder(t, svc, "ord-1", "user-1", "printing")
	admin := Principal{ID: "admin-1", Role: model.RoleAdmin}

	err := svc.UpdateStatus(context.Background(), "ord-1", "declined", "", admin)
	if !errors.Is(err, ErrReasonRequired) {
		t.Fatalf("decline without reason = %v, want ErrReasonRequired", err)
	}

	err = svc.UpdateStatus(context.Background(), "ord-1", "declined", "label artwork unreadable", admin)
	if err != nil {
		t.Fatal(err)
	}
	o, _ := svc.GetByOrderID(context.Background(), "ord-1")
	if o.DeclineReason != "label artwork unreadable" {
		t.Errorf("decline_reason = %q", o.DeclineReason)
	}
}

func TestPaymentStatusMachine(t *testing.T) {
	svc := newTestService(newMemRepo())
	seedOrder(t, svc, "ord-1", "user-1", "placed")
	ctx := context.Background()

	owner := Principal{ID: "user-1", Role: model.RoleCustomer}
	stranger := Principal{ID: "user-2", Role: model.RoleCustomer}
	admin := Principal{ID: "admin-1", Role: model.RoleAdmin}

	if err := svc.UpdatePaymentStatus(ctx, "ord-1", model.PaymentVerified, admin); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("verify before upload = %v, want ErrInvalidPayment", err)
	}
	if err := svc.UpdatePaymentStatus(ctx, "ord-1", model.PaymentUploaded, stranger); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger upload = %v, want ErrForbidden", err)
	}
	if err := svc.UpdatePaymentStatus(ctx, "ord-1", model.PaymentUploaded, owner); err != nil {
		t.Fatalf("owner upload failed: %v", err)
	}
	if err := svc.UpdatePaymentStatus(ctx, "ord-1", model.PaymentVerified, owner); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("customer verify = %v, want ErrInvalidPayment", err)
	}
	if err := svc.UpdatePaymentStatus(ctx, "ord-1", model.PaymentVerified, admin); err != nil {
		t.Fatalf("admin verify failed: %v", err)
	}

	o, _ := svc.GetByOrderID(ctx, "ord-1")
	if o.PaymentStatus != model.PaymentVerified {
		t.Errorf("payment status = %q, want %q", o.PaymentStatus, model.PaymentVerified)
	}
}

func TestTimelineSurvivesTrackingFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo)
	seedOrder(t, svc, "ord-1", "user-1", "printing")

	repo.trackingErr = errors.New("mongo timeout")

	steps, err := svc.Timeline(context.Background(), "ord-1", ViewStaff, Principal{ID: "staff-1", Role: model.RolePrinting})
	if err != nil {
		t.Fatalf("timeline must not fail when tracking does: %v", err)
	}
	if len(steps) != 6 {
		t.Fatalf("expected the full staff rail, got %d steps", len(steps))
	}
	// Positional completion still works without history.
	if !steps[0].IsCompleted || !steps[1].IsCompleted || !steps[1].IsCurrent {
		t.Error("current status alone should drive completion")
	}
	for _, s := range steps {
		if s.Date != "" {
			t.Errorf("step %s has a date with no history available", s.Status)
		}
	}
}

func TestTrackingAccessControl(t *testing.T) {
	svc := newTestService(newMemRepo())
	seedOrder(t, svc, "ord-1", "user-1", "placed")
	ctx := context.Background()

	if _, err := svc.GetTracking(ctx, "ord-1", Principal{ID: "user-2", Role: model.RoleCustomer}); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign order tracking = %v, want ErrForbidden", err)
	}

	history, err := svc.GetTracking(ctx, "ord-1", Principal{ID: "user-1", Role: model.RoleCustomer})
	if err != nil {
		t.Fatalf("owner tracking failed: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("owner sees %d records, want 1", len(history))
	}

	if _, err := svc.GetTracking(ctx, "ord-1", Principal{ID: "staff-1", Role: model.RolePrinting}); err != nil {
		t.Errorf("staff tracking failed: %v", err)
	}

	if _, err := svc.GetTracking(ctx, "missing", Principal{ID: "user-1", Role: model.RoleCustomer}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing order tracking = %v, want ErrNotFound", err)
	}
}

func TestTimelineAccessControl(t *testing.T) {
	svc := newTestService(newMemRepo())
	seedOrder(t, svc, "ord-1", "user-1", "placed")

	_, err := svc.Timeline(context.Background(), "ord-1", ViewCustomer, Principal{ID: "user-2", Role: model.RoleCustomer})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign order timeline = %v, want ErrForbidden", err)
	}

	if _, err := svc.Timeline(context.Background(), "missing", ViewCustomer, Principal{ID: "user-1", Role: model.RoleCustomer}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing order = %v, want ErrNotFound", err)
	}
}

func TestParseTimelineView(t *testing.T) {
	staff := Principal{Role: model.RolePlant}
	customer := Principal{Role: model.RoleCustomer}

	if ParseTimelineView("staff", staff) != ViewStaff {
		t.Error("staff caller should get the staff rail")
	}
	if ParseTimelineView("staff", customer) != ViewCustomer {
		t.Error("customer must never get the staff rail")
	}
	if ParseTimelineView("", staff) != ViewCustomer {
		t.Error("default view is customer")
	}
}
