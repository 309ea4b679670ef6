package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bottle-order-tracking/internal/dto"
	"bottle-order-tracking/internal/lifecycle"
	"bottle-order-tracking/internal/model"
	"bottle-order-tracking/internal/repository"
)

// OrderRepository is the persistence port the Mongo repository implements.
type OrderRepository interface {
	Save(ctx context.Context, o *model.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Order, error)
	FindTracking(ctx context.Context, orderID string) ([]model.StatusRecord, error)
	UpdateStatus(ctx context.Context, orderID, status, declineReason string, record model.StatusRecord) error
	UpdatePaymentStatus(ctx context.Context, orderID, paymentStatus string) error
	FindAll(ctx context.Context, limit, offset int64) ([]*model.Order, error)
	FindByStatus(ctx context.Context, status string, limit, offset int64) ([]*model.Order, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int64) ([]*model.Order, error)
	InsertLead(ctx context.Context, lead *model.FranchiseLead) error
	FindLeads(ctx context.Context, limit, offset int64) ([]*model.FranchiseLead, error)
}

// Principal is the authenticated caller, as resolved by the auth middleware.
type Principal struct {
	ID   string
	Name string
	Role model.Role
}

// Business errors the controller maps onto HTTP codes.
var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrFinalState         = errors.New("order is in a final state")
	ErrOrderAlreadyExists = errors.New("order was already initialized")
	ErrReasonRequired     = errors.New("a reason is required to decline an order")
	ErrInvalidPayment     = errors.New("invalid payment status transition")
)

type OrderStatusService struct {
	repo OrderRepository
	log  *zap.SugaredLogger
}

func NewOrderStatusService(r OrderRepository, log *zap.SugaredLogger) *OrderStatusService {
	return &OrderStatusService{repo: r, log: log}
}

// Transition tables keyed by normalized current status. The staff sequence is
// the one the backend walks; who may take each edge depends on the role.
var printingTransitions = map[string][]string{
	lifecycle.StatusPlaced:   {lifecycle.StatusPrinting},
	lifecycle.StatusPrinting: {lifecycle.StatusReadyForPlant},
}

var plantTransitions = map[string][]string{
	lifecycle.StatusReadyForPlant:   {lifecycle.StatusPlantProcessing},
	lifecycle.StatusPlantProcessing: {lifecycle.StatusDispatched},
	lifecycle.StatusDispatched:      {lifecycle.StatusCompleted},
}

// Customers may only back out early, and only from their own orders.
var customerTransitions = map[string][]string{
	lifecycle.StatusPlaced:   {lifecycle.StatusCancelled},
	lifecycle.StatusPrinting: {lifecycle.StatusCancelled},
}

// No further transition leaves these.
var finalStates = map[string]bool{
	lifecycle.StatusCompleted: true,
	lifecycle.StatusDeclined:  true,
	lifecycle.StatusCancelled: true,
}

var knownStatuses = map[string]bool{
	lifecycle.StatusPlaced:          true,
	lifecycle.StatusPaymentUploaded: true,
	lifecycle.StatusPrinting:        true,
	lifecycle.StatusProcessing:      true,
	lifecycle.StatusDispatch:        true,
	lifecycle.StatusReadyForPlant:   true,
	lifecycle.StatusPlantProcessing: true,
	lifecycle.StatusDispatched:      true,
	lifecycle.StatusCompleted:       true,
	lifecycle.StatusDelivered:       true,
	lifecycle.StatusDeclined:        true,
	lifecycle.StatusCancelled:       true,
}

// InitOrder creates the tracking document for a new order. Every order starts
// at placed with payment pending, regardless of what the caller sends.
// Invoked from the Rabbit consumer (primary) or via API for back-office use.
func (s *OrderStatusService) InitOrder(ctx context.Context, orderID, userID string, details dto.BottleSpec) (*model.Order, error) {
	existing, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrOrderAlreadyExists
	}

	order := &model.Order{
		OrderID:       orderID,
		UserID:        userID,
		Status:        lifecycle.StatusPlaced,
		PaymentStatus: model.PaymentPending,
		Variant:       details.Variant,
		CapColor:      details.CapColor,
		Volume:        details.Volume,
		Qty:           details.Qty,
		LabelURL:      details.LabelURL,
		CompanyName:   details.CompanyName,
	}

	return order, s.repo.Save(ctx, order)
}

// Getters
func (s *OrderStatusService) GetByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// GetTracking returns an order's status history. Customers only see their
// own orders; history rows carry actor IDs and decline reasons.
func (s *OrderStatusService) GetTracking(ctx context.Context, orderID string, actor Principal) ([]model.StatusRecord, error) {
	ord, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && ord.UserID != actor.ID {
		return nil, ErrForbidden
	}
	return s.repo.FindTracking(ctx, orderID)
}

func (s *OrderStatusService) GetAll(ctx context.Context, limit, offset int64) ([]*model.Order, error) {
	return s.repo.FindAll(ctx, limit, offset)
}

func (s *OrderStatusService) GetByStatus(ctx context.Context, status string, limit, offset int64) ([]*model.Order, error) {
	return s.repo.FindByStatus(ctx, status, limit, offset)
}

func (s *OrderStatusService) GetByUserID(ctx context.Context, userID string, limit, offset int64) ([]*model.Order, error) {
	return s.repo.FindByUserID(ctx, userID, limit, offset)
}

// UpdateStatus validates and performs a lifecycle transition under the
// caller's role. Spelling of the incoming status is normalized before any
// table lookup and the canonical token is what gets stored.
func (s *OrderStatusService) UpdateStatus(ctx context.Context, orderID, newStatus, reason string, actor Principal) error {
	ord, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	// Staff-sequence keys so dispatch/dispatched spellings land on one edge.
	seq := lifecycle.StaffSequence()
	current := seq.Key(ord.Status)
	next := seq.Key(newStatus)

	if current == next {
		return nil
	}
	if finalStates[current] {
		return ErrFinalState
	}
	if !knownStatuses[next] {
		return ErrInvalidTransition
	}

	isOwner := ord.UserID == actor.ID

	var allowed bool
	switch actor.Role {
	case model.RoleCustomer:
		if !isOwner {
			return ErrForbidden
		}
		allowed = contains(customerTransitions[current], next)
	case model.RolePrinting:
		allowed = contains(printingTransitions[current], next)
	case model.RolePlant:
		allowed = contains(plantTransitions[current], next)
	case model.RoleAdmin:
		// Admin may take any staff edge, and may decline any live order.
		allowed = contains(printingTransitions[current], next) ||
			contains(plantTransitions[current], next) ||
			next == lifecycle.StatusDeclined
	case model.RoleBusinessOwner:
		return ErrForbidden
	default:
		return ErrForbidden
	}

	if !allowed {
		return ErrInvalidTransition
	}

	var declineReason string
	if next == lifecycle.StatusDeclined {
		if reason == "" {
			return ErrReasonRequired
		}
		declineReason = reason
	}

	// Persist the canonical token, not the caller's spelling: the status
	// filter matches by exact string.
	record := model.StatusRecord{
		Status:    next,
		Reason:    reason,
		ChangedBy: actor.ID,
		ChangedAt: time.Now().UTC(),
	}

	return s.repo.UpdateStatus(ctx, orderID, next, declineReason, record)
}

// UpdatePaymentStatus advances the payment-proof machine. Customers upload
// proof for their own orders; admins verify or reject it.
func (s *OrderStatusService) UpdatePaymentStatus(ctx context.Context, orderID, newStatus string, actor Principal) error {
	ord, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	next := lifecycle.Normalize(newStatus)
	current := lifecycle.Normalize(ord.PaymentStatus)
	if current == "" {
		current = model.PaymentPending
	}

	switch actor.Role {
	case model.RoleCustomer:
		if ord.UserID != actor.ID {
			return ErrForbidden
		}
		if current != model.PaymentPending || next != model.PaymentUploaded {
			return ErrInvalidPayment
		}
	case model.RoleAdmin:
		if current != model.PaymentUploaded ||
			(next != model.PaymentVerified && next != model.PaymentRejected) {
			return ErrInvalidPayment
		}
	case model.RolePrinting, model.RolePlant, model.RoleBusinessOwner:
		return ErrForbidden
	default:
		return ErrForbidden
	}

	return s.repo.UpdatePaymentStatus(ctx, orderID, newStatus)
}

// SubmitLead stores a franchise application.
func (s *OrderStatusService) SubmitLead(ctx context.Context, lead *model.FranchiseLead) error {
	return s.repo.InsertLead(ctx, lead)
}

func (s *OrderStatusService) GetLeads(ctx context.Context, limit, offset int64) ([]*model.FranchiseLead, error) {
	return s.repo.FindLeads(ctx, limit, offset)
}

func contains(arr []string, s string) bool {
	for _, v := range arr {
		if v == s {
			return true
		}
	}
	return false
}
