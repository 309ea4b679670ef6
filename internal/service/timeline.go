package service

import (
	"context"

	"bottle-order-tracking/internal/lifecycle"
	"bottle-order-tracking/internal/model"
)

// TimelineView selects which canonical sequence a timeline is built against.
type TimelineView int

const (
	ViewCustomer TimelineView = iota
	ViewStaff
)

// ParseTimelineView maps the ?view= query value. Unknown values fall back to
// the customer rail; staff rail is never handed to non-staff callers.
func ParseTimelineView(s string, actor Principal) TimelineView {
	if s == "staff" && actor.Role.IsStaff() {
		return ViewStaff
	}
	return ViewCustomer
}

// Timeline loads an order and its tracking history and reconciles them into
// the per-step render model. The history fetch may fail without failing the
// whole call: the timeline then renders from the current status alone.
func (s *OrderStatusService) Timeline(ctx context.Context, orderID string, view TimelineView, actor Principal) ([]lifecycle.TimelineStep, error) {
	ord, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsStaff() && ord.UserID != actor.ID {
		return nil, ErrForbidden
	}

	history, err := s.repo.FindTracking(ctx, orderID)
	if err != nil {
		s.log.Warnw("tracking fetch failed, rendering timeline without history",
			"orderId", orderID, "error", err)
		history = nil
	}

	seq := lifecycle.CustomerSequence()
	if view == ViewStaff {
		seq = lifecycle.StaffSequence()
	}

	return lifecycle.Reconcile(ord.Status, toRecords(history), seq, ord.ExpectedDelivery), nil
}

func toRecords(history []model.StatusRecord) []lifecycle.Record {
	out := make([]lifecycle.Record, 0, len(history))
	for _, h := range history {
		out = append(out, lifecycle.Record{Status: h.Status, ChangedAt: h.ChangedAt})
	}
	return out
}
