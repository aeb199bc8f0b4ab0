package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/resale-admin/internal/aggregate"
	"github.com/spec-kit/resale-admin/internal/audit"
	"github.com/spec-kit/resale-admin/internal/domain"
	"github.com/spec-kit/resale-admin/internal/entitystore"
	"github.com/spec-kit/resale-admin/internal/events"
	"github.com/spec-kit/resale-admin/internal/lifecycle"
	"github.com/spec-kit/resale-admin/internal/observability"
	"github.com/spec-kit/resale-admin/internal/view"
	apperrors "github.com/spec-kit/resale-admin/pkg/util/errorutil"
)

// Snapshot is one full aggregation pass over the store's collections.
type Snapshot struct {
	Tickets   []domain.EnrichedTicket
	Orders    aggregate.OrderIndex
	Customers aggregate.CustomerIndex
	LoadedAt  time.Time
}

// ConsoleService coordinates the admin console workflows: snapshot
// loading, filtered listing, and guarded ticket transitions.
type ConsoleService struct {
	store      entitystore.Client
	dispatcher events.Dispatcher
	audit      audit.Repository
	metrics    *observability.Metrics
	logger     *zap.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
}

// ConsoleDependencies bundles collaborators for the console service.
type ConsoleDependencies struct {
	Store      entitystore.Client
	Dispatcher events.Dispatcher
	AuditRepo  audit.Repository
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewConsoleService constructs the service.
func NewConsoleService(deps ConsoleDependencies) *ConsoleService {
	return &ConsoleService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		audit:      deps.AuditRepo,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Refresh fetches the three collections concurrently and replaces the
// snapshot atomically once all three have landed. A failed fetch keeps
// the previous snapshot; the enrichment never runs over a partial
// load.
func (s *ConsoleService) Refresh(ctx context.Context) (*Snapshot, error) {
	var (
		tickets   []domain.Ticket
		orders    []domain.Order
		customers []domain.Customer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tickets, err = s.store.ListTickets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.store.ListOrders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.store.ListCustomers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.RecordSnapshotLoad(false)
		s.logger.Warn("snapshot refresh failed", zap.Error(err))
		return nil, err
	}

	orderIndex := aggregate.BuildOrderIndex(orders)
	customerIndex := aggregate.BuildCustomerIndex(customers)
	snapshot := &Snapshot{
		Tickets:   aggregate.Enrich(tickets, orderIndex, customerIndex),
		Orders:    orderIndex,
		Customers: customerIndex,
		LoadedAt:  time.Now(),
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.metrics.RecordSnapshotLoad(true)
	s.publishEvent(ctx, events.Event{
		Type: events.EventSnapshotRefreshed,
		Payload: events.SnapshotRefreshedPayload{
			Tickets:   len(tickets),
			Orders:    len(orders),
			Customers: len(customers),
		},
	})
	return snapshot, nil
}

// ListTickets returns the enriched tickets matching the status
// selector, loading a snapshot first when none exists yet.
func (s *ConsoleService) ListTickets(ctx context.Context, selector string) ([]domain.EnrichedTicket, error) {
	snapshot, err := s.currentOrRefresh(ctx)
	if err != nil {
		return nil, err
	}
	return view.FilterByStatus(selector, snapshot.Tickets), nil
}

// Snapshot returns the latest loaded snapshot, or nil before the
// first load.
func (s *ConsoleService) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// GetTicket returns one ticket from the current snapshot.
func (s *ConsoleService) GetTicket(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	return s.findTicket(ctx, ticketID)
}

// ApplyTransition validates and executes a status transition for one
// ticket. The draft request has already collected the auxiliary
// fields; validation runs before any write, and a failed write leaves
// the snapshot untouched.
func (s *ConsoleService) ApplyTransition(ctx context.Context, req lifecycle.Request, operator string) (*domain.Ticket, error) {
	if !req.TicketID.Valid {
		return nil, apperrors.NewValidationError("ticket id required", nil)
	}
	ticket, err := s.findTicket(ctx, req.TicketID.Value)
	if err != nil {
		return nil, err
	}

	current := ticket.StatusNormalized()
	if err := lifecycle.Validate(current, req.Transition, req.Fields); err != nil {
		return nil, err
	}

	payload := lifecycle.Payload(req.Transition, req.Fields)
	updated, err := s.store.PatchTicket(ctx, req.TicketID.Value, payload)
	if err != nil {
		s.metrics.RecordTransition(string(req.Transition), false)
		return nil, err
	}
	s.metrics.RecordTransition(string(req.Transition), true)

	newStatus, _ := lifecycle.Target(req.Transition)
	s.recordAudit(ctx, audit.Entry{
		TicketID:  req.TicketID.Value,
		Operator:  operator,
		OldStatus: current,
		NewStatus: newStatus,
		OldRefund: ticket.RefundNormalized(),
		NewRefund: refundAfter(req.Transition, ticket),
		Payload:   payload,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: req.TicketID.Value,
		Operator: operator,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: current,
			NewStatus: newStatus,
			Fields:    req.Fields,
		},
	})
	s.reload(ctx)

	if updated == nil {
		// Store replied with a non-ticket body; the reload above
		// already restored a consistent view.
		refreshed, err := s.findTicket(ctx, req.TicketID.Value)
		if err != nil {
			return nil, nil
		}
		return &refreshed, nil
	}
	return updated, nil
}

// UpdateRefund moves the refund sub-state forward for a cancelled
// ticket.
func (s *ConsoleService) UpdateRefund(ctx context.Context, ticketID int64, next domain.RefundStatus, operator string) (*domain.Ticket, error) {
	ticket, err := s.findTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	current := ticket.RefundNormalized()
	if err := lifecycle.ValidateRefund(ticket.StatusNormalized(), current, next); err != nil {
		return nil, err
	}

	payload := lifecycle.RefundPayload(next)
	updated, err := s.store.PatchTicket(ctx, ticketID, payload)
	if err != nil {
		s.metrics.RecordTransition("refund", false)
		return nil, err
	}
	s.metrics.RecordTransition("refund", true)

	s.recordAudit(ctx, audit.Entry{
		TicketID:  ticketID,
		Operator:  operator,
		OldStatus: ticket.StatusNormalized(),
		NewStatus: ticket.StatusNormalized(),
		OldRefund: current,
		NewRefund: next,
		Payload:   payload,
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventRefundStatusChanged,
		TicketID: ticketID,
		Operator: operator,
		Payload: events.RefundStatusChangedPayload{
			OldRefund: current,
			NewRefund: next,
		},
	})
	s.reload(ctx)
	return updated, nil
}

// TransitionHistory returns the recorded audit trail for a ticket.
func (s *ConsoleService) TransitionHistory(ctx context.Context, ticketID int64, limit, offset int) ([]audit.Entry, error) {
	return s.audit.ListByTicket(ctx, ticketID, limit, offset)
}

func (s *ConsoleService) currentOrRefresh(ctx context.Context) (*Snapshot, error) {
	if snapshot := s.Snapshot(); snapshot != nil {
		return snapshot, nil
	}
	return s.Refresh(ctx)
}

func (s *ConsoleService) findTicket(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	snapshot, err := s.currentOrRefresh(ctx)
	if err != nil {
		return domain.Ticket{}, err
	}
	for _, t := range snapshot.Tickets {
		if t.ID.Valid && t.ID.Value == ticketID {
			return t.Ticket, nil
		}
	}
	return domain.Ticket{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
}

// reload re-fetches after a successful write so the displayed state
// always reflects the store's latest value. The write itself already
// succeeded; a failed reload only delays visibility until the next
// pass.
func (s *ConsoleService) reload(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.logger.Warn("post-write reload failed", zap.Error(err))
	}
}

func (s *ConsoleService) recordAudit(ctx context.Context, entry audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(ctx, &entry); err != nil {
		s.logger.Warn("audit write failed", zap.Error(err), zap.Int64("ticket_id", entry.TicketID))
	}
}

func (s *ConsoleService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func refundAfter(t lifecycle.Transition, ticket domain.Ticket) domain.RefundStatus {
	if t == lifecycle.TransitionCancel {
		return domain.RefundStatusInProcess
	}
	return ticket.RefundNormalized()
}
