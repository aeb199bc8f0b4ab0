package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/resale-admin/internal/domain"
	"github.com/spec-kit/resale-admin/internal/events"
	"github.com/spec-kit/resale-admin/internal/lifecycle"
	"github.com/spec-kit/resale-admin/internal/observability"
)

type patchCall struct {
	id      int64
	payload map[string]any
}

type fakeStore struct {
	tickets   []domain.Ticket
	orders    []domain.Order
	customers []domain.Customer
	listErr   error
	patchErr  error
	patches   []patchCall
}

func (f *fakeStore) ListTickets(context.Context) ([]domain.Ticket, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Ticket(nil), f.tickets...), nil
}

func (f *fakeStore) ListOrders(context.Context) ([]domain.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Order(nil), f.orders...), nil
}

func (f *fakeStore) ListCustomers(context.Context) ([]domain.Customer, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Customer(nil), f.customers...), nil
}

func (f *fakeStore) PatchTicket(_ context.Context, id int64, payload map[string]any) (*domain.Ticket, error) {
	if f.patchErr != nil {
		return nil, f.patchErr
	}
	f.patches = append(f.patches, patchCall{id: id, payload: payload})
	for i := range f.tickets {
		if f.tickets[i].ID.Value != id {
			continue
		}
		if status, ok := payload["status"].(string); ok {
			f.tickets[i].Status = domain.TicketStatus(status)
		}
		if refund, ok := payload["refund_status"].(string); ok {
			f.tickets[i].RefundStatus = domain.RefundStatus(refund)
		}
		if payment, ok := payload["customer_payment"].(string); ok {
			f.tickets[i].CustomerPayment = payment
		}
		updated := f.tickets[i]
		return &updated, nil
	}
	return nil, errors.New("ticket not found in fake store")
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickets: []domain.Ticket{
			{ID: domain.NewEntityID(1), Order: domain.NewEntityID(10), Status: domain.TicketStatusPending},
			{ID: domain.NewEntityID(2), Order: domain.NewEntityID(11), Status: domain.TicketStatusPaid},
			{ID: domain.NewEntityID(3), Order: domain.NewEntityID(10), Status: domain.TicketStatusCancel, RefundStatus: domain.RefundStatusInProcess},
		},
		orders: []domain.Order{
			{ID: domain.NewEntityID(10), Customer: domain.NewEntityID(5)},
			{ID: domain.NewEntityID(11), Customer: domain.NewEntityID(99)},
		},
		customers: []domain.Customer{
			{ID: domain.NewEntityID(5), Email: "a@x.com"},
		},
	}
}

func newConsole(store *fakeStore) *ConsoleService {
	return NewConsoleService(ConsoleDependencies{
		Store:      store,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
}

func TestRefresh_AggregatesSnapshot(t *testing.T) {
	svc := newConsole(newFakeStore())

	snapshot, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Tickets, 3)

	first := snapshot.Tickets[0]
	require.NotNil(t, first.ResolvedOrderID)
	assert.Equal(t, int64(10), *first.ResolvedOrderID)
	require.NotNil(t, first.ResolvedCustomerEmail)
	assert.Equal(t, "a@x.com", *first.ResolvedCustomerEmail)

	// Order 11 points at customer 99, which does not exist.
	second := snapshot.Tickets[1]
	assert.Nil(t, second.ResolvedCustomerEmail)
}

func TestRefresh_FailureKeepsPriorSnapshot(t *testing.T) {
	store := newFakeStore()
	svc := newConsole(store)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	prior := svc.Snapshot()

	store.listErr = errors.New("store down")
	_, err = svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Same(t, prior, svc.Snapshot())
}

func TestListTickets_FilterAndIdentity(t *testing.T) {
	svc := newConsole(newFakeStore())

	all, err := svc.ListTickets(context.Background(), "all")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending, err := svc.ListTickets(context.Background(), "PENDING")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID.Value)

	paid, err := svc.ListTickets(context.Background(), "paid")
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, int64(2), paid[0].ID.Value)
}

func TestApplyTransition_MarkPaid(t *testing.T) {
	store := newFakeStore()
	svc := newConsole(store)

	req := lifecycle.Request{
		TicketID:   domain.NewEntityID(1),
		Transition: lifecycle.TransitionMarkPaid,
		Fields: map[string]string{
			lifecycle.FieldCustomerPayment: "bank transfer",
			lifecycle.FieldPaymentDate:     "2026-08-20",
		},
	}
	updated, err := svc.ApplyTransition(context.Background(), req, "op-1")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, domain.TicketStatusPaid, updated.StatusNormalized())

	require.Len(t, store.patches, 1)
	assert.Equal(t, "paid", store.patches[0].payload["status"])
	assert.Equal(t, "bank transfer", store.patches[0].payload["customer_payment"])

	// Mandatory reload picked up the write.
	paid, err := svc.ListTickets(context.Background(), "paid")
	require.NoError(t, err)
	assert.Len(t, paid, 2)
}

func TestApplyTransition_RejectedBeforeWrite(t *testing.T) {
	store := newFakeStore()
	svc := newConsole(store)

	req := lifecycle.Request{
		TicketID:   domain.NewEntityID(1),
		Transition: lifecycle.TransitionMarkPaid,
		Fields: map[string]string{
			lifecycle.FieldCustomerPayment: "",
			lifecycle.FieldPaymentDate:     "2026-08-20",
		},
	}
	_, err := svc.ApplyTransition(context.Background(), req, "op-1")
	require.Error(t, err)
	assert.Empty(t, store.patches)
}

func TestApplyTransition_PendingCannotComplete(t *testing.T) {
	store := newFakeStore()
	svc := newConsole(store)

	req := lifecycle.Request{
		TicketID:   domain.NewEntityID(1),
		Transition: lifecycle.TransitionComplete,
		Fields: map[string]string{
			lifecycle.FieldSellingPrice: "120",
			lifecycle.FieldZone:         "A",
			lifecycle.FieldRow:          "3",
			lifecycle.FieldSeat:         "14",
		},
	}
	_, err := svc.ApplyTransition(context.Background(), req, "op-1")
	require.Error(t, err)
	assert.Empty(t, store.patches)
}

func TestApplyTransition_CancelForcesRefundInProcess(t *testing.T) {
	store := newFakeStore()
	svc := newConsole(store)

	req := lifecycle.Request{
		TicketID:   domain.NewEntityID(2),
		Transition: lifecycle.TransitionCancel,
	}
	updated, err := svc.ApplyTransition(context.Background(), req, "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusInProcess, updated.RefundNormalized())

	require.Len(t, store.patches, 1)
	assert.Equal(t, "in_process", store.patches[0].payload["refund_status"])
}

func TestApplyTransition_FailedWriteLeavesStateUnchanged(t *testing.T) {
	store := newFakeStore()
	svc := newConsole(store)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	prior := svc.Snapshot()

	store.patchErr = errors.New("store rejected the write")
	req := lifecycle.Request{
		TicketID:   domain.NewEntityID(1),
		Transition: lifecycle.TransitionMarkPaid,
		Fields: map[string]string{
			lifecycle.FieldCustomerPayment: "cash",
			lifecycle.FieldPaymentDate:     "2026-08-20",
		},
	}
	_, err = svc.ApplyTransition(context.Background(), req, "op-1")
	require.Error(t, err)
	assert.Same(t, prior, svc.Snapshot())
}

func TestApplyTransition_UnknownTicket(t *testing.T) {
	svc := newConsole(newFakeStore())

	req := lifecycle.Request{
		TicketID:   domain.NewEntityID(404),
		Transition: lifecycle.TransitionRevert,
	}
	_, err := svc.ApplyTransition(context.Background(), req, "op-1")
	assert.Error(t, err)
}

func TestApplyTransition_RevertLeavesAuxiliaryFields(t *testing.T) {
	store := newFakeStore()
	store.tickets[1].CustomerPayment = "wire"
	svc := newConsole(store)

	req := lifecycle.Request{
		TicketID:   domain.NewEntityID(2),
		Transition: lifecycle.TransitionRevert,
	}
	updated, err := svc.ApplyTransition(context.Background(), req, "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, updated.StatusNormalized())
	assert.Equal(t, "wire", updated.CustomerPayment)

	require.Len(t, store.patches, 1)
	assert.Equal(t, map[string]any{"status": "pending"}, store.patches[0].payload)
}

func TestUpdateRefund_Forward(t *testing.T) {
	store := newFakeStore()
	svc := newConsole(store)

	updated, err := svc.UpdateRefund(context.Background(), 3, domain.RefundStatusRefunded, "op-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RefundStatusRefunded, updated.RefundNormalized())
}

func TestUpdateRefund_RejectsNonCancelledTicket(t *testing.T) {
	store := newFakeStore()
	svc := newConsole(store)

	_, err := svc.UpdateRefund(context.Background(), 2, domain.RefundStatusRefunded, "op-1")
	require.Error(t, err)
	assert.Empty(t, store.patches)
}
