package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/resale-admin/internal/domain"
)

func pendingTicket() domain.Ticket {
	return domain.Ticket{
		ID:     domain.NewEntityID(1),
		Status: domain.TicketStatusPending,
	}
}

func TestDraft_OpenEditSubmit(t *testing.T) {
	var d Draft
	require.NoError(t, d.Open(pendingTicket(), TransitionMarkPaid))
	require.NoError(t, d.Edit(FieldCustomerPayment, "wire"))
	require.NoError(t, d.Edit(FieldPaymentDate, "2026-08-10"))

	req, err := d.Submit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), req.TicketID.Value)
	assert.Equal(t, TransitionMarkPaid, req.Transition)
	assert.Equal(t, "wire", req.Fields[FieldCustomerPayment])
	assert.False(t, d.IsOpen())
}

func TestDraft_OpenRejectsIllegalTransition(t *testing.T) {
	var d Draft
	err := d.Open(pendingTicket(), TransitionComplete)
	assert.Error(t, err)
	assert.False(t, d.IsOpen())
}

func TestDraft_OpenResetsStaleFields(t *testing.T) {
	var d Draft
	require.NoError(t, d.Open(pendingTicket(), TransitionMarkPaid))
	require.NoError(t, d.Edit(FieldCustomerPayment, "leftover"))

	require.NoError(t, d.Open(pendingTicket(), TransitionMarkPaid))
	assert.Empty(t, d.Field(FieldCustomerPayment))
}

func TestDraft_EditUnknownField(t *testing.T) {
	var d Draft
	require.NoError(t, d.Open(pendingTicket(), TransitionMarkPaid))
	assert.Error(t, d.Edit(FieldSeat, "12"))
}

func TestDraft_SubmitIncomplete(t *testing.T) {
	var d Draft
	require.NoError(t, d.Open(pendingTicket(), TransitionMarkPaid))
	require.NoError(t, d.Edit(FieldPaymentDate, "2026-08-10"))

	_, err := d.Submit()
	assert.Error(t, err)
	// The draft stays open so the operator can fill the gap and retry.
	assert.True(t, d.IsOpen())
}

func TestDraft_CancelDiscards(t *testing.T) {
	var d Draft
	require.NoError(t, d.Open(pendingTicket(), TransitionMarkPaid))
	d.Cancel()
	assert.False(t, d.IsOpen())

	_, err := d.Submit()
	assert.Error(t, err)
}

func TestDraft_SubmitWithoutOpen(t *testing.T) {
	var d Draft
	_, err := d.Submit()
	assert.Error(t, err)
	assert.Error(t, d.Edit(FieldSeat, "1"))
}

func TestDraft_CancelTransitionNeedsNoFields(t *testing.T) {
	var d Draft
	ticket := pendingTicket()
	ticket.Status = domain.TicketStatusPaid
	require.NoError(t, d.Open(ticket, TransitionCancel))

	req, err := d.Submit()
	require.NoError(t, err)
	assert.Equal(t, TransitionCancel, req.Transition)
	assert.Empty(t, req.Fields)
}
