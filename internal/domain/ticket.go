package domain

import "strings"

// TicketStatus enumerates the resale lifecycle states.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusPaid     TicketStatus = "paid"
	TicketStatusComplete TicketStatus = "complete"
	TicketStatusCancel   TicketStatus = "cancel"
)

// RefundStatus is the sub-state that only matters while a ticket is
// cancelled.
type RefundStatus string

const (
	RefundStatusNone      RefundStatus = "none"
	RefundStatusInProcess RefundStatus = "in_process"
	RefundStatusRefunded  RefundStatus = "refunded"
)

// ParseTicketStatus normalizes a raw status value into the enum.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case TicketStatusPending:
		return TicketStatusPending, true
	case TicketStatusPaid:
		return TicketStatusPaid, true
	case TicketStatusComplete:
		return TicketStatusComplete, true
	case TicketStatusCancel:
		return TicketStatusCancel, true
	}
	return "", false
}

// ParseRefundStatus normalizes a raw refund value into the enum.
func ParseRefundStatus(raw string) (RefundStatus, bool) {
	switch RefundStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case RefundStatusNone:
		return RefundStatusNone, true
	case RefundStatusInProcess:
		return RefundStatusInProcess, true
	case RefundStatusRefunded:
		return RefundStatusRefunded, true
	}
	return "", false
}

// Ticket is the resale ticket as the entity store returns it. The
// store owns the record; this service only reads it and patches status
// transitions.
type Ticket struct {
	ID           EntityID     `json:"id"`
	Order        EntityID     `json:"order"`
	Status       TicketStatus `json:"status"`
	RefundStatus RefundStatus `json:"refund_status"`

	// Set on entry to paid.
	CustomerPayment string `json:"customer_payment,omitempty"`
	PaymentDate     string `json:"payment_date,omitempty"`

	// Set on entry to complete.
	SellingPrice string `json:"selling_price,omitempty"`
	Zone         string `json:"zone,omitempty"`
	Row          string `json:"row,omitempty"`
	Seat         string `json:"seat,omitempty"`

	// Descriptive fields carried through unchanged.
	PassportName string `json:"passport_name,omitempty"`
	FacebookName string `json:"facebook_name,omitempty"`
	MemberCode   string `json:"member_code,omitempty"`
	PriorityDate string `json:"priority_date,omitempty"`
	FstPt        string `json:"fst_pt,omitempty"`
}

// StatusNormalized returns the lifecycle status lowercased for
// comparisons; the store is not strict about casing.
func (t Ticket) StatusNormalized() TicketStatus {
	return TicketStatus(strings.ToLower(strings.TrimSpace(string(t.Status))))
}

// RefundNormalized returns the refund sub-state lowercased; anything
// unrecognized (including a missing value) reads as none.
func (t Ticket) RefundNormalized() RefundStatus {
	refund, ok := ParseRefundStatus(string(t.RefundStatus))
	if !ok {
		return RefundStatusNone
	}
	return refund
}

// EnrichedTicket is a read-time projection of a Ticket with its
// order/customer linkage resolved. Derived fields are recomputed on
// every aggregation pass and never written back.
type EnrichedTicket struct {
	Ticket
	ResolvedOrderID       *int64  `json:"resolved_order_id"`
	ResolvedCustomerEmail *string `json:"resolved_customer_email"`
}
