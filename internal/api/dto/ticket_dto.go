package dto

import (
	"time"

	"github.com/spec-kit/resale-admin/internal/domain"
)

// TicketRow is one enriched ticket as the console lists it.
type TicketRow struct {
	ID                    *int64              `json:"id"`
	ResolvedOrderID       *int64              `json:"resolved_order_id"`
	ResolvedCustomerEmail *string             `json:"resolved_customer_email"`
	Status                domain.TicketStatus `json:"status"`
	RefundStatus          domain.RefundStatus `json:"refund_status,omitempty"`
	CustomerPayment       string              `json:"customer_payment,omitempty"`
	PaymentDate           string              `json:"payment_date,omitempty"`
	SellingPrice          string              `json:"selling_price,omitempty"`
	Zone                  string              `json:"zone,omitempty"`
	Row                   string              `json:"row,omitempty"`
	Seat                  string              `json:"seat,omitempty"`
	PassportName          string              `json:"passport_name,omitempty"`
	FacebookName          string              `json:"facebook_name,omitempty"`
	MemberCode            string              `json:"member_code,omitempty"`
	PriorityDate          string              `json:"priority_date,omitempty"`
	FstPt                 string              `json:"fst_pt,omitempty"`
}

// TicketListResponse carries the filtered rows plus the column set the
// selected status view displays.
type TicketListResponse struct {
	Filter   string      `json:"filter"`
	Columns  []string    `json:"columns"`
	Count    int         `json:"count"`
	LoadedAt time.Time   `json:"loaded_at"`
	Tickets  []TicketRow `json:"tickets"`
}

// TransitionRequest is the operator's submitted transition draft.
type TransitionRequest struct {
	Transition string            `json:"transition"`
	Fields     map[string]string `json:"fields"`
}

// RefundRequest moves the refund sub-state.
type RefundRequest struct {
	RefundStatus string `json:"refund_status"`
}

// LoginRequest is the operator credential payload.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HistoryEntry is one recorded transition.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	Operator  string    `json:"operator"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	OldRefund string    `json:"old_refund,omitempty"`
	NewRefund string    `json:"new_refund,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
