// Package lifecycle guards the resale ticket status machine: which
// transitions are legal, what data each one must carry, and the refund
// sub-state that only exists while a ticket is cancelled.
package lifecycle

import (
	"fmt"
	"strings"

	"github.com/spec-kit/resale-admin/internal/domain"
	apperrors "github.com/spec-kit/resale-admin/pkg/util/errorutil"
)

// Transition identifies a guarded status move.
type Transition string

const (
	TransitionMarkPaid Transition = "mark_paid"
	TransitionComplete Transition = "complete"
	TransitionCancel   Transition = "cancel"
	TransitionRevert   Transition = "revert"
)

// Draft field names, matching the entity store's PATCH body keys.
const (
	FieldCustomerPayment = "customer_payment"
	FieldPaymentDate     = "payment_date"
	FieldSellingPrice    = "selling_price"
	FieldZone            = "zone"
	FieldRow             = "row"
	FieldSeat            = "seat"
)

type rule struct {
	from     []domain.TicketStatus
	to       domain.TicketStatus
	required []string
	// refund, when set, is forced onto the ticket as part of the
	// transition payload.
	refund domain.RefundStatus
}

var rules = map[Transition]rule{
	TransitionMarkPaid: {
		from:     []domain.TicketStatus{domain.TicketStatusPending},
		to:       domain.TicketStatusPaid,
		required: []string{FieldCustomerPayment, FieldPaymentDate},
	},
	TransitionComplete: {
		from:     []domain.TicketStatus{domain.TicketStatusPaid},
		to:       domain.TicketStatusComplete,
		required: []string{FieldSellingPrice, FieldZone, FieldRow, FieldSeat},
	},
	TransitionCancel: {
		from:   []domain.TicketStatus{domain.TicketStatusPaid},
		to:     domain.TicketStatusCancel,
		refund: domain.RefundStatusInProcess,
	},
	// Revert leaves auxiliary fields from the prior state in place;
	// only the status itself goes back to pending.
	TransitionRevert: {
		from: []domain.TicketStatus{
			domain.TicketStatusPaid,
			domain.TicketStatusComplete,
			domain.TicketStatusCancel,
		},
		to: domain.TicketStatusPending,
	},
}

// ParseTransition resolves a wire value into a known transition.
func ParseTransition(raw string) (Transition, bool) {
	t := Transition(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := rules[t]; !ok {
		return "", false
	}
	return t, true
}

// Target returns the status the transition moves into.
func Target(t Transition) (domain.TicketStatus, bool) {
	r, ok := rules[t]
	if !ok {
		return "", false
	}
	return r.to, true
}

// RequiredFields lists the auxiliary fields the transition must carry.
func RequiredFields(t Transition) []string {
	r, ok := rules[t]
	if !ok {
		return nil
	}
	return append([]string(nil), r.required...)
}

// Validate checks that the transition is legal from the current status
// and that every required field is present and non-empty. It runs
// before any write; a rejected transition never reaches the store.
func Validate(current domain.TicketStatus, t Transition, fields map[string]string) error {
	r, ok := rules[t]
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown transition %q", t), nil)
	}
	allowed := false
	for _, from := range r.from {
		if from == current {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperrors.NewConflict(
			fmt.Sprintf("transition %s not allowed from status %s", t, current),
			map[string]any{"status": string(current), "transition": string(t)},
		)
	}
	missing := missingFields(r.required, fields)
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required transition fields", map[string]any{
			"fields": missing,
		})
	}
	return nil
}

// Payload builds the PATCH body for a validated transition: the target
// status, the required fields, and the forced refund sub-state on
// entry to cancel.
func Payload(t Transition, fields map[string]string) map[string]any {
	r, ok := rules[t]
	if !ok {
		return nil
	}
	body := map[string]any{"status": string(r.to)}
	for _, name := range r.required {
		body[name] = fields[name]
	}
	if r.refund != "" {
		body["refund_status"] = string(r.refund)
	}
	return body
}

// ValidateRefund guards the refund sub-state. The only forward move
// this service exposes is in_process → refunded, and only while the
// ticket is cancelled. Anything else is an out-of-band override done
// directly against the store.
func ValidateRefund(status domain.TicketStatus, current, next domain.RefundStatus) error {
	if status != domain.TicketStatusCancel {
		return apperrors.NewConflict(
			fmt.Sprintf("refund status is only mutable while cancelled, ticket is %s", status),
			map[string]any{"status": string(status)},
		)
	}
	if next != domain.RefundStatusRefunded {
		return apperrors.NewValidationError(
			fmt.Sprintf("refund status cannot be set to %q", next), nil)
	}
	if current != domain.RefundStatusInProcess {
		return apperrors.NewConflict(
			fmt.Sprintf("refund already %s", current),
			map[string]any{"refund_status": string(current)},
		)
	}
	return nil
}

// RefundPayload builds the PATCH body for a refund sub-state move.
func RefundPayload(next domain.RefundStatus) map[string]any {
	return map[string]any{"refund_status": string(next)}
}

func missingFields(required []string, fields map[string]string) []string {
	var missing []string
	for _, name := range required {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
