package lifecycle

import (
	"fmt"

	"github.com/spec-kit/resale-admin/internal/domain"
	apperrors "github.com/spec-kit/resale-admin/pkg/util/errorutil"
)

// Draft is the pending-but-unconfirmed transition an operator is
// filling in. Opening a draft binds it to one ticket and one
// transition and resets every required field to empty, so nothing from
// a stale draft leaks into a new one.
type Draft struct {
	ticketID   domain.EntityID
	current    domain.TicketStatus
	transition Transition
	fields     map[string]string
	open       bool
}

// Request is a completed draft ready for the state machine.
type Request struct {
	TicketID   domain.EntityID
	Transition Transition
	Fields     map[string]string
}

// Open binds the draft to a ticket and a target transition. The
// transition must be legal from the ticket's current status; field
// completeness is checked later, at submit.
func (d *Draft) Open(ticket domain.Ticket, t Transition) error {
	r, ok := rules[t]
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("unknown transition %q", t), nil)
	}
	current := ticket.StatusNormalized()
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

	d.ticketID = ticket.ID
	d.current = current
	d.transition = t
	d.fields = make(map[string]string, len(r.required))
	for _, name := range r.required {
		d.fields[name] = ""
	}
	d.open = true
	return nil
}

// Edit updates one field of the open draft.
func (d *Draft) Edit(field, value string) error {
	if !d.open {
		return apperrors.NewConflict("no transition draft open", nil)
	}
	if _, ok := d.fields[field]; !ok {
		return apperrors.NewValidationError(
			fmt.Sprintf("field %q is not part of transition %s", field, d.transition), nil)
	}
	d.fields[field] = value
	return nil
}

// Field returns the current draft value for a field.
func (d *Draft) Field(name string) string {
	return d.fields[name]
}

// IsOpen reports whether a draft is in flight.
func (d *Draft) IsOpen() bool {
	return d.open
}

// Cancel discards the draft without any write.
func (d *Draft) Cancel() {
	*d = Draft{}
}

// Submit validates the draft against the transition's required fields
// and hands back the request for the state machine. The draft closes
// on success.
func (d *Draft) Submit() (Request, error) {
	if !d.open {
		return Request{}, apperrors.NewConflict("no transition draft open", nil)
	}
	if err := Validate(d.current, d.transition, d.fields); err != nil {
		return Request{}, err
	}
	req := Request{
		TicketID:   d.ticketID,
		Transition: d.transition,
		Fields:     d.fields,
	}
	*d = Draft{}
	return req, nil
}
