// Package aggregate joins tickets to orders to customers purely from
// client-held snapshots. Everything here is a pure function of its
// inputs; dirty references degrade to nil derived fields so admin
// visibility never breaks on dirty data.
package aggregate

import "github.com/spec-kit/resale-admin/internal/domain"

// OrderIndex maps order id to owning customer id.
type OrderIndex map[int64]int64

// CustomerIndex maps customer id to email. An empty email is kept as
// an absent value.
type CustomerIndex map[int64]string

// BuildOrderIndex derives the order → customer lookup from an orders
// snapshot. Orders whose id or customer reference is unresolvable are
// skipped; duplicate order ids resolve last-write-wins.
func BuildOrderIndex(orders []domain.Order) OrderIndex {
	index := make(OrderIndex, len(orders))
	for _, o := range orders {
		if !o.ID.Valid || !o.Customer.Valid {
			continue
		}
		index[o.ID.Value] = o.Customer.Value
	}
	return index
}

// BuildCustomerIndex derives the customer → email lookup from a
// customers snapshot, skipping customers with unresolvable ids.
func BuildCustomerIndex(customers []domain.Customer) CustomerIndex {
	index := make(CustomerIndex, len(customers))
	for _, c := range customers {
		if !c.ID.Valid {
			continue
		}
		index[c.ID.Value] = c.Email
	}
	return index
}

// Enrich projects each ticket into its read-time view with a resolved
// order id and customer email. Missing links degrade to nil fields;
// the output always has the same tickets in the same order as the
// input.
func Enrich(tickets []domain.Ticket, orders OrderIndex, customers CustomerIndex) []domain.EnrichedTicket {
	enriched := make([]domain.EnrichedTicket, 0, len(tickets))
	for _, t := range tickets {
		row := domain.EnrichedTicket{Ticket: t}
		if t.Order.Valid {
			orderID := t.Order.Value
			row.ResolvedOrderID = &orderID
			if customerID, ok := orders[orderID]; ok {
				if email, ok := customers[customerID]; ok && email != "" {
					row.ResolvedCustomerEmail = &email
				}
			}
		}
		enriched = append(enriched, row)
	}
	return enriched
}
