// Package view partitions enriched tickets into the status views the
// console displays.
package view

import (
	"strings"

	"github.com/spec-kit/resale-admin/internal/domain"
)

// SelectorAll is the identity selector.
const SelectorAll = "all"

// FilterByStatus returns the subsequence of tickets whose status
// matches the selector, case-insensitively, preserving source order.
// "all" returns the input unchanged; an unknown selector yields an
// empty result rather than an error.
func FilterByStatus(selector string, tickets []domain.EnrichedTicket) []domain.EnrichedTicket {
	normalized := strings.ToLower(strings.TrimSpace(selector))
	if normalized == SelectorAll {
		return tickets
	}
	if _, ok := domain.ParseTicketStatus(normalized); !ok {
		return []domain.EnrichedTicket{}
	}
	filtered := make([]domain.EnrichedTicket, 0, len(tickets))
	for _, t := range tickets {
		if string(t.StatusNormalized()) == normalized {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Columns returns the ordered column set the status view displays. One
// data-driven lookup replaces the per-filter table duplication of the
// previous console.
func Columns(selector string) []string {
	base := []string{"resolved_order_id", "resolved_customer_email", "passport_name", "facebook_name", "member_code"}
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "paid":
		return append(base, "status", "customer_payment", "payment_date")
	case "complete":
		return append(base, "status", "selling_price", "zone", "row", "seat")
	case "cancel":
		return append(base, "customer_payment", "status")
	case SelectorAll, "pending":
		return append(base, "status")
	default:
		return nil
	}
}
