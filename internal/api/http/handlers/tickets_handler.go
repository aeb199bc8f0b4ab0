package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resale-admin/internal/api/dto"
	"github.com/spec-kit/resale-admin/internal/auth"
	"github.com/spec-kit/resale-admin/internal/domain"
	"github.com/spec-kit/resale-admin/internal/lifecycle"
	"github.com/spec-kit/resale-admin/internal/service"
	"github.com/spec-kit/resale-admin/internal/view"
	apperrors "github.com/spec-kit/resale-admin/pkg/util/errorutil"
)

// TicketsHandler exposes the admin ticket endpoints.
type TicketsHandler struct {
	service *service.ConsoleService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(consoleService *service.ConsoleService) *TicketsHandler {
	return &TicketsHandler{service: consoleService}
}

// ListTickets GET /admin/tickets?status=...
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	selector := c.Query("status", view.SelectorAll)
	tickets, err := h.service.ListTickets(c.Context(), selector)
	if err != nil {
		return err
	}
	rows := make([]dto.TicketRow, 0, len(tickets))
	for i := range tickets {
		rows = append(rows, ticketRow(tickets[i]))
	}
	response := dto.TicketListResponse{
		Filter:  selector,
		Columns: view.Columns(selector),
		Count:   len(rows),
		Tickets: rows,
	}
	if snapshot := h.service.Snapshot(); snapshot != nil {
		response.LoadedAt = snapshot.LoadedAt
	}
	return c.JSON(fiber.Map{"data": response})
}

// Refresh POST /admin/tickets/refresh.
func (h *TicketsHandler) Refresh(c *fiber.Ctx) error {
	snapshot, err := h.service.Refresh(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"tickets":   len(snapshot.Tickets),
		"loaded_at": snapshot.LoadedAt,
	}})
}

// Transition POST /admin/tickets/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	operator, ok := auth.OperatorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	transition, ok := lifecycle.ParseTransition(req.Transition)
	if !ok {
		return apperrors.NewValidationError("unknown transition", map[string]any{
			"transition": req.Transition,
		})
	}

	ticket, err := h.service.GetTicket(c.Context(), ticketID)
	if err != nil {
		return err
	}

	var draft lifecycle.Draft
	if err := draft.Open(ticket, transition); err != nil {
		return err
	}
	for field, value := range req.Fields {
		if err := draft.Edit(field, value); err != nil {
			return err
		}
	}
	request, err := draft.Submit()
	if err != nil {
		return err
	}

	updated, err := h.service.ApplyTransition(c.Context(), request, operator)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updatedTicketBody(updated)})
}

// Refund POST /admin/tickets/:id/refund.
func (h *TicketsHandler) Refund(c *fiber.Ctx) error {
	operator, ok := auth.OperatorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("operator required")
	}
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}

	var req dto.RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	refund, ok := domain.ParseRefundStatus(req.RefundStatus)
	if !ok {
		return apperrors.NewValidationError("unknown refund status", map[string]any{
			"refund_status": req.RefundStatus,
		})
	}

	updated, err := h.service.UpdateRefund(c.Context(), ticketID, refund, operator)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updatedTicketBody(updated)})
}

// History GET /admin/tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	ticketID, err := parseTicketID(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	entries, err := h.service.TransitionHistory(c.Context(), ticketID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryEntry{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			Operator:  entry.Operator,
			OldStatus: string(entry.OldStatus),
			NewStatus: string(entry.NewStatus),
			OldRefund: string(entry.OldRefund),
			NewRefund: string(entry.NewRefund),
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid ticket id", nil)
	}
	return id, nil
}

func ticketRow(t domain.EnrichedTicket) dto.TicketRow {
	row := dto.TicketRow{
		ResolvedOrderID:       t.ResolvedOrderID,
		ResolvedCustomerEmail: t.ResolvedCustomerEmail,
		Status:                t.StatusNormalized(),
		CustomerPayment:       t.CustomerPayment,
		PaymentDate:           t.PaymentDate,
		SellingPrice:          t.SellingPrice,
		Zone:                  t.Zone,
		Row:                   t.Row,
		Seat:                  t.Seat,
		PassportName:          t.PassportName,
		FacebookName:          t.FacebookName,
		MemberCode:            t.MemberCode,
		PriorityDate:          t.PriorityDate,
		FstPt:                 t.FstPt,
	}
	if t.ID.Valid {
		id := t.ID.Value
		row.ID = &id
	}
	// The refund sub-state only reads meaningfully on cancelled
	// tickets; elsewhere a stale value may persist in the store.
	if row.Status == domain.TicketStatusCancel {
		row.RefundStatus = t.RefundNormalized()
	}
	return row
}

func updatedTicketBody(t *domain.Ticket) fiber.Map {
	if t == nil {
		return fiber.Map{}
	}
	return fiber.Map{
		"id":            t.ID,
		"status":        t.StatusNormalized(),
		"refund_status": t.RefundNormalized(),
	}
}
