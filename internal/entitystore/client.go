// Package entitystore is the REST client for the external service
// that owns tickets, orders and customers.
package entitystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/resale-admin/internal/config"
	"github.com/spec-kit/resale-admin/internal/credentials"
	"github.com/spec-kit/resale-admin/internal/domain"
	apperrors "github.com/spec-kit/resale-admin/pkg/util/errorutil"
)

// Client is the entity store contract the console consumes.
type Client interface {
	ListTickets(ctx context.Context) ([]domain.Ticket, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	PatchTicket(ctx context.Context, id int64, payload map[string]any) (*domain.Ticket, error)
}

// HTTPClient talks JSON over HTTP with bearer-token auth.
type HTTPClient struct {
	baseURL     string
	httpClient  *http.Client
	tokens      credentials.Source
	readTimeout time.Duration
	logger      *zap.Logger
}

// NewHTTPClient constructs the client. The token source is explicit
// rather than ambient state so tests and callers control credentials.
func NewHTTPClient(cfg config.EntityStoreConfig, tokens credentials.Source, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{},
		tokens:      tokens,
		readTimeout: cfg.RequestTimeout(),
		logger:      logger,
	}
}

// ListTickets fetches the tickets snapshot.
func (c *HTTPClient) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	body, err := c.get(ctx, "/api/tickets/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Ticket](body), nil
}

// ListOrders fetches the orders snapshot.
func (c *HTTPClient) ListOrders(ctx context.Context) ([]domain.Order, error) {
	body, err := c.get(ctx, "/api/orders/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Order](body), nil
}

// ListCustomers fetches the customers snapshot.
func (c *HTTPClient) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	body, err := c.get(ctx, "/api/customers/")
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Customer](body), nil
}

// PatchTicket applies a partial update. A non-success response carries
// the store's raw body back to the operator verbatim. Writes run under
// the caller's context only; a hung write blocks just that submission.
func (c *HTTPClient) PatchTicket(ctx context.Context, id int64, payload map[string]any) (*domain.Ticket, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	url := fmt.Sprintf("%s/api/tickets/%d/", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewEntityStoreError(0, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewEntityStoreError(resp.StatusCode, "")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewEntityStoreError(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var updated domain.Ticket
	if err := json.Unmarshal(body, &updated); err != nil {
		// The write succeeded; the caller reloads the snapshot anyway.
		c.logger.Warn("unexpected ticket body after patch", zap.Int64("ticket_id", id))
		return nil, nil
	}
	return &updated, nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	if c.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	c.authorize(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewEntityStoreError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewEntityStoreError(resp.StatusCode,
			fmt.Sprintf("failed to fetch %s (%d)", path, resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

func (c *HTTPClient) authorize(ctx context.Context, req *http.Request) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn("token lookup failed, proceeding unauthenticated", zap.Error(err))
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// decodeList accepts a bare JSON list or a {"results": [...]} envelope;
// any other shape resolves to an empty collection, never an error.
func decodeList[T any](data []byte) []T {
	var direct []T
	if err := json.Unmarshal(data, &direct); err == nil && direct != nil {
		return direct
	}
	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Results != nil {
		return envelope.Results
	}
	return []T{}
}
