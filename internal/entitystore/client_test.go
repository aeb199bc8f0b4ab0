package entitystore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/resale-admin/internal/config"
	"github.com/spec-kit/resale-admin/internal/credentials"
	apperrors "github.com/spec-kit/resale-admin/pkg/util/errorutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.EntityStoreConfig{BaseURL: server.URL, RequestTimeoutSeconds: 5}
	return NewHTTPClient(cfg, credentials.StaticSource(token), zap.NewNop())
}

func TestListTickets_BareList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tickets/", r.URL.Path)
		io.WriteString(w, `[{"id": 1, "order": "ORD-10", "status": "pending"}]`)
	}, "")

	tickets, err := client.ListTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, int64(1), tickets[0].ID.Value)
	assert.Equal(t, int64(10), tickets[0].Order.Value)
}

func TestListOrders_ResultsEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"count": 1, "results": [{"id": 10, "customer": 5}]}`)
	}, "")

	orders, err := client.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(5), orders[0].Customer.Value)
}

func TestListCustomers_UnexpectedShapeIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"detail": "throttled"}`)
	}, "")

	customers, err := client.ListCustomers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestList_NonSuccessIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, "")

	_, err := client.ListTickets(context.Background())
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "ENTITY_STORE_ERROR", domainErr.Code)
}

func TestAuthorize_BearerHeaderWhenTokenPresent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		io.WriteString(w, `[]`)
	}, "tok-123")

	_, err := client.ListTickets(context.Background())
	require.NoError(t, err)
}

func TestAuthorize_NoHeaderWithoutToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		io.WriteString(w, `[]`)
	}, "")

	_, err := client.ListTickets(context.Background())
	require.NoError(t, err)
}

func TestPatchTicket_SendsPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/tickets/7/", r.URL.Path)
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "paid", payload["status"])
		io.WriteString(w, `{"id": 7, "status": "paid"}`)
	}, "")

	updated, err := client.PatchTicket(context.Background(), 7, map[string]any{"status": "paid"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "paid", string(updated.Status))
}

func TestPatchTicket_ErrorBodySurfacedVerbatim(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"status": ["invalid transition"]}`)
	}, "")

	_, err := client.PatchTicket(context.Background(), 7, map[string]any{"status": "paid"})
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, `{"status": ["invalid transition"]}`, domainErr.Message)
	assert.Equal(t, http.StatusBadRequest, domainErr.Details["upstream_status"])
}

func TestPatchTicket_NonJSONSuccessBodyTolerated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `ok`)
	}, "")

	updated, err := client.PatchTicket(context.Background(), 7, map[string]any{"status": "pending"})
	require.NoError(t, err)
	assert.Nil(t, updated)
}
