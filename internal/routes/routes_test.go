package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshub/opshub/internal/config"
	"github.com/opshub/opshub/internal/i18n"
	"github.com/opshub/opshub/internal/kaiterra"
	"github.com/opshub/opshub/internal/logging"
)

const adminToken = "test-admin"

type harness struct {
	t   *testing.T
	app *fiber.App
}

func newHarness(t *testing.T, vendor *httptest.Server) harness {
	t.Helper()
	app := fiber.New(fiber.Config{Immutable: true})
	err := Setup(app, Deps{
		Cfg:    config.Config{AppEnv: "dev", AdminToken: adminToken, Locale: "en", RegistrationRate: 10},
		Logger: logging.Discard(),
		Registrar: kaiterra.New(kaiterra.Options{
			BaseURL:    vendor.URL,
			HTTPClient: vendor.Client(),
			Messages:   i18n.MustLoad("en"),
		}),
	})
	require.NoError(t, err)
	return harness{t: t, app: app}
}

func (h harness) do(method, path string, headers map[string]string, body any) (int, map[string]any) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	decoded := map[string]any{}
	if len(raw) > 0 && json.Valid(raw) {
		require.NoError(h.t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func (h harness) admin(method, path string, body any) (int, map[string]any) {
	return h.do(method, "/api/v1/admin"+path, map[string]string{fiber.HeaderAuthorization: "Bearer " + adminToken}, body)
}

func newVendor(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/account/me/token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok"}`))
	})
	mux.HandleFunc("/v1/account/me/device", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UUID string `json:"uuid"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.UUID == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"uuid":"invalid"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"dev-1"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthAndPing(t *testing.T) {
	h := newHarness(t, newVendor(t))

	status, body := h.do(fiber.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"postgres": "disabled", "redis": "disabled"}, body["status"])

	status, body = h.do(fiber.MethodGet, "/api/v1/ping", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["request_id"])
}

func TestAdminRoutesRequireToken(t *testing.T) {
	h := newHarness(t, newVendor(t))

	status, _ := h.do(fiber.MethodGet, "/api/v1/admin/accounts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSetupRequiresBackendsOutsideDev(t *testing.T) {
	err := Setup(fiber.New(fiber.Config{Immutable: true}), Deps{Cfg: config.Config{AppEnv: "production"}, Logger: logging.Discard()})
	assert.ErrorContains(t, err, "database is required")
}

func TestSetupRequiresImmutableApp(t *testing.T) {
	err := Setup(fiber.New(), Deps{Cfg: config.Config{AppEnv: "dev"}, Logger: logging.Discard()})
	assert.ErrorContains(t, err, "Immutable")
}

func TestAPIKeyStillValidAfterOtherRequests(t *testing.T) {
	h := newHarness(t, newVendor(t))

	_, created := h.admin(fiber.MethodPost, "/clients", map[string]any{"name": "Acme"})
	_, acct := h.admin(fiber.MethodPost, "/accounts", map[string]any{"client_id": created["id"], "name": "ops"})
	accountID := acct["id"].(string)
	status, key := h.admin(fiber.MethodPost, "/accounts/"+accountID+"/api-keys", map[string]any{"name": "ci"})
	require.Equal(t, http.StatusCreated, status)
	auth := map[string]string{"X-API-Key": key["key"].(string)}

	status, _ = h.do(fiber.MethodGet, "/api/v1/accounts/"+accountID+"/roles", auth, nil)
	require.Equal(t, http.StatusOK, status)

	// unrelated traffic reuses request buffers
	for i := 0; i < 3; i++ {
		h.do(fiber.MethodGet, "/api/v1/admin/accounts/00000000-0000-0000-0000-00000000000"+string(rune('0'+i)), nil, nil)
		h.admin(fiber.MethodGet, "/clients/ffffffff-ffff-ffff-ffff-ffffffffffff", nil)
	}

	status, _ = h.do(fiber.MethodGet, "/api/v1/accounts/"+accountID+"/roles", auth, nil)
	assert.Equal(t, http.StatusOK, status)

	status, history := h.admin(fiber.MethodGet, "/accounts/"+accountID+"/changelog", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, history["entries"], 1)
}

func TestProvisioningFlow(t *testing.T) {
	h := newHarness(t, newVendor(t))

	status, created := h.admin(fiber.MethodPost, "/clients", map[string]any{"name": "Acme", "city": "Boston"})
	require.Equal(t, http.StatusCreated, status)
	clientID := created["id"].(string)

	status, acct := h.admin(fiber.MethodPost, "/accounts", map[string]any{"client_id": clientID, "name": "Acme HQ"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "acme-hq", acct["name"])
	accountID := acct["id"].(string)

	status, _ = h.admin(fiber.MethodPost, "/accounts", map[string]any{"client_id": clientID, "name": "acme hq"})
	assert.Equal(t, http.StatusConflict, status)

	status, list := h.admin(fiber.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, status)
	accounts := list["accounts"].([]any)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Acme - acme-hq", accounts[0].(map[string]any)["name"])

	status, _ = h.admin(fiber.MethodPost, "/accounts/00000000-0000-0000-0000-000000000000/api-keys", map[string]any{"name": "ci"})
	assert.Equal(t, http.StatusNotFound, status)

	status, key := h.admin(fiber.MethodPost, "/accounts/"+accountID+"/api-keys", map[string]any{"name": "ci"})
	require.Equal(t, http.StatusCreated, status)
	auth := map[string]string{"X-API-Key": key["key"].(string)}
	base := "/api/v1/accounts/" + accountID

	status, roles := h.do(fiber.MethodGet, base+"/roles", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, roles["roles"], 3)

	status, locations := h.do(fiber.MethodGet, base+"/inventory-locations", auth, nil)
	require.Equal(t, http.StatusOK, status)
	locs := locations["inventory_locations"].([]any)
	require.Len(t, locs, 1)
	assert.Equal(t, "Boston", locs[0].(map[string]any)["city"])

	status, contract := h.do(fiber.MethodPost, base+"/contracts", auth, map[string]any{"year": 2025, "starts_on": "2025-01-01"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, float64(2025), contract["year"])
	assert.Nil(t, contract["ends_on"])
	assert.Equal(t, true, contract["active"])

	status, reg := h.do(fiber.MethodPost, base+"/integrations/kaiterra/devices", auth, map[string]any{"username": "u", "password": "p", "udid": "udid-1"})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, map[string]any{"id": "dev-1"}, reg["payload"])

	status, failed := h.do(fiber.MethodPost, base+"/integrations/kaiterra/devices", auth, map[string]any{"username": "u", "password": "p", "udid": "bad"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "invalid_udid", failed["kind"])

	status, devices := h.do(fiber.MethodGet, base+"/devices", auth, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, devices["devices"], 1)

	status, history := h.admin(fiber.MethodGet, "/accounts/"+accountID+"/changelog", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, history["entries"], 1)

	status, _ = h.admin(fiber.MethodPatch, "/accounts/"+accountID+"/status", map[string]any{"status": "suspended"})
	require.Equal(t, http.StatusOK, status)
	status, _ = h.do(fiber.MethodPost, base+"/integrations/kaiterra/devices", auth, map[string]any{"username": "u", "password": "p", "udid": "udid-2"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.admin(fiber.MethodDelete, "/accounts/"+accountID+"/api-keys/"+key["id"].(string), nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _ = h.do(fiber.MethodGet, base+"/devices", auth, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAccountRoutesRejectForeignKeys(t *testing.T) {
	h := newHarness(t, newVendor(t))

	_, created := h.admin(fiber.MethodPost, "/clients", map[string]any{"name": "Acme"})
	clientID := created["id"].(string)
	_, first := h.admin(fiber.MethodPost, "/accounts", map[string]any{"client_id": clientID, "name": "one"})
	_, second := h.admin(fiber.MethodPost, "/accounts", map[string]any{"client_id": clientID, "name": "two"})
	_, key := h.admin(fiber.MethodPost, "/accounts/"+first["id"].(string)+"/api-keys", nil)

	status, _ := h.do(fiber.MethodGet, "/api/v1/accounts/"+second["id"].(string)+"/devices",
		map[string]string{"X-API-Key": key["key"].(string)}, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
