package device

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/opshub/opshub/internal/account"
	"github.com/opshub/opshub/internal/changelog"
	"github.com/opshub/opshub/internal/client"
	"github.com/opshub/opshub/internal/i18n"
	"github.com/opshub/opshub/internal/kaiterra"
	"github.com/opshub/opshub/internal/notification"
)

type stubRegistrar struct {
	result kaiterra.Result
	err    error
	calls  int
}

func (s *stubRegistrar) Register(_ context.Context, _ kaiterra.Request) (kaiterra.Result, error) {
	s.calls++
	return s.result, s.err
}

type fixture struct {
	svc      *Service
	accounts *account.Service
	acct     account.Account
	changes  changelog.Recorder
	notifier *notification.Recorder
}

func newFixture(t *testing.T, registrar Registrar) fixture {
	t.Helper()
	ctx := context.Background()
	clients := client.NewService(client.NewMemoryRepository())
	accounts := account.NewService(account.Deps{Repo: account.NewMemoryRepository(), Clients: clients})

	owner, err := clients.Create(ctx, client.CreateInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	acct, err := accounts.Create(ctx, account.CreateInput{ClientID: owner.ID, Name: "hq"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	changes := changelog.NewInMemory()
	notifier := &notification.Recorder{}
	svc := NewService(Deps{
		Repo:      NewMemoryRepository(),
		Accounts:  accounts,
		Registrar: registrar,
		Changes:   changes,
		Notifier:  notifier,
	})
	return fixture{svc: svc, accounts: accounts, acct: acct, changes: changes, notifier: notifier}
}

func sampleRequest() kaiterra.Request {
	return kaiterra.Request{Username: "ops@example.com", Password: "secret", UDID: "udid-1"}
}

func TestRegisterKaiterraStoresRegistration(t *testing.T) {
	registrar := &stubRegistrar{result: kaiterra.Result{State: kaiterra.StateRegistered, Payload: json.RawMessage(`{"id":"abc123"}`)}}
	f := newFixture(t, registrar)
	ctx := context.Background()

	reg, err := f.svc.RegisterKaiterra(ctx, f.acct.ID, sampleRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Vendor != VendorKaiterra || reg.UDID != "udid-1" || string(reg.Payload) != `{"id":"abc123"}` {
		t.Fatalf("unexpected registration: %+v", reg)
	}

	regs, err := f.svc.List(ctx, f.acct.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(regs) != 1 || regs[0].ID != reg.ID {
		t.Fatalf("expected stored registration, got %+v", regs)
	}

	entries, err := f.changes.List(ctx, recordType, reg.ID)
	if err != nil {
		t.Fatalf("changelog: %v", err)
	}
	if len(entries) != 1 || entries[0].Changes["udid"] != "udid-1" {
		t.Fatalf("unexpected changelog: %+v", entries)
	}
	if entries[0].Changes["password"] != nil || entries[0].Changes["username"] != nil {
		t.Fatalf("credentials must not be recorded")
	}

	if got := f.notifier.Last(); got.Kind != notification.KindDeviceRegistered || got.Destination != f.acct.ID {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestRegisterKaiterraPassesVendorErrorThrough(t *testing.T) {
	vendorErr := &kaiterra.Error{Kind: kaiterra.KindInvalidUDID, Message: "Invalid UDID"}
	f := newFixture(t, &stubRegistrar{err: vendorErr})
	ctx := context.Background()

	_, err := f.svc.RegisterKaiterra(ctx, f.acct.ID, sampleRequest())
	var kerr *kaiterra.Error
	if !errors.As(err, &kerr) || kerr != vendorErr {
		t.Fatalf("expected vendor error, got %v", err)
	}

	regs, _ := f.svc.List(ctx, f.acct.ID)
	if len(regs) != 0 {
		t.Fatalf("failed registration must not be stored")
	}
	if len(f.notifier.Messages) != 0 {
		t.Fatalf("failed registration must not notify")
	}
}

func TestRegisterKaiterraRequiresActiveAccount(t *testing.T) {
	registrar := &stubRegistrar{}
	f := newFixture(t, registrar)
	ctx := context.Background()

	if _, err := f.accounts.UpdateStatus(ctx, f.acct.ID, account.StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := f.svc.RegisterKaiterra(ctx, f.acct.ID, sampleRequest()); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
	if _, err := f.svc.RegisterKaiterra(ctx, "00000000-0000-0000-0000-000000000000", sampleRequest()); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected account.ErrNotFound, got %v", err)
	}
	if registrar.calls != 0 {
		t.Fatalf("registrar must not be called, got %d calls", registrar.calls)
	}
}

func newVendor(t *testing.T, deviceStatus int, deviceBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/account/me/token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok"}`))
	})
	mux.HandleFunc("/v1/account/me/device", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(deviceStatus)
		_, _ = w.Write([]byte(deviceBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newHandlerApp(t *testing.T, vendor *httptest.Server) (*fiber.App, fixture) {
	t.Helper()
	registrar := kaiterra.New(kaiterra.Options{BaseURL: vendor.URL, HTTPClient: vendor.Client(), Messages: i18n.MustLoad("en")})
	f := newFixture(t, registrar)
	h := NewHandler(f.svc)
	app := fiber.New(fiber.Config{Immutable: true})
	app.Post("/accounts/:accountId/integrations/kaiterra/devices", h.RegisterKaiterra)
	app.Get("/accounts/:accountId/devices", h.List)
	return app, f
}

func postDevice(t *testing.T, app *fiber.App, accountID, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/accounts/"+accountID+"/integrations/kaiterra/devices", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return resp.StatusCode, decoded
}

func TestHandlerRegisterKaiterra(t *testing.T) {
	vendor := newVendor(t, http.StatusOK, `{"id":"abc123"}`)
	app, f := newHandlerApp(t, vendor)

	status, body := postDevice(t, app, f.acct.ID, `{"username":"u","password":"p","udid":"udid-9"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, body)
	}
	payload, ok := body["payload"].(map[string]any)
	if !ok || payload["id"] != "abc123" {
		t.Fatalf("expected vendor payload, got %v", body)
	}
}

func TestHandlerRegisterKaiterraInvalidUDID(t *testing.T) {
	vendor := newVendor(t, http.StatusBadRequest, `{"error":{"uuid":"invalid"}}`)
	app, f := newHandlerApp(t, vendor)

	status, body := postDevice(t, app, f.acct.ID, `{"username":"u","password":"p","udid":"bad"}`)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
	if body["kind"] != string(kaiterra.KindInvalidUDID) {
		t.Fatalf("unexpected kind: %v", body)
	}
	if body["error"] != i18n.MustLoad("en").T("integrations.kaiterra.error.invalid_udid") {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestHandlerRegisterKaiterraValidation(t *testing.T) {
	vendor := newVendor(t, http.StatusOK, `{}`)
	app, f := newHandlerApp(t, vendor)

	status, body := postDevice(t, app, f.acct.ID, `{"username":"u","udid":"x"}`)
	if status != fiber.StatusUnprocessableEntity || body["kind"] != string(kaiterra.KindValidation) {
		t.Fatalf("expected validation failure, got %d %v", status, body)
	}
}

func TestHandlerRegisterKaiterraTransportFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/account/me/token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok"}`))
	})
	mux.HandleFunc("/v1/account/me/device", func(w http.ResponseWriter, _ *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
	})
	vendor := httptest.NewServer(mux)
	t.Cleanup(vendor.Close)
	app, f := newHandlerApp(t, vendor)

	status, body := postDevice(t, app, f.acct.ID, `{"username":"u","password":"p","udid":"x"}`)
	if status != fiber.StatusBadGateway || body["kind"] != string(kaiterra.KindTransport) {
		t.Fatalf("expected 502, got %d: %v", status, body)
	}
}
