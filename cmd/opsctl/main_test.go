package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVendor(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/account/me/token", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"token":"tok"}`))
	})
	mux.HandleFunc("/v1/account/me/device", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"abc123"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAddUDIDPrintsPayload(t *testing.T) {
	vendor := newVendor(t)
	var out bytes.Buffer

	err := newApp(&out).Run([]string{"opsctl", "kaiterra", "add-udid",
		"--username", "u", "--password", "p", "--udid", "x", "--base-url", vendor.URL})
	require.NoError(t, err)
	assert.Equal(t, `{"id":"abc123"}`, strings.TrimSpace(out.String()))
}

func TestAddUDIDReportsValidation(t *testing.T) {
	vendor := newVendor(t)
	var out bytes.Buffer

	err := newApp(&out).Run([]string{"opsctl", "kaiterra", "add-udid",
		"--username", "u", "--password", "p", "--base-url", vendor.URL, "--locale", "en"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(validation)")
}

func TestAddUDIDRejectsUnknownLocale(t *testing.T) {
	var out bytes.Buffer

	err := newApp(&out).Run([]string{"opsctl", "kaiterra", "add-udid", "--locale", "xx"})
	require.Error(t, err)
}
