package kaiterra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/opshub/opshub/internal/i18n"
	"github.com/opshub/opshub/internal/logging"
)

const (
	// DefaultBaseURL is the production Kaiterra API root.
	DefaultBaseURL = "https://api.kaiterra.com"

	tokenPath       = "/v1/account/me/token"
	devicePath      = "/v1/account/me/device"
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 << 20
)

// Options configures the Kaiterra HTTP clients.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Messages   *i18n.Catalog
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if o.Messages == nil {
		o.Messages = i18n.MustLoad("en")
	}
	o.Logger = logging.WithComponent(o.Logger, "kaiterra")
	return o
}

// Credentials are the customer's Kaiterra login. They are never persisted or logged.
type Credentials struct {
	Username string
	Password string
}

// Tokens exchanges credentials for a bearer token.
type Tokens interface {
	Fetch(ctx context.Context, creds Credentials) (string, error)
}

// TokenFetcher obtains a fresh bearer token from the Kaiterra token endpoint.
// Tokens are not cached: every call performs one request and no retries.
type TokenFetcher struct {
	baseURL string
	client  *http.Client
}

// NewTokenFetcher builds a token fetcher.
func NewTokenFetcher(opts Options) *TokenFetcher {
	opts = opts.withDefaults()
	return &TokenFetcher{baseURL: opts.BaseURL, client: opts.HTTPClient}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Fetch returns the bearer token or a *Error carrying the underlying message.
func (f *TokenFetcher) Fetch(ctx context.Context, creds Credentials) (string, error) {
	body, err := json.Marshal(tokenRequest{Username: creds.Username, Password: creds.Password})
	if err != nil {
		return "", &Error{Kind: KindAuthentication, State: StateTokenFailed, Message: err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+tokenPath, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindTransport, State: StateTokenFailed, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{Kind: KindTransport, State: StateTokenFailed, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", &Error{Kind: KindTransport, State: StateTokenFailed, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		msg := fmt.Sprintf("token endpoint returned %d", resp.StatusCode)
		if trimmed := strings.TrimSpace(string(payload)); trimmed != "" {
			msg = fmt.Sprintf("%s: %s", msg, trimmed)
		}
		return "", &Error{Kind: KindAuthentication, State: StateTokenFailed, Status: resp.StatusCode, Message: msg}
	}

	var parsed tokenResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", &Error{Kind: KindMalformedResponse, State: StateTokenFailed, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if parsed.Token == "" {
		return "", &Error{Kind: KindMalformedResponse, State: StateTokenFailed, Status: resp.StatusCode, Message: "token endpoint returned no token"}
	}

	return parsed.Token, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
