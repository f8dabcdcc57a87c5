package kaiterra

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/opshub/opshub/internal/i18n"
)

// State is a step of one registration attempt.
type State string

const (
	StateIdle               State = "idle"
	StateTokenRequested     State = "token_requested"
	StateTokenFailed        State = "token_failed"
	StateTokenObtained      State = "token_obtained"
	StateDeviceRequested    State = "device_requested"
	StateRegistered         State = "registered"
	StateRegistrationFailed State = "registration_failed"
)

const invalidIdentifier = "invalid"

// Request carries the inputs of one device registration.
type Request struct {
	Username string
	Password string
	UDID     string
}

// Result is the success variant of a registration: the vendor's JSON reply.
type Result struct {
	State   State
	Payload json.RawMessage
}

// DeviceRegistrar registers device UDIDs on a Kaiterra account. It holds no
// per-call state and may be shared between goroutines.
type DeviceRegistrar struct {
	tokens   Tokens
	baseURL  string
	client   *http.Client
	messages *i18n.Catalog
	logger   *slog.Logger
}

// New wires a DeviceRegistrar with a TokenFetcher sharing the same options.
func New(opts Options) *DeviceRegistrar {
	return NewDeviceRegistrar(opts, NewTokenFetcher(opts))
}

// NewDeviceRegistrar builds a registrar around an existing token source.
func NewDeviceRegistrar(opts Options, tokens Tokens) *DeviceRegistrar {
	opts = opts.withDefaults()
	return &DeviceRegistrar{
		tokens:   tokens,
		baseURL:  opts.BaseURL,
		client:   opts.HTTPClient,
		messages: opts.Messages,
		logger:   opts.Logger,
	}
}

type deviceRequest struct {
	UUID string `json:"uuid"`
}

type deviceError struct {
	Error *struct {
		UUID string `json:"uuid"`
	} `json:"error"`
}

// Register fetches a token and posts the UDID to the device endpoint. Every
// failure is returned as a *Error; nothing panics out of this call.
func (r *DeviceRegistrar) Register(ctx context.Context, req Request) (Result, error) {
	if err := r.validate(req); err != nil {
		return Result{}, err
	}

	log := r.logger.With(slog.String("udid", req.UDID))
	log.Debug("kaiterra registration", slog.String("state", string(StateTokenRequested)))

	token, err := r.tokens.Fetch(ctx, Credentials{Username: req.Username, Password: req.Password})
	if err != nil {
		log.Warn("kaiterra token fetch failed",
			slog.String("state", string(StateTokenFailed)),
			slog.Any("error", err),
		)
		return Result{}, &Error{
			Kind:    KindAuthentication,
			State:   StateTokenFailed,
			Message: r.message(KindAuthentication),
			Err:     err,
		}
	}

	log.Debug("kaiterra registration", slog.String("state", string(StateDeviceRequested)))
	res, err := r.post(ctx, token, req.UDID)
	if err != nil {
		log.Warn("kaiterra registration failed",
			slog.String("state", string(StateRegistrationFailed)),
			slog.String("kind", string(KindOf(err))),
			slog.Any("error", err),
		)
		return Result{}, err
	}

	log.Info("kaiterra device registered", slog.String("state", string(StateRegistered)))
	return res, nil
}

func (r *DeviceRegistrar) validate(req Request) error {
	fields := []struct {
		name  string
		value string
	}{
		{"username", req.Username},
		{"password", req.Password},
		{"udid", req.UDID},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &Error{
				Kind:    KindValidation,
				State:   StateIdle,
				Field:   f.name,
				Message: r.messages.T("integrations.kaiterra.error.missing_" + f.name),
			}
		}
	}
	return nil
}

func (r *DeviceRegistrar) post(ctx context.Context, token, udid string) (Result, error) {
	body, err := json.Marshal(deviceRequest{UUID: udid})
	if err != nil {
		return Result{}, r.transportError(0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+devicePath, bytes.NewReader(body))
	if err != nil {
		return Result{}, r.transportError(0, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return Result{}, r.transportError(0, err)
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))

	if !isSuccess(resp.StatusCode) {
		kind := KindRejected
		if readErr == nil {
			kind = classifyRejection(payload)
		}
		return Result{}, &Error{
			Kind:    kind,
			State:   StateRegistrationFailed,
			Status:  resp.StatusCode,
			Message: r.message(kind),
		}
	}

	if readErr != nil {
		return Result{}, r.transportError(resp.StatusCode, readErr)
	}
	if !json.Valid(payload) {
		return Result{}, &Error{
			Kind:    KindMalformedResponse,
			State:   StateRegistrationFailed,
			Status:  resp.StatusCode,
			Message: "device endpoint returned a non-JSON body",
		}
	}

	return Result{State: StateRegistered, Payload: json.RawMessage(payload)}, nil
}

// classifyRejection inspects a vendor error body. Anything it cannot read
// falls back to the generic rejection.
func classifyRejection(payload []byte) Kind {
	var parsed deviceError
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return KindRejected
	}
	if parsed.Error != nil && parsed.Error.UUID == invalidIdentifier {
		return KindInvalidUDID
	}
	return KindRejected
}

func (r *DeviceRegistrar) transportError(status int, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		State:   StateRegistrationFailed,
		Status:  status,
		Message: err.Error(),
		Err:     err,
	}
}

func (r *DeviceRegistrar) message(kind Kind) string {
	key, ok := messageKeys[kind]
	if !ok {
		key = msgCannotAddDevice
	}
	return r.messages.T(key)
}
