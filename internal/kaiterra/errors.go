package kaiterra

import "errors"

// Kind classifies why a Kaiterra call failed.
type Kind string

const (
	// KindValidation marks missing input, rejected before any network call.
	KindValidation Kind = "validation"
	// KindAuthentication marks a failed token exchange.
	KindAuthentication Kind = "authentication"
	// KindInvalidUDID marks a device endpoint rejection of the UDID itself.
	KindInvalidUDID Kind = "invalid_udid"
	// KindRejected marks any other device endpoint rejection.
	KindRejected Kind = "rejected"
	// KindTransport marks network and protocol faults.
	KindTransport Kind = "transport"
	// KindMalformedResponse marks a 2xx response whose body could not be decoded.
	KindMalformedResponse Kind = "malformed_response"
)

const (
	msgCannotAddDevice = "integrations.kaiterra.error.cannot_add_device_to_kaiterra"
	msgInvalidUDID     = "integrations.kaiterra.error.invalid_udid"
)

// messageKeys maps the localized failure kinds to catalog keys. Transport and
// malformed-response failures carry the raw fault message instead.
var messageKeys = map[Kind]string{
	KindAuthentication: msgCannotAddDevice,
	KindRejected:       msgCannotAddDevice,
	KindInvalidUDID:    msgInvalidUDID,
}

// Error is the failure variant of every Kaiterra workflow. Message is always
// fit to show to the caller; Err keeps the underlying cause when there is one.
type Error struct {
	Kind    Kind
	State   State
	Field   string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, or "" if err is not a
// Kaiterra failure.
func KindOf(err error) Kind {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Kind
	}
	return ""
}
