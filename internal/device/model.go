package device

import (
	"encoding/json"
	"time"
)

// VendorKaiterra identifies registrations made against the Kaiterra API.
const VendorKaiterra = "kaiterra"

// Registration is a device successfully registered with a vendor on behalf
// of an account. Payload is the vendor's reply, stored as-is.
type Registration struct {
	ID        string
	AccountID string
	Vendor    string
	UDID      string
	Payload   json.RawMessage
	CreatedAt time.Time
}
