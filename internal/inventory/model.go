package inventory

import "time"

// DefaultLocationName names the location every account starts with.
const DefaultLocationName = "default"

// Location is a physical place stock is held for an account.
type Location struct {
	ID        string
	AccountID string
	Name      string
	Address1  string
	City      string
	State     string
	Country   string
	Zipcode   string
	CreatedAt time.Time
}
