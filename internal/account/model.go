package account

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultTimezone is assigned to accounts created without one.
const DefaultTimezone = "Eastern Time (US & Canada)"

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusInactive, StatusSuspended:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Account is a tenant workspace belonging to a client.
type Account struct {
	ID        string
	ClientID  string
	Name      string
	Status    Status
	Timezone  string
	CreatedAt time.Time
}

func (a Account) String() string {
	return a.Name
}

// Active reports whether the account may use integrations.
func (a Account) Active() bool {
	return a.Status == StatusActive
}

// Summary is one entry of the account picker collection.
type Summary struct {
	ID    string
	Label string
}

var (
	disallowedNameChars = regexp.MustCompile(`[^a-z0-9-]`)
	validName           = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// NormalizeName lower-cases name, turns every character outside [a-z0-9-]
// into a separator and joins the remaining words with hyphens.
func NormalizeName(name string) string {
	lowered := strings.ToLower(name)
	spaced := disallowedNameChars.ReplaceAllString(lowered, " ")
	return strings.Join(strings.Fields(spaced), "-")
}

// ValidateName checks an already normalized name.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if !validName.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}
