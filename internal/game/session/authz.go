package session

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable cause of a denied operation.
type Reason string

// Denial reasons. Authorization is deny-by-default: an operation not
// explicitly permitted for the caller is refused with one of these.
const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonForbiddenRole   Reason = "forbidden-role"
	ReasonNotMember       Reason = "not-a-member"
	ReasonNotFound        Reason = "not-found"
)

// Denial is the error returned when an operation is refused by the
// authorization rules. A denied operation has no partial effects.
type Denial struct {
	Reason Reason
	Op     string
}

// Error implements the error interface.
func (d *Denial) Error() string {
	return fmt.Sprintf("session: %s denied: %s", d.Op, d.Reason)
}

// Deny builds a Denial for the given operation and reason.
func Deny(op string, reason Reason) *Denial {
	return &Denial{Reason: reason, Op: op}
}

// AsDenial extracts a Denial from err, if any.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Store-level sentinel errors surfaced through the service.
var (
	// ErrNotFound is returned by stores when a session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrVersionConflict is returned by stores when a compare-and-swap
	// update lost the race against a concurrent writer.
	ErrVersionConflict = errors.New("session version conflict")
)

// requireAuthenticated refuses callers with no identity.
func requireAuthenticated(op string, caller User) error {
	if caller.ID == "" {
		return Deny(op, ReasonUnauthenticated)
	}
	return nil
}

// requireAdmin refuses callers without the admin role.
func requireAdmin(op string, caller User) error {
	if err := requireAuthenticated(op, caller); err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return Deny(op, ReasonForbiddenRole)
	}
	return nil
}
