package access

import "github.com/kost-system/access-service/internal/models"

// Action is the state transition decided for a tenant.
type Action int

const (
	NoChange Action = iota
	Suspend
	Activate
)

// String returns the action name for logs.
func (a Action) String() string {
	switch a {
	case Suspend:
		return "suspend"
	case Activate:
		return "activate"
	default:
		return "no_change"
	}
}

// Intent pairs the decided action with the reason behind it.
type Intent struct {
	Action Action
	Reason string
}

// Resolve maps the current tenant status and a computed decision to the
// transition to apply. A suspended tenant with debt still inside the
// grace window stays suspended; an active tenant inside the window
// stays active (warning only). Resolve is pure and idempotent: once a
// tenant is in the target state the result is NoChange.
func Resolve(status models.TenantStatus, d Decision) Intent {
	switch {
	case d.ShouldSuspend && status == models.TenantActive:
		return Intent{Action: Suspend, Reason: d.Reason}
	case d.ShouldActivate && status == models.TenantSuspended:
		return Intent{Action: Activate, Reason: d.Reason}
	default:
		return Intent{Action: NoChange, Reason: d.Reason}
	}
}
