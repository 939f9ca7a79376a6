package rbac

import "github.com/wardgate/wardgate/internal/shared"

// DefaultDenyRedirect is where denied requests are sent when the caller does
// not configure a target.
const DefaultDenyRedirect = "/unauthorized"

// Requirement declares what a protected resource demands of an identity.
// Roles use any-of semantics, Permissions all-of. The asymmetry is
// deliberate: a resource is reachable from several roles, but every listed
// capability must be held.
type Requirement struct {
	Roles       []string
	Permissions []string
	RedirectTo  string
}

// Decision is the outcome of an authorization check. Deny is a first-class
// result, not an error: it carries the redirect target for the caller to act
// on at the transport layer.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Authorize evaluates a requirement against an identity snapshot. Pure
// function: no I/O, no persistence, same inputs always yield the same
// decision. An empty requirement is vacuously satisfied.
func Authorize(id shared.Identity, req Requirement) Decision {
	if roleSatisfied(id, req.Roles) && permissionsSatisfied(id, req.Permissions) {
		return Decision{Allowed: true}
	}
	target := req.RedirectTo
	if target == "" {
		target = DefaultDenyRedirect
	}
	return Decision{Allowed: false, RedirectTo: target}
}

// roleSatisfied: at least one required role present, vacuous when empty.
func roleSatisfied(id shared.Identity, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if id.HasRole(r) {
			return true
		}
	}
	return false
}

// permissionsSatisfied: every required permission present, vacuous when empty.
func permissionsSatisfied(id shared.Identity, required []string) bool {
	for _, p := range required {
		if !id.HasPermission(p) {
			return false
		}
	}
	return true
}
