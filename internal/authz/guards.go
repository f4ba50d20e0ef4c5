// Package authz holds the guard predicates gating every registry operation.
//
// The four roles (admin, registrant, approved organization, authorized
// viewer) are orthogonal: each guard evaluates one predicate over already
// fetched state and returns a Decision. Services compose guards in sequence
// and stop at the first denial, so no mutation ever precedes a failed check.
package authz

import (
	"caseledger/pkg/domain"
	dErrors "caseledger/pkg/domain-errors"
)

// Decision is the structured outcome of a guard predicate.
type Decision struct {
	Allowed bool
	Code    dErrors.Code
	Reason  string
}

// Err converts a denial into a coded error, or nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return dErrors.New(d.Code, d.Reason)
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(code dErrors.Code, reason string) Decision {
	return Decision{Code: code, Reason: reason}
}

// Authenticated requires a bound caller identity.
func Authenticated(caller domain.Principal) Decision {
	if caller.IsNil() {
		return deny(dErrors.CodeUnauthorized, "no principal bound to request")
	}
	return allow()
}

// Admin requires the caller to be the configured admin principal.
func Admin(admin, caller domain.Principal) Decision {
	if caller != admin {
		return deny(dErrors.CodeForbidden, "caller is not the admin")
	}
	return allow()
}

// Registered requires the caller to have completed registration.
func Registered(registered bool) Decision {
	if !registered {
		return deny(dErrors.CodeForbidden, "caller is not registered")
	}
	return allow()
}

// ApprovedOrganization requires the principal to currently hold organization
// approval. Approval is checked at guard time; it does not reach back into
// grants issued earlier.
func ApprovedOrganization(approved bool) Decision {
	if !approved {
		return deny(dErrors.CodeForbidden, "caller is not an approved organization")
	}
	return allow()
}

// OrganizationApproved is ApprovedOrganization phrased for a third party, used
// when the caller is granting access to someone else.
func OrganizationApproved(approved bool) Decision {
	if !approved {
		return deny(dErrors.CodeForbidden, "organization is not approved")
	}
	return allow()
}

// CaseOwner requires the caller to own the case. Grant holders do not pass
// this guard; grant and revoke are owner-only capabilities.
func CaseOwner(owner, caller domain.Principal) Decision {
	if caller != owner {
		return deny(dErrors.CodeForbidden, "caller is not the case owner")
	}
	return allow()
}

// CaseViewer requires the caller to be the owner or to hold an access grant.
func CaseViewer(owner, caller domain.Principal, granted bool) Decision {
	if caller == owner || granted {
		return allow()
	}
	return deny(dErrors.CodeForbidden, "caller is not authorized for this case")
}
