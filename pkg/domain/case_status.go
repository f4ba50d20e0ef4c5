package domain

import dErrors "caseledger/pkg/domain-errors"

// CaseStatus is a domain value describing where a case sits in its lifecycle.
// Invariant: the value must be one of the supported statuses.
//
// The lifecycle is deliberately not a forward-only state machine: any
// authorized updater may set any status, including moving a closed case back
// to an earlier value. Tightening this is a policy decision, not a bug fix.
type CaseStatus string

// Supported case statuses, in lifecycle order.
const (
	CaseStatusCreated     CaseStatus = "created"
	CaseStatusUnderReview CaseStatus = "under_review"
	CaseStatusOngoing     CaseStatus = "investigation_ongoing"
	CaseStatusResolved    CaseStatus = "resolved"
	CaseStatusClosed      CaseStatus = "closed"
)

// validCaseStatuses is the single source of truth for valid statuses.
var validCaseStatuses = map[CaseStatus]bool{
	CaseStatusCreated:     true,
	CaseStatusUnderReview: true,
	CaseStatusOngoing:     true,
	CaseStatusResolved:    true,
	CaseStatusClosed:      true,
}

// ParseCaseStatus constructs a CaseStatus from external input.
//
// Usage: call from handlers/adapters when parsing requests.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported; no
// other errors are expected.
func ParseCaseStatus(s string) (CaseStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status cannot be empty")
	}
	cs := CaseStatus(s)
	if !cs.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status")
	}
	return cs, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s CaseStatus) IsValid() bool {
	return validCaseStatuses[s]
}

// String returns the string representation of the status.
func (s CaseStatus) String() string {
	return string(s)
}
