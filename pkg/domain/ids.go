package domain

import (
	"strconv"

	dErrors "caseledger/pkg/domain-errors"
)

// Principal is the opaque identity of a caller. It is expected to be a
// globally unique account address issued outside this service; the registry
// never interprets its contents.
type Principal string

// ParsePrincipal constructs a Principal from external input.
//
// Usage: call from handlers/middleware when binding an identity from a token
// or path parameter; direct casting bypasses validation.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	return Principal(s), nil
}

// IsNil returns true when no principal is bound.
func (p Principal) IsNil() bool {
	return p == ""
}

// String returns the string representation of the principal.
func (p Principal) String() string {
	return string(p)
}

// CaseID identifies a case record. IDs are allocated sequentially starting
// at 1; zero is never assigned and marks the absence of a case.
type CaseID uint64

// ParseCaseID parses a case ID from external input (path parameters).
func ParseCaseID(s string) (CaseID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid case id")
	}
	return CaseID(n), nil
}

// IsNil returns true for the never-assigned zero ID.
func (id CaseID) IsNil() bool {
	return id == 0
}

// String returns the decimal representation of the case ID.
func (id CaseID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
