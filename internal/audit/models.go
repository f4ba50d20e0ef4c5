package audit

import (
	"time"

	"github.com/google/uuid"

	"caseledger/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring,
	// such as changes to the organization allow-list.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and
	// operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic after a committed state change. Keep it
// transport-agnostic so stores and sinks can fan out. Exactly one event is
// appended per mutation; rejected operations emit nothing.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	Action    string

	// Principal is the caller that performed the action.
	Principal domain.Principal

	// Subject fields; zero values mean not applicable to the action.
	CaseID      domain.CaseID
	Owner       domain.Principal
	Org         domain.Principal
	EvidenceRef string
	OldStatus   domain.CaseStatus
	NewStatus   domain.CaseStatus

	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
}

// Action names the kind of audit event.
type Action string

const (
	ActionUserRegistered       Action = "user_registered"
	ActionCaseCreated          Action = "case_created"
	ActionCaseStatusUpdated    Action = "case_status_updated"
	ActionAccessGranted        Action = "access_granted"
	ActionAccessRevoked        Action = "access_revoked"
	ActionOrganizationApproved Action = "organization_approved"
	ActionOrganizationRemoved  Action = "organization_removed"
)

// actionCategories maps each audit action to its category.
// Compliance: record lifecycle and capability changes, long retention.
// Security: admin changes to the organization allow-list.
var actionCategories = map[Action]EventCategory{
	ActionUserRegistered:    CategoryCompliance,
	ActionCaseCreated:       CategoryCompliance,
	ActionCaseStatusUpdated: CategoryCompliance,
	ActionAccessGranted:     CategoryCompliance,
	ActionAccessRevoked:     CategoryCompliance,

	ActionOrganizationApproved: CategorySecurity,
	ActionOrganizationRemoved:  CategorySecurity,
}

// Category returns the category for the action, defaulting to operations for
// unknown actions so nothing is silently dropped.
func (a Action) Category() EventCategory {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}
