package registry

import (
	"time"

	"caseledger/pkg/domain"
)

// Case is the record entity owned by one registrant. Owner and EvidenceRef
// are immutable after creation; Status is the only mutable field and changes
// only through Service.UpdateStatus. Cases are never deleted; closing a case
// is a status value, not removal.
type Case struct {
	ID          domain.CaseID
	Owner       domain.Principal
	EvidenceRef string
	Status      domain.CaseStatus
	CreatedAt   time.Time
}
