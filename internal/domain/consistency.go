package domain

import (
	"time"

	"github.com/google/uuid"
)

type IssueKind string

const (
	// IssueDrifted: the item is marked available while a non-completed booking exists.
	IssueDrifted IssueKind = "drifted"
	// IssueStranded: the item is marked unavailable with no non-completed booking.
	IssueStranded IssueKind = "stranded"
)

type ConsistencyIssue struct {
	Kind        IssueKind  `json:"kind"`
	EquipmentID uuid.UUID  `json:"equipment_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	BookingID   *uuid.UUID `json:"booking_id,omitempty"`
	Since       time.Time  `json:"since"`
}

type ConsistencyReport struct {
	CheckedAt time.Time          `json:"checked_at"`
	Drifted   []ConsistencyIssue `json:"drifted"`
	Stranded  []ConsistencyIssue `json:"stranded"`
}

func (r *ConsistencyReport) Clean() bool {
	return len(r.Drifted) == 0 && len(r.Stranded) == 0
}
