package events

import (
	"context"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

const TypeSummaryCreated = "summary.created"

// SummaryEvent announces a change to an identity's summary history.
type SummaryEvent struct {
	Type    string               `json:"type"`
	Summary models.SummaryRecord `json:"summary"`
}

func SummaryCreated(record models.SummaryRecord) SummaryEvent {
	return SummaryEvent{Type: TypeSummaryCreated, Summary: record}
}

// Broker fans summary events out to subscribers of the owning identity.
// Delivery is best effort.
type Broker interface {
	Publish(ctx context.Context, event SummaryEvent) error
	// Subscribe returns a channel that is closed once ctx is done.
	Subscribe(ctx context.Context, identity models.Identity) (<-chan SummaryEvent, error)
	Close() error
}

// ownerKey separates user and anonymous namespaces.
func ownerKey(identity models.Identity) string {
	if identity.IsAuthenticated() {
		return "user:" + identity.UserID
	}
	return "anon:" + identity.AnonymousID
}

func recordIdentity(record models.SummaryRecord) models.Identity {
	var identity models.Identity
	if record.UserID != nil {
		identity.UserID = *record.UserID
	} else if record.AnonymousID != nil {
		identity.AnonymousID = *record.AnonymousID
	}
	return identity
}
