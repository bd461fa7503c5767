package domain

import "github.com/google/uuid"

// EventType identifies a member change notification kind.
type EventType string

const (
	EventMemberAdded   EventType = "member_added"
	EventMemberUpdated EventType = "member_updated"
	EventMemberRemoved EventType = "member_removed"
)

// MemberEvent is a change notification for the member entity, delivered by
// the realtime channel. Added/updated events carry the full member payload;
// removed events carry only the member id.
type MemberEvent struct {
	Type        EventType `json:"type"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	MemberID    uuid.UUID `json:"member_id"`
	Member      *Member   `json:"member,omitempty"`
}

// Valid reports whether the event is structurally complete enough to apply.
func (e MemberEvent) Valid() bool {
	if e.WorkspaceID == uuid.Nil || e.MemberID == uuid.Nil {
		return false
	}
	switch e.Type {
	case EventMemberAdded, EventMemberUpdated:
		return e.Member != nil && e.Member.ID == e.MemberID
	case EventMemberRemoved:
		return true
	default:
		return false
	}
}
