package models

import (
	"time"
)

// RoundStateVersion is the current serialization schema version for
// persisted round records. Records with an unknown version are treated
// as absent rather than rejected.
const RoundStateVersion = 1

// Participant is a single member of a chat's donut roster. Identity is
// the ID; DisplayName is presentation-only and may be empty.
type Participant struct {
	DisplayName string `json:"display_name,omitempty"`
	ID          string `json:"id"`
}

// Label returns the name to show for a participant, falling back to the
// ID when no display name is known.
func (p Participant) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.ID
}

// Group is one subgroup of a donut: the participants meant to meet together.
type Group []Participant

// Contains reports whether the group has a member with the given ID.
func (g Group) Contains(id string) bool {
	for _, p := range g {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Donut is one round's partition of the roster into subgroups. It
// serializes as a plain array of groups, each an array of member records.
type Donut []Group

// Size returns the total number of participants across all subgroups.
func (d Donut) Size() int {
	n := 0
	for _, g := range d {
		n += len(g)
	}
	return n
}

// RoundState is the persisted per-chat record tracking committed rounds.
// The proposed round is deliberately not part of this record: proposals
// live in memory only and do not survive a restart.
type RoundState struct {
	Version   int       `json:"version"`
	ChatID    int64     `json:"chat_id"`
	Current   Donut     `json:"current,omitempty"`
	Previous  Donut     `json:"previous,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Roster is the persisted per-chat membership registry. Telegram bots
// cannot enumerate chat members, so membership is an explicit opt-in.
type Roster struct {
	ChatID      int64                  `json:"chat_id"`
	Members     map[string]Participant `json:"members"`
	LastUpdated time.Time              `json:"last_updated"`
}

// VenueResult is the outcome of materializing one subgroup of a promoted
// round. Failures are reported per subgroup; there is no aggregate rollback.
type VenueResult struct {
	Group Group
	Err   error
}
