// Package event carries security-relevant happenings from the auth
// core to in-process subscribers (the audit log writer today). Events
// never contain token or artifact values, only subjects and keys.
package event

import "time"

type Type string

const (
	TypeSessionMinted     Type = "session.minted"
	TypeSessionRejected   Type = "session.rejected"
	TypeTokenIssued       Type = "token.issued"
	TypeTokenConsumed     Type = "token.consumed"
	TypeTokenRejected     Type = "token.rejected"
	TypeRoleChanged       Type = "role.changed"
	TypeRateLimitExceeded Type = "ratelimit.exceeded"
)

type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Subject   string    `json:"subject,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
