package model

import "time"

// Identity stores the profile record for a registered actor.
type Identity struct {
	ObjectType   string    `json:"objectType"`   // Set to the composite key object type (Identity)
	ActorID      string    `json:"actorId"`      // Opaque, host-authenticated caller identifier
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Verified     bool      `json:"verified"`     // Set only by the administrator, one-directional
	Reputation   uint64    `json:"reputation"`   // Administrator-assigned, gates attestation
	RegisteredAt time.Time `json:"registeredAt"` // Transaction timestamp at creation
}

// IdentityAttribute is a free-form named value attached to an identity.
type IdentityAttribute struct {
	ObjectType string `json:"objectType"`
	ActorID    string `json:"actorId"`
	Name       string `json:"name"`
	Value      string `json:"value"`
}
