package model

import "time"

// Attestation is a third party's timestamped claim about an asset, keyed by
// (attester, asset, claim type). Revocation is terminal; the value is kept
// for audit.
type Attestation struct {
	ObjectType string    `json:"objectType"`
	AttesterID string    `json:"attesterId"`
	AssetID    uint64    `json:"assetId"`
	ClaimType  string    `json:"claimType"`
	Value      string    `json:"value"`
	AttestedAt time.Time `json:"attestedAt"`
	Revoked    bool      `json:"revoked"`
	RevokedAt  time.Time `json:"revokedAt"` // Zero until revoked
}

// Valid reports whether the attestation currently stands.
func (a *Attestation) Valid() bool {
	return !a.Revoked
}
