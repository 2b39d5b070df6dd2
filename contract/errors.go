package contract

import "errors"

// Precondition-violation signals. Every operation evaluates its preconditions
// in a fixed order and aborts on the first violation, leaving prior state
// untouched; there are no internal faults in this taxonomy. Operations wrap
// these with context via fmt.Errorf and %w, so callers discriminate with
// errors.Is.
var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrAlreadyRegistered      = errors.New("identity already registered")
	ErrIdentityNotFound       = errors.New("identity not found")
	ErrIdentityNotVerified    = errors.New("identity not verified")
	ErrAssetNotFound          = errors.New("asset not found")
	ErrNotAssetOwner          = errors.New("caller is not the asset owner")
	ErrInvalidInput           = errors.New("invalid input")
	ErrAttestationNotFound    = errors.New("attestation not found")
	ErrInsufficientReputation = errors.New("insufficient reputation")
	ErrInvalidClaimType       = errors.New("claim type not allowed")
	ErrAttestationRevoked     = errors.New("attestation already revoked")
)
