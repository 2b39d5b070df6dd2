package contract

import (
	"encoding/json"
	"errors"
	"fmt"

	"assetregistry/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var attLogger = flogging.MustGetLogger("assetregistry.attestation")

// --- Attestation Ledger Operations ---

// MakeAttestation records the caller's claim about an asset at the key
// (caller, asset, claim type). The caller must be a verified identity whose
// reputation, read now, meets the current minimum threshold; the threshold is
// never rechecked retroactively. An existing record at the same key is
// silently overwritten with a fresh, non-revoked attestation.
func (s *RegistryContract) MakeAttestation(ctx contractapi.TransactionContextInterface, assetID uint64, claimType, value string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("MakeAttestation: %w", err)
	}
	if err := s.validateRequiredString(claimType, "claimType", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateRequiredString(value, "value", maxDescriptionLength); err != nil {
		return err
	}

	identity, err := s.getIdentity(ctx, callerID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return fmt.Errorf("MakeAttestation: caller '%s': %w", callerID, ErrIdentityNotVerified)
		}
		return fmt.Errorf("MakeAttestation: %w", err)
	}
	if !identity.Verified {
		return fmt.Errorf("MakeAttestation: caller '%s': %w", callerID, ErrIdentityNotVerified)
	}

	if _, err := s.getAsset(ctx, assetID); err != nil {
		return fmt.Errorf("MakeAttestation: %w", err)
	}

	admin, err := s.getAdministration(ctx)
	if err != nil {
		return fmt.Errorf("MakeAttestation: %w", err)
	}
	if !claimTypeAllowed(admin, claimType) {
		return fmt.Errorf("MakeAttestation: claim type '%s': %w", claimType, ErrInvalidClaimType)
	}
	if identity.Reputation < admin.MinReputation {
		return fmt.Errorf("MakeAttestation: caller '%s' has reputation %d, threshold is %d: %w",
			callerID, identity.Reputation, admin.MinReputation, ErrInsufficientReputation)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("MakeAttestation: %w", err)
	}

	attestation := model.Attestation{
		ObjectType: attestationObjectType,
		AttesterID: callerID,
		AssetID:    assetID,
		ClaimType:  claimType,
		Value:      value,
		AttestedAt: now,
		Revoked:    false,
	}
	attestationKey, err := s.createAttestationKey(ctx, callerID, assetID, claimType)
	if err != nil {
		return fmt.Errorf("MakeAttestation: failed to create attestation key: %w", err)
	}
	attestationBytes, err := json.Marshal(attestation)
	if err != nil {
		return fmt.Errorf("MakeAttestation: failed to marshal attestation: %w", err)
	}
	if err := ctx.GetStub().PutState(attestationKey, attestationBytes); err != nil {
		return fmt.Errorf("MakeAttestation: failed to save attestation (%s, %d, %s): %w", callerID, assetID, claimType, err)
	}

	s.emitRegistryEvent(ctx, "AttestationRecorded", map[string]interface{}{
		"attesterId": callerID, "assetId": assetID, "claimType": claimType, "attestedAt": now,
	})
	attLogger.Infof("Attestation (%s) on asset %d recorded by '%s'", claimType, assetID, callerID)
	return nil
}

// UpdateAttestation overwrites the value and attestation time of the caller's
// existing, non-revoked attestation. Revocation state is untouched.
func (s *RegistryContract) UpdateAttestation(ctx contractapi.TransactionContextInterface, assetID uint64, claimType, value string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("UpdateAttestation: %w", err)
	}
	if err := s.validateRequiredString(claimType, "claimType", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateRequiredString(value, "value", maxDescriptionLength); err != nil {
		return err
	}

	attestation, err := s.getAttestationRecord(ctx, callerID, assetID, claimType)
	if err != nil {
		return fmt.Errorf("UpdateAttestation: %w", err)
	}
	if attestation.Revoked {
		return fmt.Errorf("UpdateAttestation: attestation (%s, %d, %s): %w", callerID, assetID, claimType, ErrAttestationRevoked)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("UpdateAttestation: %w", err)
	}

	attestation.Value = value
	attestation.AttestedAt = now

	attestationKey, err := s.createAttestationKey(ctx, callerID, assetID, claimType)
	if err != nil {
		return fmt.Errorf("UpdateAttestation: failed to create attestation key: %w", err)
	}
	attestationBytes, err := json.Marshal(attestation)
	if err != nil {
		return fmt.Errorf("UpdateAttestation: failed to marshal attestation: %w", err)
	}
	if err := ctx.GetStub().PutState(attestationKey, attestationBytes); err != nil {
		return fmt.Errorf("UpdateAttestation: failed to save attestation (%s, %d, %s): %w", callerID, assetID, claimType, err)
	}
	attLogger.Infof("Attestation (%s) on asset %d updated by '%s'", claimType, assetID, callerID)
	return nil
}

// RevokeAttestation marks the caller's attestation as revoked. Revocation is
// one-directional; the claim value is retained for audit.
func (s *RegistryContract) RevokeAttestation(ctx contractapi.TransactionContextInterface, assetID uint64, claimType string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("RevokeAttestation: %w", err)
	}
	if err := s.validateRequiredString(claimType, "claimType", maxStringInputLength); err != nil {
		return err
	}

	attestation, err := s.getAttestationRecord(ctx, callerID, assetID, claimType)
	if err != nil {
		return fmt.Errorf("RevokeAttestation: %w", err)
	}
	if attestation.Revoked {
		return fmt.Errorf("RevokeAttestation: attestation (%s, %d, %s): %w", callerID, assetID, claimType, ErrAttestationRevoked)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("RevokeAttestation: %w", err)
	}

	attestation.Revoked = true
	attestation.RevokedAt = now

	attestationKey, err := s.createAttestationKey(ctx, callerID, assetID, claimType)
	if err != nil {
		return fmt.Errorf("RevokeAttestation: failed to create attestation key: %w", err)
	}
	attestationBytes, err := json.Marshal(attestation)
	if err != nil {
		return fmt.Errorf("RevokeAttestation: failed to marshal attestation: %w", err)
	}
	if err := ctx.GetStub().PutState(attestationKey, attestationBytes); err != nil {
		return fmt.Errorf("RevokeAttestation: failed to save attestation (%s, %d, %s): %w", callerID, assetID, claimType, err)
	}

	s.emitRegistryEvent(ctx, "AttestationRevoked", map[string]interface{}{
		"attesterId": callerID, "assetId": assetID, "claimType": claimType, "revokedAt": now,
	})
	attLogger.Infof("Attestation (%s) on asset %d revoked by '%s'", claimType, assetID, callerID)
	return nil
}

// claimTypeAllowed checks allow-list membership.
func claimTypeAllowed(admin *model.Administration, claimType string) bool {
	for _, allowed := range admin.AllowedClaimTypes {
		if allowed == claimType {
			return true
		}
	}
	return false
}
