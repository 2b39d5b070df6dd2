package contract

import (
	"encoding/json"
	"errors"
	"fmt"

	"assetregistry/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Query Functions ---
// Read-only surface mirroring the data model. Nothing here mutates state.

// GetIdentityDetails returns the identity record for an actor.
func (s *RegistryContract) GetIdentityDetails(ctx contractapi.TransactionContextInterface, actor string) (*model.Identity, error) {
	logger.Debugf("GetIdentityDetails: querying identity '%s'", actor)
	if err := s.validateRequiredString(actor, "actor", maxStringInputLength); err != nil {
		return nil, err
	}
	return s.getIdentity(ctx, actor)
}

// GetIdentityAttribute returns the value of a named attribute on an identity.
func (s *RegistryContract) GetIdentityAttribute(ctx contractapi.TransactionContextInterface, actor, name string) (*model.IdentityAttribute, error) {
	logger.Debugf("GetIdentityAttribute: querying attribute '%s' of '%s'", name, actor)
	if err := s.validateRequiredString(actor, "actor", maxStringInputLength); err != nil {
		return nil, err
	}
	if err := s.validateRequiredString(name, "attribute name", maxStringInputLength); err != nil {
		return nil, err
	}

	attributeKey, err := s.createAttributeKey(ctx, actor, name)
	if err != nil {
		return nil, fmt.Errorf("GetIdentityAttribute: failed to create attribute key for '%s'/'%s': %w", actor, name, err)
	}
	raw, err := ctx.GetStub().GetState(attributeKey)
	if err != nil {
		return nil, fmt.Errorf("GetIdentityAttribute: ledger error for '%s'/'%s': %w", actor, name, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("GetIdentityAttribute: attribute '%s' not set for '%s': %w", name, actor, ErrInvalidInput)
	}
	var attribute model.IdentityAttribute
	if err := json.Unmarshal(raw, &attribute); err != nil {
		return nil, fmt.Errorf("GetIdentityAttribute: failed to unmarshal attribute '%s' for '%s': %w", name, actor, err)
	}
	return &attribute, nil
}

// IsIdentityVerified reports the verification flag; false for unregistered
// actors.
func (s *RegistryContract) IsIdentityVerified(ctx contractapi.TransactionContextInterface, actor string) (bool, error) {
	return s.isVerifiedIdentity(ctx, actor)
}

// GetReputationScore returns the actor's reputation score.
func (s *RegistryContract) GetReputationScore(ctx contractapi.TransactionContextInterface, actor string) (uint64, error) {
	identity, err := s.getIdentity(ctx, actor)
	if err != nil {
		return 0, fmt.Errorf("GetReputationScore: %w", err)
	}
	return identity.Reputation, nil
}

// GetAssetDetails returns the asset record.
func (s *RegistryContract) GetAssetDetails(ctx contractapi.TransactionContextInterface, assetID uint64) (*model.Asset, error) {
	logger.Debugf("GetAssetDetails: querying asset %d", assetID)
	return s.getAsset(ctx, assetID)
}

// GetAssetOwner returns the current owner of an asset.
func (s *RegistryContract) GetAssetOwner(ctx contractapi.TransactionContextInterface, assetID uint64) (string, error) {
	asset, err := s.getAsset(ctx, assetID)
	if err != nil {
		return "", fmt.Errorf("GetAssetOwner: %w", err)
	}
	return asset.OwnerID, nil
}

// GetOwnershipHistoryLength returns the number of ownership intervals
// recorded for an asset.
func (s *RegistryContract) GetOwnershipHistoryLength(ctx contractapi.TransactionContextInterface, assetID uint64) (uint64, error) {
	if _, err := s.getAsset(ctx, assetID); err != nil {
		return 0, fmt.Errorf("GetOwnershipHistoryLength: %w", err)
	}
	counterKey, err := s.createHistoryCounterKey(ctx, assetID)
	if err != nil {
		return 0, fmt.Errorf("GetOwnershipHistoryLength: failed to create history counter key for asset %d: %w", assetID, err)
	}
	length, err := s.readCounter(ctx, counterKey)
	if err != nil {
		return 0, fmt.Errorf("GetOwnershipHistoryLength: %w", err)
	}
	return length, nil
}

// GetOwnershipHistoryEntry returns one interval of an asset's ownership
// timeline by sequence index.
func (s *RegistryContract) GetOwnershipHistoryEntry(ctx contractapi.TransactionContextInterface, assetID, index uint64) (*model.OwnershipRecord, error) {
	recordKey, err := s.createOwnershipKey(ctx, assetID, index)
	if err != nil {
		return nil, fmt.Errorf("GetOwnershipHistoryEntry: failed to create ownership key for asset %d index %d: %w", assetID, index, err)
	}
	raw, err := ctx.GetStub().GetState(recordKey)
	if err != nil {
		return nil, fmt.Errorf("GetOwnershipHistoryEntry: ledger error for asset %d index %d: %w", assetID, index, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("GetOwnershipHistoryEntry: asset %d has no history entry %d: %w", assetID, index, ErrAssetNotFound)
	}
	var record model.OwnershipRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("GetOwnershipHistoryEntry: failed to unmarshal entry %d for asset %d: %w", index, assetID, err)
	}
	return &record, nil
}

// GetOwnershipHistory returns all ownership intervals for an asset in
// sequence order.
func (s *RegistryContract) GetOwnershipHistory(ctx contractapi.TransactionContextInterface, assetID uint64) ([]model.OwnershipRecord, error) {
	length, err := s.GetOwnershipHistoryLength(ctx, assetID)
	if err != nil {
		return nil, err
	}
	records := []model.OwnershipRecord{}
	for index := uint64(0); index < length; index++ {
		record, err := s.GetOwnershipHistoryEntry(ctx, assetID, index)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// GetAttestation returns the attestation at (attester, asset, claim type).
func (s *RegistryContract) GetAttestation(ctx contractapi.TransactionContextInterface, attester string, assetID uint64, claimType string) (*model.Attestation, error) {
	logger.Debugf("GetAttestation: querying (%s, %d, %s)", attester, assetID, claimType)
	if err := s.validateRequiredString(attester, "attester", maxStringInputLength); err != nil {
		return nil, err
	}
	if err := s.validateRequiredString(claimType, "claimType", maxStringInputLength); err != nil {
		return nil, err
	}
	return s.getAttestationRecord(ctx, attester, assetID, claimType)
}

// IsAttestationValid reports whether the attestation exists and has not been
// revoked. False, not an error, when the record is absent.
func (s *RegistryContract) IsAttestationValid(ctx contractapi.TransactionContextInterface, attester string, assetID uint64, claimType string) (bool, error) {
	attestation, err := s.getAttestationRecord(ctx, attester, assetID, claimType)
	if err != nil {
		if errors.Is(err, ErrAttestationNotFound) {
			return false, nil
		}
		return false, err
	}
	return attestation.Valid(), nil
}

// GetAllowedClaimTypes returns the current claim-type allow list.
func (s *RegistryContract) GetAllowedClaimTypes(ctx contractapi.TransactionContextInterface) ([]string, error) {
	admin, err := s.getAdministration(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAllowedClaimTypes: %w", err)
	}
	return admin.AllowedClaimTypes, nil
}

// GetAssetsByOwner returns every asset currently owned by the given actor.
func (s *RegistryContract) GetAssetsByOwner(ctx contractapi.TransactionContextInterface, owner string) ([]model.Asset, error) {
	logger.Debugf("GetAssetsByOwner: querying assets of '%s'", owner)
	if err := s.validateRequiredString(owner, "owner", maxStringInputLength); err != nil {
		return nil, err
	}

	resultsIterator, err := ctx.GetStub().GetStateByPartialCompositeKey(assetObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("GetAssetsByOwner: failed to get assets iterator: %w", err)
	}
	defer resultsIterator.Close()

	assets := []model.Asset{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			logger.Warningf("GetAssetsByOwner: failed to get next asset from iterator: %v. Skipping.", iterErr)
			continue
		}
		var asset model.Asset
		if err := json.Unmarshal(queryResponse.Value, &asset); err != nil {
			logger.Warningf("GetAssetsByOwner: failed to unmarshal asset data for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		if asset.OwnerID == owner {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}

// GetAllIdentities returns every identity record. Admin-only.
func (s *RegistryContract) GetAllIdentities(ctx contractapi.TransactionContextInterface) ([]model.Identity, error) {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAllIdentities: %w", err)
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, fmt.Errorf("GetAllIdentities: %w", err)
	}

	resultsIterator, err := ctx.GetStub().GetStateByPartialCompositeKey(identityObjectType, []string{})
	if err != nil {
		return nil, fmt.Errorf("GetAllIdentities: failed to get identities iterator: %w", err)
	}
	defer resultsIterator.Close()

	identities := []model.Identity{}
	for resultsIterator.HasNext() {
		queryResponse, iterErr := resultsIterator.Next()
		if iterErr != nil {
			logger.Warningf("GetAllIdentities: failed to get next identity from iterator: %v. Skipping.", iterErr)
			continue
		}
		var identity model.Identity
		if err := json.Unmarshal(queryResponse.Value, &identity); err != nil {
			logger.Warningf("GetAllIdentities: failed to unmarshal identity data for key '%s': %v. Skipping.", queryResponse.Key, err)
			continue
		}
		identities = append(identities, identity)
	}
	logger.Infof("Admin '%s' retrieved %d registered identities", callerID, len(identities))
	return identities, nil
}
