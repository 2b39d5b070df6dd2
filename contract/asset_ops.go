package contract

import (
	"encoding/json"
	"fmt"
	"time"

	"assetregistry/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Asset Registry & Ownership History Operations ---

// RegisterAsset creates a new asset owned by the caller, who must be a
// verified identity. The asset id comes from a strictly increasing global
// counter starting at 0 and is never reused. The asset's ownership history
// opens with entry 0: owner = caller, start = now, end open.
func (s *RegistryContract) RegisterAsset(ctx contractapi.TransactionContextInterface, title, description, assetType, metadata string) (uint64, error) {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return 0, fmt.Errorf("RegisterAsset: %w", err)
	}
	if err := s.validateRequiredString(title, "title", maxStringInputLength); err != nil {
		return 0, err
	}
	if err := s.validateOptionalString(description, "description", maxDescriptionLength); err != nil {
		return 0, err
	}
	if err := s.validateRequiredString(assetType, "assetType", maxStringInputLength); err != nil {
		return 0, err
	}
	if err := s.validateOptionalString(metadata, "metadata", maxMetadataLength); err != nil {
		return 0, err
	}

	verified, err := s.isVerifiedIdentity(ctx, callerID)
	if err != nil {
		return 0, fmt.Errorf("RegisterAsset: %w", err)
	}
	if !verified {
		return 0, fmt.Errorf("RegisterAsset: caller '%s': %w", callerID, ErrIdentityNotVerified)
	}

	counterKey, err := s.createAssetCounterKey(ctx)
	if err != nil {
		return 0, fmt.Errorf("RegisterAsset: failed to create asset counter key: %w", err)
	}
	assetID, err := s.readCounter(ctx, counterKey)
	if err != nil {
		return 0, fmt.Errorf("RegisterAsset: %w", err)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return 0, fmt.Errorf("RegisterAsset: %w", err)
	}

	asset := model.Asset{
		ObjectType:    assetObjectType,
		ID:            assetID,
		Title:         title,
		Description:   description,
		AssetType:     assetType,
		OwnerID:       callerID,
		Metadata:      metadata,
		RegisteredAt:  now,
		LastUpdatedAt: now,
	}
	assetKey, err := s.createAssetKey(ctx, assetID)
	if err != nil {
		return 0, fmt.Errorf("RegisterAsset: failed to create asset key for %d: %w", assetID, err)
	}
	assetBytes, err := json.Marshal(asset)
	if err != nil {
		return 0, fmt.Errorf("RegisterAsset: failed to marshal asset %d: %w", assetID, err)
	}
	if err := ctx.GetStub().PutState(assetKey, assetBytes); err != nil {
		return 0, fmt.Errorf("RegisterAsset: failed to save asset %d: %w", assetID, err)
	}

	if err := s.appendOwnershipRecord(ctx, assetID, callerID, now); err != nil {
		return 0, fmt.Errorf("RegisterAsset: %w", err)
	}
	if err := s.writeCounter(ctx, counterKey, assetID+1); err != nil {
		return 0, fmt.Errorf("RegisterAsset: %w", err)
	}

	s.emitRegistryEvent(ctx, "AssetRegistered", map[string]interface{}{
		"assetId": assetID, "ownerId": callerID, "assetType": assetType, "registeredAt": now,
	})
	logger.Infof("Asset %d ('%s') registered by '%s'", assetID, title, callerID)
	return assetID, nil
}

// UpdateAssetDetails overwrites title, description and metadata of an asset
// the caller owns, bumping the last-update time. Owner and registration time
// are unchanged.
func (s *RegistryContract) UpdateAssetDetails(ctx contractapi.TransactionContextInterface, assetID uint64, title, description, metadata string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("UpdateAssetDetails: %w", err)
	}
	if err := s.validateRequiredString(title, "title", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateOptionalString(description, "description", maxDescriptionLength); err != nil {
		return err
	}
	if err := s.validateOptionalString(metadata, "metadata", maxMetadataLength); err != nil {
		return err
	}

	asset, err := s.getAsset(ctx, assetID)
	if err != nil {
		return fmt.Errorf("UpdateAssetDetails: %w", err)
	}
	if asset.OwnerID != callerID {
		return fmt.Errorf("UpdateAssetDetails: caller '%s' does not own asset %d: %w", callerID, assetID, ErrNotAssetOwner)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("UpdateAssetDetails: %w", err)
	}

	asset.Title = title
	asset.Description = description
	asset.Metadata = metadata
	asset.LastUpdatedAt = now

	assetKey, err := s.createAssetKey(ctx, assetID)
	if err != nil {
		return fmt.Errorf("UpdateAssetDetails: failed to create asset key for %d: %w", assetID, err)
	}
	assetBytes, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("UpdateAssetDetails: failed to marshal asset %d: %w", assetID, err)
	}
	if err := ctx.GetStub().PutState(assetKey, assetBytes); err != nil {
		return fmt.Errorf("UpdateAssetDetails: failed to save asset %d: %w", assetID, err)
	}
	logger.Infof("Asset %d details updated by owner '%s'", assetID, callerID)
	return nil
}

// TransferAsset hands ownership of an asset from the caller to a verified new
// owner. In the same atomic step the previous open history interval is closed
// at the new interval's start time and a new open interval is appended.
func (s *RegistryContract) TransferAsset(ctx contractapi.TransactionContextInterface, assetID uint64, newOwner string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("TransferAsset: %w", err)
	}
	if err := s.validateRequiredString(newOwner, "newOwner", maxStringInputLength); err != nil {
		return err
	}

	asset, err := s.getAsset(ctx, assetID)
	if err != nil {
		return fmt.Errorf("TransferAsset: %w", err)
	}
	if asset.OwnerID != callerID {
		return fmt.Errorf("TransferAsset: caller '%s' does not own asset %d: %w", callerID, assetID, ErrNotAssetOwner)
	}

	verified, err := s.isVerifiedIdentity(ctx, newOwner)
	if err != nil {
		return fmt.Errorf("TransferAsset: %w", err)
	}
	if !verified {
		return fmt.Errorf("TransferAsset: new owner '%s': %w", newOwner, ErrIdentityNotVerified)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("TransferAsset: %w", err)
	}

	asset.OwnerID = newOwner
	asset.LastUpdatedAt = now

	assetKey, err := s.createAssetKey(ctx, assetID)
	if err != nil {
		return fmt.Errorf("TransferAsset: failed to create asset key for %d: %w", assetID, err)
	}
	assetBytes, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("TransferAsset: failed to marshal asset %d: %w", assetID, err)
	}
	if err := ctx.GetStub().PutState(assetKey, assetBytes); err != nil {
		return fmt.Errorf("TransferAsset: failed to save asset %d: %w", assetID, err)
	}

	if err := s.appendOwnershipRecord(ctx, assetID, newOwner, now); err != nil {
		return fmt.Errorf("TransferAsset: %w", err)
	}

	s.emitRegistryEvent(ctx, "AssetTransferred", map[string]interface{}{
		"assetId": assetID, "previousOwnerId": callerID, "newOwnerId": newOwner, "transferredAt": now,
	})
	logger.Infof("Asset %d transferred from '%s' to '%s'", assetID, callerID, newOwner)
	return nil
}

// appendOwnershipRecord implements the history-append algorithm: read the
// per-asset counter c, write entry c as the new open interval, close entry
// c-1 (guaranteed to exist and be open when c > 0) at the new start time, and
// advance the counter to c+1.
func (s *RegistryContract) appendOwnershipRecord(ctx contractapi.TransactionContextInterface, assetID uint64, ownerID string, start time.Time) error {
	counterKey, err := s.createHistoryCounterKey(ctx, assetID)
	if err != nil {
		return fmt.Errorf("failed to create history counter key for asset %d: %w", assetID, err)
	}
	index, err := s.readCounter(ctx, counterKey)
	if err != nil {
		return err
	}

	record := model.OwnershipRecord{
		ObjectType: ownershipObjectType,
		AssetID:    assetID,
		Index:      index,
		OwnerID:    ownerID,
		StartTime:  start,
	}
	recordKey, err := s.createOwnershipKey(ctx, assetID, index)
	if err != nil {
		return fmt.Errorf("failed to create ownership key for asset %d index %d: %w", assetID, index, err)
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal ownership record for asset %d index %d: %w", assetID, index, err)
	}
	if err := ctx.GetStub().PutState(recordKey, recordBytes); err != nil {
		return fmt.Errorf("failed to save ownership record for asset %d index %d: %w", assetID, index, err)
	}

	if index > 0 {
		prevKey, err := s.createOwnershipKey(ctx, assetID, index-1)
		if err != nil {
			return fmt.Errorf("failed to create ownership key for asset %d index %d: %w", assetID, index-1, err)
		}
		prevBytes, err := ctx.GetStub().GetState(prevKey)
		if err != nil {
			return fmt.Errorf("ledger error reading ownership record for asset %d index %d: %w", assetID, index-1, err)
		}
		if prevBytes == nil {
			return fmt.Errorf("ownership history for asset %d is missing entry %d", assetID, index-1)
		}
		var prev model.OwnershipRecord
		if err := json.Unmarshal(prevBytes, &prev); err != nil {
			return fmt.Errorf("failed to unmarshal ownership record for asset %d index %d: %w", assetID, index-1, err)
		}
		prev.EndTime = start
		closedBytes, err := json.Marshal(prev)
		if err != nil {
			return fmt.Errorf("failed to marshal closed ownership record for asset %d index %d: %w", assetID, index-1, err)
		}
		if err := ctx.GetStub().PutState(prevKey, closedBytes); err != nil {
			return fmt.Errorf("failed to close ownership record for asset %d index %d: %w", assetID, index-1, err)
		}
	}

	return s.writeCounter(ctx, counterKey, index+1)
}
