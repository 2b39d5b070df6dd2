package contract

import (
	"encoding/json"
	"errors"
	"fmt"

	"assetregistry/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Administration Operations ---

// BootstrapLedger seeds the administration record: the caller becomes the
// first administrator, the minimum reputation threshold takes its default,
// and the claim-type allow list gets its fixed initial membership. It fails
// once an administration record exists; subsequent handovers go through
// Initialize.
func (s *RegistryContract) BootstrapLedger(ctx contractapi.TransactionContextInterface) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("BootstrapLedger: %w", err)
	}

	adminKey, err := s.createAdminKey(ctx)
	if err != nil {
		return fmt.Errorf("BootstrapLedger: failed to create administration key: %w", err)
	}
	existing, err := ctx.GetStub().GetState(adminKey)
	if err != nil {
		return fmt.Errorf("BootstrapLedger: failed to check for existing administration record: %w", err)
	}
	if existing != nil {
		return errors.New("registry is already bootstrapped. BootstrapLedger should not be re-run")
	}

	admin := model.Administration{
		ObjectType:        adminObjectType,
		AdminID:           callerID,
		MinReputation:     model.DefaultMinReputation,
		AllowedClaimTypes: model.DefaultClaimTypes(),
	}
	adminBytes, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("BootstrapLedger: failed to marshal administration record: %w", err)
	}
	if err := ctx.GetStub().PutState(adminKey, adminBytes); err != nil {
		return fmt.Errorf("BootstrapLedger: failed to save administration record: %w", err)
	}

	logger.Infof("Registry bootstrapped: '%s' is now the administrator (min reputation %d)", callerID, admin.MinReputation)
	return nil
}

// Initialize rotates the administrator and the minimum-reputation threshold
// together, atomically. Only the current administrator may call it, and the
// current administrator may call it again at any later point to re-delegate.
// The claim-type allow list is untouched.
func (s *RegistryContract) Initialize(ctx contractapi.TransactionContextInterface, newAdmin string, minReputation uint64) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("Initialize: %w", err)
	}
	if err := s.validateRequiredString(newAdmin, "newAdmin", maxStringInputLength); err != nil {
		return err
	}

	admin, err := s.getAdministration(ctx)
	if err != nil {
		return fmt.Errorf("Initialize: %w", err)
	}
	if admin.AdminID != callerID {
		return fmt.Errorf("Initialize: caller '%s' is not the administrator: %w", callerID, ErrUnauthorized)
	}

	admin.AdminID = newAdmin
	admin.MinReputation = minReputation

	adminKey, err := s.createAdminKey(ctx)
	if err != nil {
		return fmt.Errorf("Initialize: failed to create administration key: %w", err)
	}
	adminBytes, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("Initialize: failed to marshal administration record: %w", err)
	}
	if err := ctx.GetStub().PutState(adminKey, adminBytes); err != nil {
		return fmt.Errorf("Initialize: failed to save administration record: %w", err)
	}

	s.emitRegistryEvent(ctx, "AdministrationRotated", map[string]interface{}{
		"previousAdminId": callerID, "adminId": newAdmin, "minReputation": minReputation,
	})
	logger.Infof("Administration rotated by '%s': new admin '%s', min reputation %d", callerID, newAdmin, minReputation)
	return nil
}

// --- Access Control Predicates ---
// Pure read-only queries over current state; the mutating operations above
// use the same state reads as preconditions.

// IsAdmin reports whether the actor currently holds the administrator role.
// False before bootstrap.
func (s *RegistryContract) IsAdmin(ctx contractapi.TransactionContextInterface, actor string) (bool, error) {
	admin, err := s.getAdministration(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}
	return admin.AdminID == actor, nil
}

// IsRegistered reports whether the actor has an identity record.
func (s *RegistryContract) IsRegistered(ctx contractapi.TransactionContextInterface, actor string) (bool, error) {
	key, err := s.createIdentityKey(ctx, actor)
	if err != nil {
		return false, fmt.Errorf("IsRegistered: failed to create identity key for '%s': %w", actor, err)
	}
	raw, err := ctx.GetStub().GetState(key)
	if err != nil {
		return false, fmt.Errorf("IsRegistered: ledger error for '%s': %w", actor, err)
	}
	return raw != nil, nil
}

// IsAssetOwner reports whether the actor is the current owner of the asset.
// False for unknown assets.
func (s *RegistryContract) IsAssetOwner(ctx contractapi.TransactionContextInterface, actor string, assetID uint64) (bool, error) {
	asset, err := s.getAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return false, nil
		}
		return false, err
	}
	return asset.OwnerID == actor, nil
}

// IsValidClaimType reports whether the claim type is currently allow-listed.
// False before bootstrap.
func (s *RegistryContract) IsValidClaimType(ctx contractapi.TransactionContextInterface, claimType string) (bool, error) {
	admin, err := s.getAdministration(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}
	return claimTypeAllowed(admin, claimType), nil
}
