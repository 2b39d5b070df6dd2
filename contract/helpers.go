package contract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"assetregistry/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// --- Key Creation Helpers (using Composite Keys) ---

func (s *RegistryContract) createIdentityKey(ctx contractapi.TransactionContextInterface, actorID string) (string, error) {
	return ctx.GetStub().CreateCompositeKey(identityObjectType, []string{actorID})
}

func (s *RegistryContract) createAttributeKey(ctx contractapi.TransactionContextInterface, actorID, name string) (string, error) {
	return ctx.GetStub().CreateCompositeKey(attributeObjectType, []string{actorID, name})
}

func (s *RegistryContract) createAssetKey(ctx contractapi.TransactionContextInterface, assetID uint64) (string, error) {
	return ctx.GetStub().CreateCompositeKey(assetObjectType, []string{strconv.FormatUint(assetID, 10)})
}

func (s *RegistryContract) createOwnershipKey(ctx contractapi.TransactionContextInterface, assetID, index uint64) (string, error) {
	return ctx.GetStub().CreateCompositeKey(ownershipObjectType, []string{
		strconv.FormatUint(assetID, 10),
		strconv.FormatUint(index, 10),
	})
}

func (s *RegistryContract) createAttestationKey(ctx contractapi.TransactionContextInterface, attesterID string, assetID uint64, claimType string) (string, error) {
	return ctx.GetStub().CreateCompositeKey(attestationObjectType, []string{
		attesterID,
		strconv.FormatUint(assetID, 10),
		claimType,
	})
}

func (s *RegistryContract) createAdminKey(ctx contractapi.TransactionContextInterface) (string, error) {
	return ctx.GetStub().CreateCompositeKey(adminObjectType, []string{"config"})
}

func (s *RegistryContract) createAssetCounterKey(ctx contractapi.TransactionContextInterface) (string, error) {
	return ctx.GetStub().CreateCompositeKey(counterObjectType, []string{"asset"})
}

func (s *RegistryContract) createHistoryCounterKey(ctx contractapi.TransactionContextInterface, assetID uint64) (string, error) {
	return ctx.GetStub().CreateCompositeKey(counterObjectType, []string{"history", strconv.FormatUint(assetID, 10)})
}

// --- Record Load Helpers ---

// getIdentity retrieves an identity record. A missing record is reported as
// ErrIdentityNotFound.
func (s *RegistryContract) getIdentity(ctx contractapi.TransactionContextInterface, actorID string) (*model.Identity, error) {
	key, err := s.createIdentityKey(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity key for '%s': %w", actorID, err)
	}
	raw, err := ctx.GetStub().GetState(key)
	if err != nil {
		return nil, fmt.Errorf("ledger error retrieving identity '%s': %w", actorID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("identity '%s': %w", actorID, ErrIdentityNotFound)
	}
	var identity model.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity '%s': %w", actorID, err)
	}
	return &identity, nil
}

// isVerifiedIdentity is the is-verified predicate: false for unregistered
// actors, ledger errors surface as errors.
func (s *RegistryContract) isVerifiedIdentity(ctx contractapi.TransactionContextInterface, actorID string) (bool, error) {
	key, err := s.createIdentityKey(ctx, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to create identity key for '%s': %w", actorID, err)
	}
	raw, err := ctx.GetStub().GetState(key)
	if err != nil {
		return false, fmt.Errorf("ledger error retrieving identity '%s': %w", actorID, err)
	}
	if raw == nil {
		return false, nil
	}
	var identity model.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return false, fmt.Errorf("failed to unmarshal identity '%s': %w", actorID, err)
	}
	return identity.Verified, nil
}

// getAsset retrieves an asset record. A missing record is reported as
// ErrAssetNotFound.
func (s *RegistryContract) getAsset(ctx contractapi.TransactionContextInterface, assetID uint64) (*model.Asset, error) {
	key, err := s.createAssetKey(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset key for %d: %w", assetID, err)
	}
	raw, err := ctx.GetStub().GetState(key)
	if err != nil {
		return nil, fmt.Errorf("ledger error retrieving asset %d: %w", assetID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("asset %d: %w", assetID, ErrAssetNotFound)
	}
	var asset model.Asset
	if err := json.Unmarshal(raw, &asset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset %d: %w", assetID, err)
	}
	return &asset, nil
}

// getAttestationRecord retrieves the attestation at (attester, asset, claim
// type). A missing record is reported as ErrAttestationNotFound.
func (s *RegistryContract) getAttestationRecord(ctx contractapi.TransactionContextInterface, attesterID string, assetID uint64, claimType string) (*model.Attestation, error) {
	key, err := s.createAttestationKey(ctx, attesterID, assetID, claimType)
	if err != nil {
		return nil, fmt.Errorf("failed to create attestation key: %w", err)
	}
	raw, err := ctx.GetStub().GetState(key)
	if err != nil {
		return nil, fmt.Errorf("ledger error retrieving attestation (%s, %d, %s): %w", attesterID, assetID, claimType, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("attestation (%s, %d, %s): %w", attesterID, assetID, claimType, ErrAttestationNotFound)
	}
	var att model.Attestation
	if err := json.Unmarshal(raw, &att); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attestation (%s, %d, %s): %w", attesterID, assetID, claimType, err)
	}
	return &att, nil
}

// getAdministration retrieves the administration record. The registry must
// have been bootstrapped before any admin-gated or policy-gated operation.
func (s *RegistryContract) getAdministration(ctx contractapi.TransactionContextInterface) (*model.Administration, error) {
	key, err := s.createAdminKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create administration key: %w", err)
	}
	raw, err := ctx.GetStub().GetState(key)
	if err != nil {
		return nil, fmt.Errorf("ledger error retrieving administration record: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("registry is not bootstrapped: %w", ErrUnauthorized)
	}
	var admin model.Administration
	if err := json.Unmarshal(raw, &admin); err != nil {
		return nil, fmt.Errorf("failed to unmarshal administration record: %w", err)
	}
	return &admin, nil
}

// requireAdmin verifies that callerID currently holds the administrator role.
func (s *RegistryContract) requireAdmin(ctx contractapi.TransactionContextInterface, callerID string) error {
	admin, err := s.getAdministration(ctx)
	if err != nil {
		return err
	}
	if admin.AdminID != callerID {
		return fmt.Errorf("caller '%s' is not the administrator: %w", callerID, ErrUnauthorized)
	}
	return nil
}

// --- Counter Helpers ---

// readCounter returns the stored counter value, or 0 when the key has never
// been written.
func (s *RegistryContract) readCounter(ctx contractapi.TransactionContextInterface, key string) (uint64, error) {
	raw, err := ctx.GetStub().GetState(key)
	if err != nil {
		return 0, fmt.Errorf("ledger error reading counter '%s': %w", key, err)
	}
	if raw == nil {
		return 0, nil
	}
	value, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt counter '%s' value '%s': %w", key, string(raw), err)
	}
	return value, nil
}

func (s *RegistryContract) writeCounter(ctx contractapi.TransactionContextInterface, key string, value uint64) error {
	if err := ctx.GetStub().PutState(key, []byte(strconv.FormatUint(value, 10))); err != nil {
		return fmt.Errorf("failed to write counter '%s': %w", key, err)
	}
	return nil
}

// --- Validation Helper Functions ---

func (s *RegistryContract) validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%s cannot be empty: %w", field, ErrInvalidInput)
	}
	if len(input) > max {
		return fmt.Errorf("%s exceeds max length %d: %w", field, max, ErrInvalidInput)
	}
	return nil
}

func (s *RegistryContract) validateOptionalString(input, field string, max int) error {
	if input != "" && len(input) > max {
		return fmt.Errorf("%s exceeds max length %d: %w", field, max, ErrInvalidInput)
	}
	return nil
}

// --- Event Helper ---

// emitRegistryEvent sends a chaincode event. Event failures are logged, not
// propagated; events are advisory and must not abort a committed transition.
func (s *RegistryContract) emitRegistryEvent(ctx contractapi.TransactionContextInterface, eventName string, payload map[string]interface{}) {
	for k, v := range payload {
		if t, ok := v.(time.Time); ok {
			payload[k] = t.Format(time.RFC3339)
		}
	}
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		logger.Warningf("emitRegistryEvent: failed to marshal payload for event '%s': %v", eventName, err)
		return
	}
	if err := ctx.GetStub().SetEvent(eventName, eventBytes); err != nil {
		logger.Warningf("emitRegistryEvent: failed to set event '%s': %v", eventName, err)
	}
}
