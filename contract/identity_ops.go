package contract

import (
	"encoding/json"
	"fmt"

	"assetregistry/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var idLogger = flogging.MustGetLogger("assetregistry.identity")

// --- Identity Registry Operations ---

// RegisterIdentity creates the profile record for the calling actor. The
// caller identifier is the key; a second registration for the same actor is
// rejected and the stored record is left untouched.
func (s *RegistryContract) RegisterIdentity(ctx contractapi.TransactionContextInterface, name, email string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("RegisterIdentity: %w", err)
	}
	if err := s.validateRequiredString(name, "name", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateOptionalString(email, "email", maxStringInputLength); err != nil {
		return err
	}

	identityKey, err := s.createIdentityKey(ctx, callerID)
	if err != nil {
		return fmt.Errorf("RegisterIdentity: failed to create identity key for '%s': %w", callerID, err)
	}
	existing, err := ctx.GetStub().GetState(identityKey)
	if err != nil {
		return fmt.Errorf("RegisterIdentity: failed to check for existing identity '%s': %w", callerID, err)
	}
	if existing != nil {
		return fmt.Errorf("RegisterIdentity: actor '%s': %w", callerID, ErrAlreadyRegistered)
	}

	now, err := s.getCurrentTxTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("RegisterIdentity: %w", err)
	}

	identity := model.Identity{
		ObjectType:   identityObjectType,
		ActorID:      callerID,
		Name:         name,
		Email:        email,
		Verified:     false,
		Reputation:   0,
		RegisteredAt: now,
	}
	identityBytes, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("RegisterIdentity: failed to marshal identity '%s': %w", callerID, err)
	}
	if err := ctx.GetStub().PutState(identityKey, identityBytes); err != nil {
		return fmt.Errorf("RegisterIdentity: failed to save identity '%s': %w", callerID, err)
	}

	s.emitRegistryEvent(ctx, "IdentityRegistered", map[string]interface{}{
		"actorId": callerID, "name": name, "registeredAt": now,
	})
	idLogger.Infof("Identity registered for actor '%s'", callerID)
	return nil
}

// UpdateIdentity replaces the caller's name and email in place. Verification
// status, reputation and registration time are untouched.
func (s *RegistryContract) UpdateIdentity(ctx contractapi.TransactionContextInterface, name, email string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("UpdateIdentity: %w", err)
	}
	if err := s.validateRequiredString(name, "name", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateOptionalString(email, "email", maxStringInputLength); err != nil {
		return err
	}

	identity, err := s.getIdentity(ctx, callerID)
	if err != nil {
		return fmt.Errorf("UpdateIdentity: %w", err)
	}

	identity.Name = name
	identity.Email = email

	identityKey, err := s.createIdentityKey(ctx, callerID)
	if err != nil {
		return fmt.Errorf("UpdateIdentity: failed to create identity key for '%s': %w", callerID, err)
	}
	identityBytes, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("UpdateIdentity: failed to marshal identity '%s': %w", callerID, err)
	}
	if err := ctx.GetStub().PutState(identityKey, identityBytes); err != nil {
		return fmt.Errorf("UpdateIdentity: failed to save identity '%s': %w", callerID, err)
	}
	idLogger.Infof("Identity updated for actor '%s'", callerID)
	return nil
}

// SetIdentityAttribute creates or overwrites a free-form attribute on the
// caller's identity.
func (s *RegistryContract) SetIdentityAttribute(ctx contractapi.TransactionContextInterface, name, value string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("SetIdentityAttribute: %w", err)
	}
	if err := s.validateRequiredString(name, "attribute name", maxStringInputLength); err != nil {
		return err
	}
	if err := s.validateOptionalString(value, "attribute value", maxDescriptionLength); err != nil {
		return err
	}

	if _, err := s.getIdentity(ctx, callerID); err != nil {
		return fmt.Errorf("SetIdentityAttribute: %w", err)
	}

	attribute := model.IdentityAttribute{
		ObjectType: attributeObjectType,
		ActorID:    callerID,
		Name:       name,
		Value:      value,
	}
	attributeKey, err := s.createAttributeKey(ctx, callerID, name)
	if err != nil {
		return fmt.Errorf("SetIdentityAttribute: failed to create attribute key for '%s'/'%s': %w", callerID, name, err)
	}
	attributeBytes, err := json.Marshal(attribute)
	if err != nil {
		return fmt.Errorf("SetIdentityAttribute: failed to marshal attribute '%s': %w", name, err)
	}
	if err := ctx.GetStub().PutState(attributeKey, attributeBytes); err != nil {
		return fmt.Errorf("SetIdentityAttribute: failed to save attribute '%s' for '%s': %w", name, callerID, err)
	}
	idLogger.Infof("Attribute '%s' set for actor '%s'", name, callerID)
	return nil
}

// RemoveIdentityAttribute deletes a previously set attribute from the
// caller's identity. Removing an attribute that was never set is rejected.
func (s *RegistryContract) RemoveIdentityAttribute(ctx contractapi.TransactionContextInterface, name string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("RemoveIdentityAttribute: %w", err)
	}
	if err := s.validateRequiredString(name, "attribute name", maxStringInputLength); err != nil {
		return err
	}

	if _, err := s.getIdentity(ctx, callerID); err != nil {
		return fmt.Errorf("RemoveIdentityAttribute: %w", err)
	}

	attributeKey, err := s.createAttributeKey(ctx, callerID, name)
	if err != nil {
		return fmt.Errorf("RemoveIdentityAttribute: failed to create attribute key for '%s'/'%s': %w", callerID, name, err)
	}
	existing, err := ctx.GetStub().GetState(attributeKey)
	if err != nil {
		return fmt.Errorf("RemoveIdentityAttribute: failed to read attribute '%s' for '%s': %w", name, callerID, err)
	}
	if existing == nil {
		return fmt.Errorf("RemoveIdentityAttribute: attribute '%s' does not exist for '%s': %w", name, callerID, ErrInvalidInput)
	}
	if err := ctx.GetStub().DelState(attributeKey); err != nil {
		return fmt.Errorf("RemoveIdentityAttribute: failed to delete attribute '%s' for '%s': %w", name, callerID, err)
	}
	idLogger.Infof("Attribute '%s' removed for actor '%s'", name, callerID)
	return nil
}

// VerifyIdentity marks the target identity as verified. Admin-only and
// one-directional: there is no un-verify, and re-verifying is a no-op that
// still succeeds.
func (s *RegistryContract) VerifyIdentity(ctx contractapi.TransactionContextInterface, target string) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("VerifyIdentity: %w", err)
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return fmt.Errorf("VerifyIdentity: %w", err)
	}

	identity, err := s.getIdentity(ctx, target)
	if err != nil {
		return fmt.Errorf("VerifyIdentity: %w", err)
	}
	if identity.Verified {
		idLogger.Debugf("Identity '%s' already verified, re-verification is a no-op", target)
	}
	identity.Verified = true

	identityKey, err := s.createIdentityKey(ctx, target)
	if err != nil {
		return fmt.Errorf("VerifyIdentity: failed to create identity key for '%s': %w", target, err)
	}
	identityBytes, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("VerifyIdentity: failed to marshal identity '%s': %w", target, err)
	}
	if err := ctx.GetStub().PutState(identityKey, identityBytes); err != nil {
		return fmt.Errorf("VerifyIdentity: failed to save identity '%s': %w", target, err)
	}

	s.emitRegistryEvent(ctx, "IdentityVerified", map[string]interface{}{
		"actorId": target, "verifiedBy": callerID,
	})
	idLogger.Infof("Identity '%s' verified by admin '%s'", target, callerID)
	return nil
}

// UpdateReputation overwrites the target identity's reputation score.
// Admin-only; no bounds beyond the type's native range.
func (s *RegistryContract) UpdateReputation(ctx contractapi.TransactionContextInterface, target string, score uint64) error {
	callerID, err := s.getCallerID(ctx)
	if err != nil {
		return fmt.Errorf("UpdateReputation: %w", err)
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return fmt.Errorf("UpdateReputation: %w", err)
	}

	identity, err := s.getIdentity(ctx, target)
	if err != nil {
		return fmt.Errorf("UpdateReputation: %w", err)
	}
	identity.Reputation = score

	identityKey, err := s.createIdentityKey(ctx, target)
	if err != nil {
		return fmt.Errorf("UpdateReputation: failed to create identity key for '%s': %w", target, err)
	}
	identityBytes, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("UpdateReputation: failed to marshal identity '%s': %w", target, err)
	}
	if err := ctx.GetStub().PutState(identityKey, identityBytes); err != nil {
		return fmt.Errorf("UpdateReputation: failed to save identity '%s': %w", target, err)
	}
	idLogger.Infof("Reputation for '%s' set to %d by admin '%s'", target, score, callerID)
	return nil
}
