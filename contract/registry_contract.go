package contract

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("assetregistry.contract")

// Object types for composite keys, also usable as 'objectType' in CouchDB.
const (
	identityObjectType    = "Identity"
	attributeObjectType   = "IdentityAttribute"
	assetObjectType       = "Asset"
	ownershipObjectType   = "OwnershipRecord"
	attestationObjectType = "Attestation"
	adminObjectType       = "Administration"
	counterObjectType     = "Counter"
)

// Constants for input validation and limits.
const (
	maxStringInputLength = 256
	maxDescriptionLength = 1024
	maxMetadataLength    = 1024
)

// RegistryContract binds actor identities, ownable assets and third-party
// attestations under a single access-control and reputation policy. Every
// transaction function receives the already-authenticated caller and the
// transaction timestamp from the host, evaluates its preconditions against
// current state, and only then mutates the records it owns.
// @contract:RegistryContract
type RegistryContract struct {
	contractapi.Contract
}

// Instantiate is called during chaincode instantiation.
func (s *RegistryContract) Instantiate(ctx contractapi.TransactionContextInterface) {
	logger.Info("RegistryContract instantiated/upgraded")
}

// getCallerID returns the full identifier of the current transactor. The host
// has already authenticated it; the contract treats it as opaque.
func (s *RegistryContract) getCallerID(ctx contractapi.TransactionContextInterface) (string, error) {
	clientIdentity := ctx.GetClientIdentity()
	if clientIdentity == nil {
		return "", errors.New("client identity is nil from context")
	}
	id, err := clientIdentity.GetID()
	if err != nil {
		return "", fmt.Errorf("failed to get client identity ID from context: %w", err)
	}
	if id == "" {
		return "", errors.New("client identity ID from context is empty")
	}
	return id, nil
}

// getCurrentTxTimestamp retrieves the current transaction timestamp from the
// stub. It is the registry's logical clock: monotonically non-decreasing
// across the ordered transaction sequence.
func (s *RegistryContract) getCurrentTxTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime(), nil
}
