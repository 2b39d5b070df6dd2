package contract

import (
	"crypto/x509"
	"fmt"
	"testing"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/shimtest"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Actor identifiers used across the tests. The contract treats caller ids as
// opaque strings supplied by the host.
const (
	adminActor  = "x509::CN=admin::OU=admin"
	aliceActor  = "x509::CN=alice::OU=client"
	bobActor    = "x509::CN=bob::OU=client"
	mallobActor = "x509::CN=mallory::OU=client"
)

// fakeClientIdentity satisfies cid.ClientIdentity for a fixed actor id.
type fakeClientIdentity struct {
	id    string
	mspID string
}

func (f *fakeClientIdentity) GetID() (string, error)                         { return f.id, nil }
func (f *fakeClientIdentity) GetMSPID() (string, error)                      { return f.mspID, nil }
func (f *fakeClientIdentity) GetX509Certificate() (*x509.Certificate, error) { return nil, nil }
func (f *fakeClientIdentity) GetAttributeValue(string) (string, bool, error) { return "", false, nil }
func (f *fakeClientIdentity) AssertAttributeValue(string, string) error      { return nil }

// testEnv drives the contract against a mock ledger. Each call to as() opens
// a new mock transaction for the given actor and advances the logical clock
// by one second, so transaction timestamps are strictly increasing.
type testEnv struct {
	t        *testing.T
	contract *RegistryContract
	stub     *shimtest.MockStub
	clock    time.Time
	txSeq    int
}

func newTestEnv(t *testing.T) *testEnv {
	return &testEnv{
		t:        t,
		contract: &RegistryContract{},
		stub:     shimtest.NewMockStub("assetregistry", nil),
		clock:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (e *testEnv) as(actor string) *contractapi.TransactionContext {
	if e.stub.TxID != "" {
		e.stub.MockTransactionEnd(e.stub.TxID)
	}
	e.txSeq++
	e.clock = e.clock.Add(time.Second)
	e.stub.MockTransactionStart(fmt.Sprintf("tx%04d", e.txSeq))
	e.stub.TxTimestamp = timestamppb.New(e.clock)
	ctx := &contractapi.TransactionContext{}
	ctx.SetStub(e.stub)
	ctx.SetClientIdentity(&fakeClientIdentity{id: actor, mspID: "Org1MSP"})
	return ctx
}

func (e *testEnv) now() time.Time {
	return e.clock
}

// bootstrap seeds the administration record with adminActor as administrator.
func (e *testEnv) bootstrap() {
	require.NoError(e.t, e.contract.BootstrapLedger(e.as(adminActor)))
}

// registerVerified registers an identity for the actor and verifies it as
// admin.
func (e *testEnv) registerVerified(actor, name, email string) {
	require.NoError(e.t, e.contract.RegisterIdentity(e.as(actor), name, email))
	require.NoError(e.t, e.contract.VerifyIdentity(e.as(adminActor), actor))
}
