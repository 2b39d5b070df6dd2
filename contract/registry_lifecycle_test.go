package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Walks a full registry lifecycle through one stub: bootstrap, onboarding,
// asset registration, attestation, update and revocation, checking the world
// state after each decisive step.
func TestRegistryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()

	// Alice joins, is verified by the admin and earns a reputation score.
	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))
	require.NoError(t, env.contract.VerifyIdentity(env.as(adminActor), aliceActor))
	require.NoError(t, env.contract.UpdateReputation(env.as(adminActor), aliceActor, 75))

	verified, err := env.contract.IsIdentityVerified(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.True(t, verified)
	score, err := env.contract.GetReputationScore(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.Equal(t, uint64(75), score)

	// First asset in an empty registry gets id 0.
	assetID, err := env.contract.RegisterAsset(env.as(aliceActor), "Vintage Watch", "1960s chronograph", "COLLECTIBLE", "")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), assetID)

	owner, err := env.contract.GetAssetOwner(env.as(aliceActor), assetID)
	require.NoError(t, err)
	assert.Equal(t, aliceActor, owner)
	length, err := env.contract.GetOwnershipHistoryLength(env.as(aliceActor), assetID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), length)

	// Alice attests over her own asset; the score clears the default threshold.
	require.NoError(t, env.contract.MakeAttestation(env.as(aliceActor), assetID, "CONDITION", "Excellent"))
	valid, err := env.contract.IsAttestationValid(env.as(aliceActor), aliceActor, assetID, "CONDITION")
	require.NoError(t, err)
	assert.True(t, valid)
	madeAt := env.now()

	require.NoError(t, env.contract.UpdateAttestation(env.as(aliceActor), assetID, "CONDITION", "Good"))
	att, err := env.contract.GetAttestation(env.as(aliceActor), aliceActor, assetID, "CONDITION")
	require.NoError(t, err)
	assert.Equal(t, "Good", att.Value)
	assert.True(t, att.AttestedAt.After(madeAt))

	require.NoError(t, env.contract.RevokeAttestation(env.as(aliceActor), assetID, "CONDITION"))

	// Final state: the attestation record survives revocation with its last
	// value, but no longer counts as valid.
	att, err = env.contract.GetAttestation(env.as(aliceActor), aliceActor, assetID, "CONDITION")
	require.NoError(t, err)
	assert.True(t, att.Revoked)
	assert.Equal(t, "Good", att.Value)
	assert.False(t, att.RevokedAt.IsZero())
	valid, err = env.contract.IsAttestationValid(env.as(aliceActor), aliceActor, assetID, "CONDITION")
	require.NoError(t, err)
	assert.False(t, valid)

	asset, err := env.contract.GetAssetDetails(env.as(aliceActor), assetID)
	require.NoError(t, err)
	assert.Equal(t, aliceActor, asset.OwnerID)
	history, err := env.contract.GetOwnershipHistory(env.as(aliceActor), assetID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Open())
}
