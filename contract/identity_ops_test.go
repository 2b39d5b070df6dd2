package contract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIdentity(t *testing.T) {
	env := newTestEnv(t)

	err := env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com")
	require.NoError(t, err)

	identity, err := env.contract.GetIdentityDetails(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.False(t, identity.Verified)
	assert.Equal(t, uint64(0), identity.Reputation)
	assert.Equal(t, env.now(), identity.RegisteredAt)
}

func TestRegisterIdentityTwiceFails(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))

	err := env.contract.RegisterIdentity(env.as(aliceActor), "Alicia", "other@example.com")
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	// The stored record is untouched by the rejected call.
	identity, err := env.contract.GetIdentityDetails(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestRegisterIdentityRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	err := env.contract.RegisterIdentity(env.as(aliceActor), "", "alice@example.com")
	require.ErrorIs(t, err, ErrInvalidInput)

	err = env.contract.RegisterIdentity(env.as(aliceActor), strings.Repeat("x", maxStringInputLength+1), "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateIdentity(t *testing.T) {
	env := newTestEnv(t)

	err := env.contract.UpdateIdentity(env.as(aliceActor), "Alice", "alice@example.com")
	require.ErrorIs(t, err, ErrIdentityNotFound)

	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))
	registeredAt := env.now()

	require.NoError(t, env.contract.UpdateIdentity(env.as(aliceActor), "Alice B.", "ab@example.com"))

	identity, err := env.contract.GetIdentityDetails(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", identity.Name)
	assert.Equal(t, "ab@example.com", identity.Email)
	// Untouched fields survive the merge-style update.
	assert.False(t, identity.Verified)
	assert.Equal(t, uint64(0), identity.Reputation)
	assert.Equal(t, registeredAt, identity.RegisteredAt)
}

func TestIdentityAttributes(t *testing.T) {
	env := newTestEnv(t)

	err := env.contract.SetIdentityAttribute(env.as(aliceActor), "website", "https://alice.example.com")
	require.ErrorIs(t, err, ErrIdentityNotFound)

	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))

	require.NoError(t, env.contract.SetIdentityAttribute(env.as(aliceActor), "website", "https://alice.example.com"))
	attribute, err := env.contract.GetIdentityAttribute(env.as(aliceActor), aliceActor, "website")
	require.NoError(t, err)
	assert.Equal(t, "https://alice.example.com", attribute.Value)

	// Overwrite returns the last written value.
	require.NoError(t, env.contract.SetIdentityAttribute(env.as(aliceActor), "website", "https://alice.example.org"))
	attribute, err = env.contract.GetIdentityAttribute(env.as(aliceActor), aliceActor, "website")
	require.NoError(t, err)
	assert.Equal(t, "https://alice.example.org", attribute.Value)

	require.NoError(t, env.contract.RemoveIdentityAttribute(env.as(aliceActor), "website"))
	_, err = env.contract.GetIdentityAttribute(env.as(aliceActor), aliceActor, "website")
	require.Error(t, err)

	// Removing a never-set attribute is rejected.
	err = env.contract.RemoveIdentityAttribute(env.as(aliceActor), "website")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerifyIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))

	// Non-admin cannot verify; the flag stays false.
	err := env.contract.VerifyIdentity(env.as(mallobActor), aliceActor)
	require.ErrorIs(t, err, ErrUnauthorized)
	verified, err := env.contract.IsIdentityVerified(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.False(t, verified)

	err = env.contract.VerifyIdentity(env.as(adminActor), bobActor)
	require.ErrorIs(t, err, ErrIdentityNotFound)

	require.NoError(t, env.contract.VerifyIdentity(env.as(adminActor), aliceActor))
	verified, err = env.contract.IsIdentityVerified(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.True(t, verified)

	// Re-verification is idempotent.
	require.NoError(t, env.contract.VerifyIdentity(env.as(adminActor), aliceActor))
	verified, err = env.contract.IsIdentityVerified(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestUpdateReputation(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))

	err := env.contract.UpdateReputation(env.as(mallobActor), aliceActor, 90)
	require.ErrorIs(t, err, ErrUnauthorized)

	err = env.contract.UpdateReputation(env.as(adminActor), bobActor, 90)
	require.ErrorIs(t, err, ErrIdentityNotFound)

	require.NoError(t, env.contract.UpdateReputation(env.as(adminActor), aliceActor, 90))
	score, err := env.contract.GetReputationScore(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.Equal(t, uint64(90), score)

	// Overwrites unconditionally, including back down to zero.
	require.NoError(t, env.contract.UpdateReputation(env.as(adminActor), aliceActor, 0))
	score, err = env.contract.GetReputationScore(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), score)
}

func TestIsRegisteredPredicate(t *testing.T) {
	env := newTestEnv(t)

	registered, err := env.contract.IsRegistered(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.False(t, registered)

	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))

	registered, err = env.contract.IsRegistered(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestGetAllIdentitiesAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()
	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))
	require.NoError(t, env.contract.RegisterIdentity(env.as(bobActor), "Bob", "bob@example.com"))

	_, err := env.contract.GetAllIdentities(env.as(aliceActor))
	require.ErrorIs(t, err, ErrUnauthorized)

	identities, err := env.contract.GetAllIdentities(env.as(adminActor))
	require.NoError(t, err)
	assert.Len(t, identities, 2)
}
