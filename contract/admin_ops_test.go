package contract

import (
	"testing"

	"assetregistry/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapLedger(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.contract.BootstrapLedger(env.as(adminActor)))

	isAdmin, err := env.contract.IsAdmin(env.as(adminActor), adminActor)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	claimTypes, err := env.contract.GetAllowedClaimTypes(env.as(adminActor))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultClaimTypes(), claimTypes)

	// Bootstrap is one-shot, even for the admin itself.
	err = env.contract.BootstrapLedger(env.as(adminActor))
	require.Error(t, err)
	err = env.contract.BootstrapLedger(env.as(mallobActor))
	require.Error(t, err)
}

func TestAdminGatedOpsBeforeBootstrap(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.contract.RegisterIdentity(env.as(aliceActor), "Alice", "alice@example.com"))

	err := env.contract.VerifyIdentity(env.as(adminActor), aliceActor)
	require.ErrorIs(t, err, ErrUnauthorized)

	isAdmin, err := env.contract.IsAdmin(env.as(adminActor), adminActor)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestInitializeRotatesAdministration(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()

	err := env.contract.Initialize(env.as(mallobActor), mallobActor, 1)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, env.contract.Initialize(env.as(adminActor), aliceActor, 80))

	// Both fields rotate together; the old admin loses authority.
	isAdmin, err := env.contract.IsAdmin(env.as(aliceActor), aliceActor)
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = env.contract.IsAdmin(env.as(adminActor), adminActor)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	err = env.contract.Initialize(env.as(adminActor), adminActor, 50)
	require.ErrorIs(t, err, ErrUnauthorized)

	// The handover is re-triggerable by whoever currently holds the role.
	require.NoError(t, env.contract.Initialize(env.as(aliceActor), adminActor, 50))
	isAdmin, err = env.contract.IsAdmin(env.as(adminActor), adminActor)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}

func TestInitializeKeepsClaimTypes(t *testing.T) {
	env := newTestEnv(t)
	env.bootstrap()

	require.NoError(t, env.contract.Initialize(env.as(adminActor), adminActor, 10))

	claimTypes, err := env.contract.GetAllowedClaimTypes(env.as(adminActor))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultClaimTypes(), claimTypes)
}

func TestIsValidClaimTypePredicate(t *testing.T) {
	env := newTestEnv(t)

	// No allow list exists before bootstrap.
	valid, err := env.contract.IsValidClaimType(env.as(aliceActor), "CONDITION")
	require.NoError(t, err)
	assert.False(t, valid)

	env.bootstrap()

	valid, err = env.contract.IsValidClaimType(env.as(aliceActor), "CONDITION")
	require.NoError(t, err)
	assert.True(t, valid)
	valid, err = env.contract.IsValidClaimType(env.as(aliceActor), "INVALID_TYPE")
	require.NoError(t, err)
	assert.False(t, valid)
}
