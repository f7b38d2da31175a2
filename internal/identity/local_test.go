package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vb-entreprise/rrsa-server/internal/docstore"
	"github.com/vb-entreprise/rrsa-server/internal/shared"
)

func TestSignIn(t *testing.T) {
	store := docstore.NewMemoryStore()
	provider := NewLocalProvider(store, nil)
	ctx := context.Background()

	created, err := provider.CreateAccount(ctx, "Jane@Shelter.ORG ", "hunter2secret", " Jane ")
	require.NoError(t, err)
	require.Equal(t, "jane@shelter.org", created.Email)
	require.Equal(t, "Jane", created.DisplayName)

	subject, err := provider.SignIn(ctx, "jane@shelter.org", "hunter2secret")
	require.NoError(t, err)
	require.Equal(t, created.ID, subject.ID)

	// Lookup is case-insensitive on the email.
	subject, err = provider.SignIn(ctx, "JANE@shelter.org", "hunter2secret")
	require.NoError(t, err)
	require.Equal(t, created.ID, subject.ID)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	provider := NewLocalProvider(docstore.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := provider.CreateAccount(ctx, "jane@shelter.org", "hunter2secret", "Jane")
	require.NoError(t, err)

	_, err = provider.SignIn(ctx, "jane@shelter.org", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = provider.SignIn(ctx, "nobody@shelter.org", "hunter2secret")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSignInRejectsDisabledAccount(t *testing.T) {
	store := docstore.NewMemoryStore()
	provider := NewLocalProvider(store, nil)
	ctx := context.Background()

	created, err := provider.CreateAccount(ctx, "jane@shelter.org", "hunter2secret", "Jane")
	require.NoError(t, err)
	require.NoError(t, store.Merge(ctx, AccountsCollection, created.ID, map[string]any{"disabled": true}, time.Now()))

	_, err = provider.SignIn(ctx, "jane@shelter.org", "hunter2secret")
	require.ErrorIs(t, err, shared.ErrAccountDisabled)
}

func TestSignInSurfacesStoreOutage(t *testing.T) {
	store := docstore.NewMemoryStore()
	provider := NewLocalProvider(store, nil)
	ctx := context.Background()

	_, err := provider.CreateAccount(ctx, "jane@shelter.org", "hunter2secret", "Jane")
	require.NoError(t, err)

	store.SetFailure(docstore.ErrUnavailable)
	_, err = provider.SignIn(ctx, "jane@shelter.org", "hunter2secret")
	require.ErrorIs(t, err, docstore.ErrUnavailable)
	require.NotErrorIs(t, err, shared.ErrInvalidCredentials,
		"an unreachable provider must not read as bad credentials")
}

func TestCreateAccountRejectsDuplicateEmail(t *testing.T) {
	provider := NewLocalProvider(docstore.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := provider.CreateAccount(ctx, "jane@shelter.org", "hunter2secret", "Jane")
	require.NoError(t, err)

	_, err = provider.CreateAccount(ctx, "JANE@shelter.org", "otherpassword", "Jane Again")
	require.ErrorIs(t, err, shared.ErrEmailTaken)
}
