package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogModels "storefront/internal/catalog/models"
	catalogService "storefront/internal/catalog/service"
	catalogStore "storefront/internal/catalog/store"
	identityModels "storefront/internal/identity/models"
	credentialStore "storefront/internal/identity/store/credential"
	userModels "storefront/internal/user/models"
	userStore "storefront/internal/user/store"
	id "storefront/pkg/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	stock := 3
	docs := []catalogModels.ProductDocument{
		{Name: "Rose Serum", Category: "Skincare", RetailPrice: id.FlexibleAmount{Amount: 1200, Set: true}},
		{Name: "Lavender Oil", Category: "Essential Oils", Price: id.FlexibleAmount{Amount: 450, Set: true}, Inventory: &stock},
	}

	t.Run("creates every document", func(t *testing.T) {
		store := catalogStore.NewInMemory()
		n, err := seedCatalog(ctx, catalogService.New(store), docs)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
	})

	t.Run("stops at the first invalid document", func(t *testing.T) {
		store := catalogStore.NewInMemory()
		bad := append([]catalogModels.ProductDocument{{Name: ""}}, docs...)
		n, err := seedCatalog(ctx, catalogService.New(store), bad)
		require.Error(t, err)
		assert.Equal(t, 0, n)

		list, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestPromoteByEmail(t *testing.T) {
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	now := time.Now()

	creds := credentialStore.NewInMemory()
	require.NoError(t, creds.Create(ctx, &identityModels.Credential{
		UserID:    userID,
		Email:     "ops@example.com",
		Provider:  identityModels.ProviderPassword,
		CreatedAt: now,
	}))
	profiles := userStore.NewInMemory()
	require.NoError(t, profiles.Create(ctx, &userModels.Profile{
		ID:        userID,
		Email:     "ops@example.com",
		Role:      userModels.RoleCustomer,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	t.Run("grants admin", func(t *testing.T) {
		require.NoError(t, promoteByEmail(ctx, creds, profiles, "ops@example.com", discardLogger()))
		p, err := profiles.FindByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userModels.RoleAdmin, p.Role)
	})

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, promoteByEmail(ctx, creds, profiles, "ops@example.com", discardLogger()))
	})

	t.Run("unknown email", func(t *testing.T) {
		err := promoteByEmail(ctx, creds, profiles, "nobody@example.com", discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no account registered")
	})
}
