package impl

import (
	"context"
	"testing"
	"time"

	"brightsteps/internal/domain/entity"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPackService(t *testing.T) (*packService, *catalogFixture, *usageSpy) {
	t.Helper()

	catalog := newCatalogFixture(t)
	usage := newUsageSpy()
	srv := NewPackService(PackServiceParams{
		UserRepo:     catalog.store.Users(),
		ActivityRepo: catalog.store.Activities(),
		PackRepo:     catalog.store.Packs(),
		Usage:        usage,
		Logger:       newDiscardLogger(),
	}).(*packService)
	srv.now = fixedClock

	return srv, catalog, usage
}

func TestPackService_ListPacks_ActiveOnly(t *testing.T) {
	srv, catalog, _ := createTestPackService(t)

	packs, err := srv.ListPacks(context.Background())
	require.NoError(t, err)

	require.Len(t, packs, 1)
	assert.Equal(t, catalog.pack.ID, packs[0].ID)
}

func TestPackService_GetPack(t *testing.T) {
	srv, catalog, _ := createTestPackService(t)
	ctx := context.Background()

	pack, err := srv.GetPack(ctx, catalog.inactive.ID)
	require.NoError(t, err)
	assert.False(t, pack.IsActive)

	_, err = srv.GetPack(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrPackNotFound)
}

func TestPackService_ListPackActivities(t *testing.T) {
	srv, catalog, usage := createTestPackService(t)
	ctx := context.Background()

	free := catalog.addUser(t, "free@example.com", entity.TierFree, nil)
	owner := catalog.addUser(t, "owner@example.com", entity.TierFree, nil)
	require.NoError(t, catalog.store.Users().AddPurchasedPack(ctx, owner.ID, entity.PurchasedPack{
		PackID:       catalog.pack.ID,
		PurchaseDate: testNow,
	}))
	premium := catalog.addUser(t, "premium@example.com", entity.TierPremium, timePtr(testNow.Add(24*time.Hour)))
	lapsed := catalog.addUser(t, "lapsed@example.com", entity.TierFamily, timePtr(testNow.Add(-24*time.Hour)))

	tests := []struct {
		name    string
		viewer  uuid.UUID
		allowed bool
	}{
		{name: "free without purchase", viewer: free.ID},
		{name: "lapsed family", viewer: lapsed.ID},
		{name: "owner on free tier", viewer: owner.ID, allowed: true},
		{name: "active premium", viewer: premium.ID, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			activities, err := srv.ListPackActivities(ctx, tt.viewer, catalog.pack.ID)
			if !tt.allowed {
				assert.ErrorIs(t, err, domainerrors.ErrPackPurchaseRequired)

				return
			}

			require.NoError(t, err)
			require.Len(t, activities, 1)
			assert.Equal(t, catalog.packPremium.ID, activities[0].ID)
		})
	}

	assert.Equal(t, 2, usage.denials[service.DenyReasonPackPurchaseRequired])
}

func TestPackService_ListPackActivities_MissingPack(t *testing.T) {
	srv, catalog, _ := createTestPackService(t)
	premium := catalog.addUser(t, "premium@example.com", entity.TierPremium, nil)

	_, err := srv.ListPackActivities(context.Background(), premium.ID, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrPackNotFound)
}
