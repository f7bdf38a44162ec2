package policy

import (
	"testing"
	"time"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func userWithTier(tier entity.SubscriptionTier, expiry *time.Time) *entity.User {
	return &entity.User{ID: uuid.New(), SubscriptionTier: tier, SubscriptionExpiry: expiry}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestEffectiveTier(t *testing.T) {
	tests := []struct {
		name string
		user *entity.User
		want entity.SubscriptionTier
	}{
		{"anonymous", nil, entity.TierFree},
		{"free", userWithTier(entity.TierFree, nil), entity.TierFree},
		{"premium without expiry", userWithTier(entity.TierPremium, nil), entity.TierPremium},
		{"family not yet expired", userWithTier(entity.TierFamily, timePtr(now.Add(time.Hour))), entity.TierFamily},
		{"premium expired", userWithTier(entity.TierPremium, timePtr(now.Add(-time.Second))), entity.TierFree},
		{"expiry equal to now is still valid", userWithTier(entity.TierPremium, timePtr(now)), entity.TierPremium},
		{"unknown stored tier", userWithTier("gold", nil), entity.TierFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveTier(tt.user, now))
		})
	}
}

func TestEffectiveTier_DoesNotPersistDowngrade(t *testing.T) {
	user := userWithTier(entity.TierPremium, timePtr(now.Add(-24*time.Hour)))

	assert.Equal(t, entity.TierFree, EffectiveTier(user, now))
	assert.Equal(t, entity.TierPremium, user.SubscriptionTier)
}

func TestCanViewActivity_NonPremiumIsPublic(t *testing.T) {
	activity := &entity.Activity{ID: uuid.New()}

	assert.True(t, CanViewActivity(nil, activity, now))
	assert.True(t, CanViewActivity(userWithTier(entity.TierFree, nil), activity, now))
}

func TestCanViewActivity_PremiumWithoutPack(t *testing.T) {
	activity := &entity.Activity{ID: uuid.New(), IsPremium: true}

	assert.False(t, CanViewActivity(nil, activity, now))
	assert.False(t, CanViewActivity(userWithTier(entity.TierFree, nil), activity, now))
	assert.False(t, CanViewActivity(userWithTier(entity.TierPremium, timePtr(now.Add(-time.Hour))), activity, now))
	assert.True(t, CanViewActivity(userWithTier(entity.TierPremium, nil), activity, now))
	assert.True(t, CanViewActivity(userWithTier(entity.TierFamily, timePtr(now.Add(time.Hour))), activity, now))
}

func TestCanViewActivity_PremiumInPurchasedPack(t *testing.T) {
	packID := uuid.New()
	activity := &entity.Activity{ID: uuid.New(), IsPremium: true, PackID: &packID}

	owner := userWithTier(entity.TierFree, nil)
	owner.PurchasedPacks = []entity.PurchasedPack{{PackID: packID, PurchaseDate: now}}
	other := userWithTier(entity.TierFree, nil)
	other.PurchasedPacks = []entity.PurchasedPack{{PackID: uuid.New(), PurchaseDate: now}}

	assert.True(t, CanViewActivity(owner, activity, now))
	assert.False(t, CanViewActivity(other, activity, now))
	assert.False(t, CanViewActivity(nil, activity, now))
}

func TestCanViewPackContents(t *testing.T) {
	packID := uuid.New()
	owner := userWithTier(entity.TierFree, nil)
	owner.PurchasedPacks = []entity.PurchasedPack{{PackID: packID}}

	assert.True(t, CanViewPackContents(owner, packID, now))
	assert.True(t, CanViewPackContents(userWithTier(entity.TierPremium, nil), packID, now))
	assert.False(t, CanViewPackContents(userWithTier(entity.TierFree, nil), packID, now))
	assert.False(t, CanViewPackContents(nil, packID, now))
}

func TestNarrowFilter(t *testing.T) {
	requested := entity.ActivityFilter{Page: 2, Limit: 5}

	assert.True(t, NarrowFilter(nil, requested, now).FreeOnly)
	assert.True(t, NarrowFilter(userWithTier(entity.TierPremium, timePtr(now.Add(-time.Minute))), requested, now).FreeOnly)
	assert.False(t, NarrowFilter(userWithTier(entity.TierFamily, nil), requested, now).FreeOnly)

	// the caller's value is ignored in both directions
	requested.FreeOnly = true
	assert.False(t, NarrowFilter(userWithTier(entity.TierPremium, nil), requested, now).FreeOnly)
}
