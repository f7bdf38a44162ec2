// Package policy decides which premium content a viewer may see.
//
// A nil *entity.User is an anonymous viewer: free tier, no purchased packs.
// Subscription expiry is evaluated on every call against the supplied time and
// is never written back to the user record.
package policy

import (
	"time"

	"brightsteps/internal/domain/entity"

	"github.com/google/uuid"
)

// EffectiveTier is the user's tier after the read-time expiry check.
func EffectiveTier(user *entity.User, now time.Time) entity.SubscriptionTier {
	if user == nil || !user.SubscriptionTier.IsPaid() {
		return entity.TierFree
	}
	if user.SubscriptionExpiry != nil && user.SubscriptionExpiry.Before(now) {
		return entity.TierFree
	}

	return user.SubscriptionTier
}

// HasActiveSubscription reports whether the effective tier unlocks premium content.
func HasActiveSubscription(user *entity.User, now time.Time) bool {
	return EffectiveTier(user, now).IsPaid()
}

// CanViewActivity reports whether the activity's full content may be returned.
func CanViewActivity(user *entity.User, activity *entity.Activity, now time.Time) bool {
	if !activity.IsPremium {
		return true
	}
	if HasActiveSubscription(user, now) {
		return true
	}

	return activity.PackID != nil && user != nil && user.HasPurchased(*activity.PackID)
}

// CanViewPackContents reports whether the pack's activity listing may be returned.
func CanViewPackContents(user *entity.User, packID uuid.UUID, now time.Time) bool {
	if user != nil && user.HasPurchased(packID) {
		return true
	}

	return HasActiveSubscription(user, now)
}

// NarrowFilter applies the viewer's entitlement to a list query. Free viewers only
// ever see non-premium activities, whatever else the filter asks for.
func NarrowFilter(user *entity.User, filter entity.ActivityFilter, now time.Time) entity.ActivityFilter {
	filter.FreeOnly = !HasActiveSubscription(user, now)

	return filter
}
