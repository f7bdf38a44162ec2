package service

// Reasons reported to UsageRecorder.AccessDenied
const (
	DenyReasonPremiumRequired      = "premium_required"
	DenyReasonPackPurchaseRequired = "pack_purchase_required"
)

// UsageRecorder receives catalog usage events for monitoring.
type UsageRecorder interface {
	// ActivityViewed is called once per granted activity detail view.
	ActivityViewed()

	// AccessDenied is called when premium content is refused.
	AccessDenied(reason string)
}
