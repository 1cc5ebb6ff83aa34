package shipping

import "fmt"

// FeeCacheKey builds the referentially transparent cache key for a fee
// quote. It distinguishes shop, provider, pickup and delivery routes, and
// total weight; identical inputs always produce the identical key.
func FeeCacheKey(shopID, providerCode string, req FeeRequest) string {
	return fmt.Sprintf("shipfee:%s:%s:%s:%s:%d",
		shopID,
		providerCode,
		req.PickupAddr.RouteKey(),
		req.DeliveryAddr.RouteKey(),
		req.Package.WeightGrams,
	)
}

// TrackingCacheKey keys the read-through tracking cache; it doubles as the
// per-tracking-number webhook coordination key.
func TrackingCacheKey(trackingNumber string) string {
	return "shiptrack:" + trackingNumber
}

// LocationCacheKey keys a shipper's last-known location.
func LocationCacheKey(shipperID string) string {
	return "shiploc:" + shipperID
}
