package pricing

// Delivery fee schedule in VND. Orders at or above the free-shipping
// threshold ship free; below it the fee is a base charge plus a distance
// bracket. The fee applies to the pre-discount subtotal.
const (
	FreeShippingThreshold = 200000
	baseDeliveryFee       = 20000

	DefaultDeliveryDistanceKM = 5
)

func DeliveryFee(distanceKM float64, subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	switch {
	case distanceKM <= 3:
		return baseDeliveryFee
	case distanceKM <= 5:
		return baseDeliveryFee + 10000
	case distanceKM <= 10:
		return baseDeliveryFee + 20000
	default:
		return baseDeliveryFee + 30000
	}
}
