package engine

// betterDeliveryPoint orders candidates by latest end date (missing =
// infinite future), then latest last-update date (missing = epoch).
func betterDeliveryPoint(a, b DeliveryPoint) bool {
	ae, be := endOrMax(a.EndDate), endOrMax(b.EndDate)
	if !ae.Equal(be) {
		return ae.After(be)
	}
	return updateOrMin(a.LastUpdate).After(updateOrMin(b.LastUpdate))
}

// ResolveDeliveryPoints picks one winning delivery point per UPRN among
// records that carry a delivery reference number.
func ResolveDeliveryPoints(records []DeliveryPoint) map[int64]DeliveryPoint {
	best := make(map[int64]DeliveryPoint)
	for _, d := range records {
		if d.UDPRN == nil {
			continue
		}
		if cur, ok := best[d.UPRN]; !ok || betterDeliveryPoint(d, cur) {
			best[d.UPRN] = d
		}
	}
	return best
}
