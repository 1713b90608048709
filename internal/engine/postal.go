package engine

// PostalVariants emits one variant per delivery point record with a
// postcode. Rows rendering to an empty address are dropped.
func PostalVariants(deliveryPoints []DeliveryPoint) []Variant {
	var variants []Variant
	for _, d := range deliveryPoints {
		if d.Postcode == "" {
			continue
		}
		address := RenderDeliveryPoint(d)
		if address == "" {
			continue
		}
		variants = append(variants, Variant{
			UPRN:      d.UPRN,
			Postcode:  d.Postcode,
			Address:   address,
			Source:    SourceDeliveryPoint,
			Label:     LabelDelivery,
			IsPrimary: false,
		})
	}
	return variants
}
