package engine

// OfficialVariants emits one variant per distinct base-address row. Only
// approved rows are marked primary; the combiner's fallback handles
// properties that end up with no approved row at all.
func OfficialVariants(set *BaseAddressSet) []Variant {
	variants := make([]Variant, 0, len(set.Distinct))
	for _, row := range set.Distinct {
		status := row.LogicalStatus
		variants = append(variants, Variant{
			UPRN:          row.UPRN,
			Postcode:      row.Postcode,
			Address:       row.Address,
			Source:        SourceLPI,
			LogicalStatus: &status,
			OfficialFlag:  row.OfficialFlag,
			State:         row.State,
			PostalCode:    row.PostalCode,
			ParentUPRN:    row.ParentUPRN,
			Hierarchy:     row.Hierarchy,
			Label:         status.Label(),
			IsPrimary:     status == StatusApproved,
		})
	}
	return variants
}
