package engine

import (
	"sort"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/normalize"
)

// statusRankOf ranks a nullable status; variants from non-official sources
// carry no status and rank last.
func statusRankOf(s *LogicalStatus) int {
	if s == nil {
		return 9
	}
	return s.Rank()
}

// keepOverDedup reports whether candidate a should replace incumbent b
// within one (uprn, normalized address) group: primary first, then status
// rank, source rank, variant label and source as the final deterministic
// tie-breaks.
func keepOverDedup(a, b Variant) bool {
	if a.IsPrimary != b.IsPrimary {
		return a.IsPrimary
	}
	ar, br := statusRankOf(a.LogicalStatus), statusRankOf(b.LogicalStatus)
	if ar != br {
		return ar < br
	}
	if a.Source.Rank() != b.Source.Rank() {
		return a.Source.Rank() < b.Source.Rank()
	}
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.Source < b.Source
}

// fallbackBefore orders a property's surviving rows for primary promotion:
// source rank, then variant label, then address.
func fallbackBefore(a, b Variant) bool {
	if a.Source.Rank() != b.Source.Rank() {
		return a.Source.Rank() < b.Source.Rank()
	}
	if a.Label != b.Label {
		return a.Label < b.Label
	}
	return a.Address < b.Address
}

type dedupKey struct {
	uprn    int64
	address string
}

// Combine unions the generators' outputs, normalizes addresses, deduplicates
// per (uprn, address), guarantees one primary per property whenever any row
// survives, enriches with classification and delivery reference, and emits
// a deterministically ordered relation.
func Combine(variants []Variant, classifications map[int64]Classification, deliveryPoints map[int64]DeliveryPoint) []AddressVariant {
	groups := make(map[dedupKey]Variant)
	order := make([]dedupKey, 0, len(variants))
	for _, v := range variants {
		v.Address = normalize.Address(v.Address)
		key := dedupKey{uprn: v.UPRN, address: v.Address}
		cur, ok := groups[key]
		if !ok {
			groups[key] = v
			order = append(order, key)
			continue
		}
		if keepOverDedup(v, cur) {
			groups[key] = v
		}
	}

	survivors := make([]Variant, 0, len(order))
	for _, key := range order {
		survivors = append(survivors, groups[key])
	}

	// Promote one row per property that lost all its primaries to dedup.
	hasPrimary := make(map[int64]bool)
	for _, v := range survivors {
		if v.IsPrimary {
			hasPrimary[v.UPRN] = true
		}
	}
	fallback := make(map[int64]int)
	for i, v := range survivors {
		if hasPrimary[v.UPRN] {
			continue
		}
		if j, ok := fallback[v.UPRN]; !ok || fallbackBefore(v, survivors[j]) {
			fallback[v.UPRN] = i
		}
	}
	for _, i := range fallback {
		survivors[i].IsPrimary = true
	}

	out := make([]AddressVariant, 0, len(survivors))
	for _, v := range survivors {
		row := AddressVariant{
			UPRN:          v.UPRN,
			Postcode:      v.Postcode,
			Address:       v.Address,
			LogicalStatus: v.LogicalStatus,
			State:         v.State,
			PostalCode:    v.PostalCode,
			ParentUPRN:    v.ParentUPRN,
			Hierarchy:     v.Hierarchy,
			Source:        v.Source,
			Label:         v.Label,
			IsPrimary:     v.IsPrimary,
		}
		if c, ok := classifications[v.UPRN]; ok {
			row.ClassificationCode = c.Code
		}
		if d, ok := deliveryPoints[v.UPRN]; ok {
			row.UDPRN = d.UDPRN
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UPRN != out[j].UPRN {
			return out[i].UPRN < out[j].UPRN
		}
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// Run executes the whole engine over one chunk's tables and returns the
// output relation with the distinct-UPRN counts the integrity check needs.
func Run(tables *Tables) (output []AddressVariant, inputUPRNs, outputUPRNs int) {
	streets := ResolveStreets(tables.StreetDescriptors)
	base := BuildBaseAddresses(tables.BLPUs, tables.LPIs, streets)
	classifications := ResolveClassifications(tables.Classifications)
	deliveryPoints := ResolveDeliveryPoints(tables.DeliveryPoints)

	var variants []Variant
	variants = append(variants, OfficialVariants(base)...)
	variants = append(variants, BusinessVariants(tables.Organisations, base)...)
	variants = append(variants, PostalVariants(tables.DeliveryPoints)...)
	variants = append(variants, LevelVariants(base)...)

	output = Combine(variants, classifications, deliveryPoints)

	inputSet := make(map[int64]bool)
	for _, row := range base.Distinct {
		inputSet[row.UPRN] = true
	}
	outputSet := make(map[int64]bool)
	for _, row := range output {
		outputSet[row.UPRN] = true
	}
	return output, len(inputSet), len(outputSet)
}
