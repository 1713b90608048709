package web

import (
	"strings"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
)

// store indexes the relation for lookup by UPRN and postcode. The relation
// is immutable once loaded, so no locking.
type store struct {
	variants   []engine.AddressVariant
	byUPRN     map[int64][]engine.AddressVariant
	byPostcode map[string][]engine.AddressVariant
}

func newStore(variants []engine.AddressVariant) *store {
	s := &store{
		variants:   variants,
		byUPRN:     make(map[int64][]engine.AddressVariant),
		byPostcode: make(map[string][]engine.AddressVariant),
	}
	for _, v := range variants {
		s.byUPRN[v.UPRN] = append(s.byUPRN[v.UPRN], v)
		if pc := normalizePostcode(v.Postcode); pc != "" {
			s.byPostcode[pc] = append(s.byPostcode[pc], v)
		}
	}
	return s
}

func (s *store) lookupUPRN(uprn int64) []engine.AddressVariant {
	return s.byUPRN[uprn]
}

func (s *store) lookupPostcode(postcode string) []engine.AddressVariant {
	return s.byPostcode[normalizePostcode(postcode)]
}

// stats aggregates the relation for the stats endpoint.
type relationStats struct {
	UPRNs         int            `json:"uprns"`
	TotalVariants int            `json:"total_variants"`
	BySource      map[string]int `json:"by_source"`
	ByLabel       map[string]int `json:"by_label"`
}

func (s *store) stats() relationStats {
	out := relationStats{
		TotalVariants: len(s.variants),
		UPRNs:         len(s.byUPRN),
		BySource:      make(map[string]int),
		ByLabel:       make(map[string]int),
	}
	for _, v := range s.variants {
		out.BySource[string(v.Source)]++
		out.ByLabel[string(v.Label)]++
	}
	return out
}

func normalizePostcode(pc string) string {
	return strings.ToUpper(strings.ReplaceAll(pc, " ", ""))
}
