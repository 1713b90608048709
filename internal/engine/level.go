package engine

import (
	"strconv"
	"strings"
)

var levelWords = map[int]string{
	-1: "BASEMENT",
	0:  "GROUND",
	1:  "FIRST",
	2:  "SECOND",
	3:  "THIRD",
	4:  "FOURTH",
	5:  "FIFTH",
	6:  "SIXTH",
}

// parseLevel extracts the leading integer token of a raw level attribute.
// The attribute may be a comma-separated list; only the first token counts,
// and it must be an optionally-signed integer in [-1, 6].
func parseLevel(raw string) (int, bool) {
	token, _, _ := strings.Cut(raw, ",")
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	if n < -1 || n > 6 {
		return 0, false
	}
	return n, true
}

// LevelVariants renders "{floor word} {address}" variants from the full
// base-address relation, which carries the raw level attribute. Malformed
// or out-of-range levels are silently skipped; this generator is
// best-effort.
func LevelVariants(set *BaseAddressSet) []Variant {
	var variants []Variant
	for _, row := range set.Full {
		if row.Level == "" || row.Address == "" {
			continue
		}
		n, ok := parseLevel(row.Level)
		if !ok {
			continue
		}
		variants = append(variants, Variant{
			UPRN:      row.UPRN,
			Postcode:  row.Postcode,
			Address:   levelWords[n] + " " + row.Address,
			Source:    SourceCustomLevel,
			Label:     LabelCustomLevel,
			IsPrimary: false,
		})
	}
	return variants
}
