package engine

import (
	"fmt"
	"time"
)

// BaseAddress is one rendered base-address row derived from an LPI joined
// to its BLPU and resolved street descriptor.
type BaseAddress struct {
	UPRN          int64
	Postcode      string
	Address       string
	LogicalStatus LogicalStatus
	OfficialFlag  string
	State         string
	PostalCode    string
	ParentUPRN    *int64
	Hierarchy     HierarchyLevel
	Level         string // raw floor level attribute, only meaningful on Full rows
	StartDate     *time.Time
	EndDate       *time.Time
	LastUpdate    *time.Time
	StatusRank    int
}

// BaseAddressSet carries the three views every generator consumes.
type BaseAddressSet struct {
	// Full has one row per surviving LPI, including duplicate addresses.
	Full []BaseAddress
	// Distinct is Full deduplicated on the whole column tuple, with empty
	// addresses dropped. It is the integrity baseline for the combiner.
	Distinct []BaseAddress
	// BestCurrent has at most one non-historical row per UPRN.
	BestCurrent map[int64]BaseAddress
}

// BuildBaseAddresses joins LPIs to their BLPU and street descriptor,
// renders base addresses and derives hierarchy. Records marked explicitly
// non-postal and records outside the four allowed logical statuses are
// excluded.
func BuildBaseAddresses(blpus []BLPU, lpis []LPI, streets *StreetLookup) *BaseAddressSet {
	blpuByUPRN := make(map[int64]BLPU, len(blpus))
	isParent := make(map[int64]bool)
	for _, b := range blpus {
		blpuByUPRN[b.UPRN] = b
		if b.ParentUPRN != nil {
			isParent[*b.ParentUPRN] = true
		}
	}

	set := &BaseAddressSet{BestCurrent: make(map[int64]BaseAddress)}
	seen := make(map[string]bool)

	for _, l := range lpis {
		b, ok := blpuByUPRN[l.UPRN]
		if !ok {
			continue
		}
		if b.PostalCode == "N" {
			continue
		}
		if !l.LogicalStatus.Valid() {
			continue
		}

		hierarchy := HierarchyStandalone
		if b.ParentUPRN != nil {
			hierarchy = HierarchyChild
		} else if isParent[l.UPRN] {
			hierarchy = HierarchyParent
		}

		var street, locality, town string
		if sd, ok := streets.Lookup(l.USRN, l.Language); ok {
			street, locality, town = sd.Description, sd.Locality, sd.Town
		}

		row := BaseAddress{
			UPRN:          l.UPRN,
			Postcode:      b.Postcode,
			Address:       RenderBaseAddress(l.SAO, l.PAO, street, locality, town),
			LogicalStatus: l.LogicalStatus,
			OfficialFlag:  l.OfficialFlag,
			State:         b.State,
			PostalCode:    b.PostalCode,
			ParentUPRN:    b.ParentUPRN,
			Hierarchy:     hierarchy,
			Level:         l.Level,
			StartDate:     l.StartDate,
			EndDate:       l.EndDate,
			LastUpdate:    l.LastUpdate,
			StatusRank:    l.LogicalStatus.Rank(),
		}
		set.Full = append(set.Full, row)

		if row.Address == "" {
			continue
		}
		key := distinctKey(row)
		if !seen[key] {
			seen[key] = true
			distinct := row
			distinct.Level = "" // level is a Full-only attribute
			set.Distinct = append(set.Distinct, distinct)
		}
	}

	for _, row := range set.Distinct {
		if row.LogicalStatus == StatusHistorical {
			continue
		}
		cur, ok := set.BestCurrent[row.UPRN]
		if !ok || betterCurrent(row, cur) {
			set.BestCurrent[row.UPRN] = row
		}
	}

	return set
}

// betterCurrent orders best-current candidates by ascending status rank,
// then descending last-update date (missing = epoch). Ties keep the
// incumbent for stability.
func betterCurrent(a, b BaseAddress) bool {
	if a.StatusRank != b.StatusRank {
		return a.StatusRank < b.StatusRank
	}
	return updateOrMin(a.LastUpdate).After(updateOrMin(b.LastUpdate))
}

// distinctKey serialises the full column tuple used for deduplication.
func distinctKey(r BaseAddress) string {
	return fmt.Sprintf("%d\x1f%s\x1f%s\x1f%d\x1f%s\x1f%s\x1f%s\x1f%s\x1f%s\x1f%s\x1f%s\x1f%s",
		r.UPRN, r.Address, r.Postcode, r.LogicalStatus, r.OfficialFlag,
		r.State, r.PostalCode, formatUPRNPtr(r.ParentUPRN), r.Hierarchy,
		formatDatePtr(r.StartDate), formatDatePtr(r.EndDate), formatDatePtr(r.LastUpdate))
}

func formatUPRNPtr(u *int64) string {
	if u == nil {
		return ""
	}
	return fmt.Sprintf("%d", *u)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
