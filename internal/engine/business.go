package engine

import (
	"sort"
	"strings"
	"time"
)

// nameCandidate is one name to glue onto an address: the trading name, and
// the legal name when it differs.
type nameCandidate struct {
	uprn      int64
	name      string
	legal     bool
	startDate *time.Time
	endDate   *time.Time
}

func nameCandidates(orgs []Organisation) []nameCandidate {
	candidates := make([]nameCandidate, 0, len(orgs))
	for _, o := range orgs {
		name := strings.TrimSpace(o.Name)
		legal := strings.TrimSpace(o.LegalName)
		if name != "" {
			candidates = append(candidates, nameCandidate{
				uprn: o.UPRN, name: name,
				startDate: o.StartDate, endDate: o.EndDate,
			})
		}
		if legal != "" && legal != name {
			candidates = append(candidates, nameCandidate{
				uprn: o.UPRN, name: legal, legal: true,
				startDate: o.StartDate, endDate: o.EndDate,
			})
		}
	}
	return candidates
}

// snapshotIndex holds each property's distinct base-address rows pre-sorted
// by the historical tie-break key: ascending status rank, then descending
// last-update date.
type snapshotIndex map[int64][]BaseAddress

func buildSnapshotIndex(distinct []BaseAddress) snapshotIndex {
	idx := make(snapshotIndex)
	for _, row := range distinct {
		idx[row.UPRN] = append(idx[row.UPRN], row)
	}
	for _, rows := range idx {
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].StatusRank != rows[j].StatusRank {
				return rows[i].StatusRank < rows[j].StatusRank
			}
			return updateOrMin(rows[i].LastUpdate).After(updateOrMin(rows[j].LastUpdate))
		})
	}
	return idx
}

// overlaps reports whether the occupancy interval intersects the address
// snapshot's validity interval. Missing bounds are unbounded on both sides.
func overlaps(occStart, occEnd *time.Time, snap BaseAddress) bool {
	if snap.StartDate != nil && occEnd != nil && occEnd.Before(*snap.StartDate) {
		return false
	}
	if snap.EndDate != nil && occStart != nil && occStart.After(*snap.EndDate) {
		return false
	}
	return true
}

// bestSnapshot picks the address snapshot for a historical occupancy: the
// first candidate (in tie-break order) whose validity interval overlaps the
// occupancy, else the first candidate overall.
func bestSnapshot(occStart, occEnd *time.Time, candidates []BaseAddress) (BaseAddress, bool) {
	if len(candidates) == 0 {
		return BaseAddress{}, false
	}
	for _, snap := range candidates {
		if overlaps(occStart, occEnd, snap) {
			return snap, true
		}
	}
	return candidates[0], true
}

// BusinessVariants renders "{name} {address}" variants for every occupant
// name. Current occupancies (no end date) use the property's best current
// address; ended occupancies each independently pick the address snapshot
// closest to their occupancy interval.
func BusinessVariants(orgs []Organisation, set *BaseAddressSet) []Variant {
	candidates := nameCandidates(orgs)
	snapshots := buildSnapshotIndex(set.Distinct)

	var variants []Variant
	for _, c := range candidates {
		var base BaseAddress
		var label VariantLabel
		if c.endDate == nil {
			cur, ok := set.BestCurrent[c.uprn]
			if !ok {
				continue
			}
			base = cur
			label = LabelBusinessCurrent
			if c.legal {
				label = LabelBusinessCurrLegal
			}
		} else {
			snap, ok := bestSnapshot(c.startDate, c.endDate, snapshots[c.uprn])
			if !ok {
				continue
			}
			base = snap
			label = LabelBusinessHistorical
			if c.legal {
				label = LabelBusinessHistLegal
			}
		}

		address := joinNonEmpty(c.name, base.Address)
		if address == "" {
			continue
		}
		status := base.LogicalStatus
		variants = append(variants, Variant{
			UPRN:          c.uprn,
			Postcode:      base.Postcode,
			Address:       address,
			Source:        SourceOrganisation,
			LogicalStatus: &status,
			OfficialFlag:  base.OfficialFlag,
			State:         base.State,
			PostalCode:    base.PostalCode,
			ParentUPRN:    base.ParentUPRN,
			Hierarchy:     base.Hierarchy,
			Label:         label,
			IsPrimary:     false,
		})
	}
	return variants
}
