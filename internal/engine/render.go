package engine

import (
	"strconv"
	"strings"
)

// joinNonEmpty joins the non-empty parts with single spaces, mirroring the
// concat_ws + NULLIF rendering convention of the source tables.
func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// RenderComponent renders one addressing level (SAO or PAO): free text,
// then either "{start}{suffix}" or "{start}{suffix}-{end}{suffix}" when
// numbering is present.
func RenderComponent(c Component) string {
	var number string
	switch {
	case c.StartNumber != nil && c.EndNumber == nil:
		number = strconv.Itoa(*c.StartNumber) + c.StartSuffix
	case c.StartNumber != nil && c.EndNumber != nil:
		number = strconv.Itoa(*c.StartNumber) + c.StartSuffix + "-" +
			strconv.Itoa(*c.EndNumber) + c.EndSuffix
	}
	return joinNonEmpty(c.Text, number)
}

// RenderBaseAddress assembles the base address: SAO and PAO components as
// one group, then street description, locality and town, skipping empties.
func RenderBaseAddress(sao, pao Component, street, locality, town string) string {
	naming := joinNonEmpty(RenderComponent(sao), RenderComponent(pao))
	return joinNonEmpty(naming, street, locality, town)
}

// RenderDeliveryPoint assembles a delivery point address: the naming fields
// as one group, then the thoroughfare and locality fields in Royal Mail
// order.
func RenderDeliveryPoint(d DeliveryPoint) string {
	naming := joinNonEmpty(d.Department, d.Organisation, d.SubBuilding,
		d.BuildingName, d.BuildingNumber)
	return joinNonEmpty(naming, d.DependentThoroughfare, d.Thoroughfare,
		d.DoubleDependentLocality, d.DependentLocality, d.PostTown)
}
