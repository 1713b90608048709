package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusPtr(s LogicalStatus) *LogicalStatus { return &s }

func TestCombineMergesEquivalentAddresses(t *testing.T) {
	// Whitespace runs and apostrophes collapse before deduplication, so
	// these two rows are the same variant.
	out := Combine([]Variant{
		{UPRN: 1, Address: "12  ST MARY'S ROAD", Source: SourceLPI, Label: LabelApproved, LogicalStatus: statusPtr(StatusApproved), IsPrimary: true},
		{UPRN: 1, Address: "12 ST MARYS ROAD", Source: SourceDeliveryPoint, Label: LabelDelivery},
	}, nil, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "12 ST MARYS ROAD", out[0].Address)
	assert.Equal(t, SourceLPI, out[0].Source)
	assert.True(t, out[0].IsPrimary)
}

func TestCombineDedupPrefersBetterStatus(t *testing.T) {
	out := Combine([]Variant{
		{UPRN: 1, Address: "12 HIGH STREET", Source: SourceLPI, Label: LabelAlternative, LogicalStatus: statusPtr(StatusAlternative)},
		{UPRN: 1, Address: "12 HIGH STREET", Source: SourceLPI, Label: LabelApproved, LogicalStatus: statusPtr(StatusApproved), IsPrimary: true},
	}, nil, nil)

	require.Len(t, out, 1)
	assert.Equal(t, LabelApproved, out[0].Label)
}

func TestCombineDedupPrefersBetterSource(t *testing.T) {
	out := Combine([]Variant{
		{UPRN: 1, Address: "ACME LTD 12 HIGH STREET", Source: SourceDeliveryPoint, Label: LabelDelivery},
		{UPRN: 1, Address: "ACME LTD 12 HIGH STREET", Source: SourceOrganisation, Label: LabelBusinessCurrent},
	}, nil, nil)

	require.Len(t, out, 1)
	assert.Equal(t, SourceOrganisation, out[0].Source)
}

func TestCombinePromotesFallbackPrimary(t *testing.T) {
	// No approved row survives for this property, so exactly one surviving
	// row is promoted, preferring the LPI source.
	out := Combine([]Variant{
		{UPRN: 1, Address: "ACME LTD 12 HIGH STREET", Source: SourceOrganisation, Label: LabelBusinessCurrent},
		{UPRN: 1, Address: "12 HIGH STREET", Source: SourceLPI, Label: LabelHistorical, LogicalStatus: statusPtr(StatusHistorical)},
	}, nil, nil)

	require.Len(t, out, 2)
	primaries := 0
	for _, v := range out {
		if v.IsPrimary {
			primaries++
			assert.Equal(t, SourceLPI, v.Source)
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestCombineKeepsExistingPrimary(t *testing.T) {
	out := Combine([]Variant{
		{UPRN: 1, Address: "12 HIGH STREET", Source: SourceLPI, Label: LabelApproved, LogicalStatus: statusPtr(StatusApproved), IsPrimary: true},
		{UPRN: 1, Address: "ACME LTD 12 HIGH STREET", Source: SourceOrganisation, Label: LabelBusinessCurrent},
	}, nil, nil)

	require.Len(t, out, 2)
	primaries := 0
	for _, v := range out {
		if v.IsPrimary {
			primaries++
			assert.Equal(t, LabelApproved, v.Label)
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestCombineEnrichesClassificationAndDeliveryReference(t *testing.T) {
	out := Combine(
		[]Variant{{UPRN: 1, Address: "12 HIGH STREET", Source: SourceLPI, Label: LabelApproved, IsPrimary: true}},
		map[int64]Classification{1: {UPRN: 1, Code: "RD04"}},
		map[int64]DeliveryPoint{1: {UPRN: 1, UDPRN: int64Ptr(777)}},
	)

	require.Len(t, out, 1)
	assert.Equal(t, "RD04", out[0].ClassificationCode)
	require.NotNil(t, out[0].UDPRN)
	assert.Equal(t, int64(777), *out[0].UDPRN)
}

func TestCombineOrdersDeterministically(t *testing.T) {
	out := Combine([]Variant{
		{UPRN: 2, Address: "B", Source: SourceLPI, Label: LabelApproved, IsPrimary: true},
		{UPRN: 1, Address: "D", Source: SourceOrganisation, Label: LabelBusinessCurrent},
		{UPRN: 1, Address: "C", Source: SourceLPI, Label: LabelApproved, IsPrimary: true},
		{UPRN: 1, Address: "A", Source: SourceOrganisation, Label: LabelBusinessCurrent},
	}, nil, nil)

	require.Len(t, out, 4)
	assert.Equal(t, int64(1), out[0].UPRN)
	assert.Equal(t, "C", out[0].Address)
	assert.Equal(t, "A", out[1].Address)
	assert.Equal(t, "D", out[2].Address)
	assert.Equal(t, int64(2), out[3].UPRN)
}

func TestRunCoversEveryProperty(t *testing.T) {
	tables := &Tables{
		BLPUs: []BLPU{
			{UPRN: 1, Postcode: "GU34 1AA", PostalCode: "D"},
			{UPRN: 2, Postcode: "GU34 1AB", PostalCode: "D"},
		},
		LPIs: []LPI{
			{UPRN: 1, Language: "ENG", LogicalStatus: StatusApproved, USRN: 100, PAO: Component{StartNumber: intPtr(12)}, Level: "1"},
			{UPRN: 2, Language: "ENG", LogicalStatus: StatusHistorical, USRN: 100, PAO: Component{StartNumber: intPtr(14)}},
		},
		StreetDescriptors: []StreetDescriptor{
			{USRN: 100, Language: "ENG", Description: "HIGH STREET", Town: "ALTON"},
		},
		Organisations: []Organisation{
			{UPRN: 1, Name: "CORNER CAFE"},
		},
		DeliveryPoints: []DeliveryPoint{
			{UPRN: 1, UDPRN: int64Ptr(555), Postcode: "GU34 1AA", BuildingNumber: "12", Thoroughfare: "HIGH STREET", PostTown: "ALTON"},
		},
		Classifications: []Classification{
			{UPRN: 1, Code: "CR08", Scheme: "AddressBase Premium Classification Scheme"},
		},
	}

	out, inputUPRNs, outputUPRNs := Run(tables)

	assert.Equal(t, 2, inputUPRNs)
	assert.Equal(t, 2, outputUPRNs)

	primaries := make(map[int64]int)
	uprns := make(map[int64]bool)
	for _, v := range out {
		uprns[v.UPRN] = true
		if v.IsPrimary {
			primaries[v.UPRN]++
		}
	}
	assert.Len(t, uprns, 2)
	for uprn, n := range primaries {
		assert.Equalf(t, 1, n, "uprn %d has %d primaries", uprn, n)
	}
	assert.Equal(t, 1, primaries[1])
	assert.Equal(t, 1, primaries[2])

	// UPRN 1 accumulates official, business, delivery and level variants.
	var addresses []string
	for _, v := range out {
		if v.UPRN == 1 {
			addresses = append(addresses, v.Address)
		}
	}
	assert.Contains(t, addresses, "12 HIGH STREET ALTON")
	assert.Contains(t, addresses, "CORNER CAFE 12 HIGH STREET ALTON")
	assert.Contains(t, addresses, "FIRST 12 HIGH STREET ALTON")
}
