// Package engine implements the address variant resolution and
// deduplication pipeline over AddressBase Premium style relations.
//
// Every resolver and generator is a pure function from input record slices
// to output record slices; there is no shared session state. Ordering under
// null dates uses sentinel substitutions throughout: a missing end date
// sorts as the infinite future, a missing last-update date as the epoch.
package engine

import "time"

// LogicalStatus is the closed set of LPI logical status codes carried on
// the wire by AddressBase Premium.
type LogicalStatus int

const (
	StatusApproved    LogicalStatus = 1
	StatusAlternative LogicalStatus = 3
	StatusProvisional LogicalStatus = 6
	StatusHistorical  LogicalStatus = 8
)

// Rank orders statuses for best-record selection. Unknown codes rank 9;
// they are filtered before any resolver runs, so 9 is unreachable in
// practice but keeps the ordering total.
func (s LogicalStatus) Rank() int {
	switch s {
	case StatusApproved:
		return 0
	case StatusAlternative:
		return 1
	case StatusProvisional:
		return 2
	case StatusHistorical:
		return 3
	default:
		return 9
	}
}

// Valid reports whether the status is one of the four allowed codes.
func (s LogicalStatus) Valid() bool {
	switch s {
	case StatusApproved, StatusAlternative, StatusProvisional, StatusHistorical:
		return true
	}
	return false
}

// Label maps a status to its official variant label.
func (s LogicalStatus) Label() VariantLabel {
	switch s {
	case StatusApproved:
		return LabelApproved
	case StatusAlternative:
		return LabelAlternative
	case StatusProvisional:
		return LabelProvisional
	case StatusHistorical:
		return LabelHistorical
	default:
		return ""
	}
}

// Source tags the generator a variant came from.
type Source string

const (
	SourceLPI           Source = "LPI"
	SourceOrganisation  Source = "ORGANISATION"
	SourceDeliveryPoint Source = "DELIVERY_POINT"
	SourceCustomLevel   Source = "CUSTOM_LEVEL"
)

// Rank orders sources for deduplication tie-breaks.
func (s Source) Rank() int {
	switch s {
	case SourceLPI:
		return 0
	case SourceOrganisation:
		return 1
	case SourceDeliveryPoint:
		return 2
	case SourceCustomLevel:
		return 3
	default:
		return 4
	}
}

// VariantLabel is the finer-grained tag within a source.
type VariantLabel string

const (
	LabelApproved           VariantLabel = "APPROVED"
	LabelAlternative        VariantLabel = "ALTERNATIVE"
	LabelProvisional        VariantLabel = "PROVISIONAL"
	LabelHistorical         VariantLabel = "HISTORICAL"
	LabelBusinessCurrent    VariantLabel = "BUSINESS_CURRENT"
	LabelBusinessCurrLegal  VariantLabel = "BUSINESS_CURRENT_LEGAL"
	LabelBusinessHistorical VariantLabel = "BUSINESS_HISTORICAL"
	LabelBusinessHistLegal  VariantLabel = "BUSINESS_HISTORICAL_LEGAL"
	LabelDelivery           VariantLabel = "DELIVERY"
	LabelCustomLevel        VariantLabel = "CUSTOM_LEVEL"
)

// HierarchyLevel says whether a property is a parent, a child, or standalone.
type HierarchyLevel string

const (
	HierarchyParent     HierarchyLevel = "P"
	HierarchyChild      HierarchyLevel = "C"
	HierarchyStandalone HierarchyLevel = "S"
)

// BLPU is one Basic Land and Property Unit record.
type BLPU struct {
	UPRN       int64
	Postcode   string
	State      string
	PostalCode string // addressbase_postal applicability flag
	ParentUPRN *int64
}

// Component holds the structured naming fields for one addressing level
// (SAO or PAO).
type Component struct {
	Text        string
	StartNumber *int
	StartSuffix string
	EndNumber   *int
	EndSuffix   string
}

// LPI is one Land and Property Identifier record.
type LPI struct {
	UPRN          int64
	Key           string
	Language      string
	LogicalStatus LogicalStatus
	OfficialFlag  string
	StartDate     *time.Time
	EndDate       *time.Time
	LastUpdate    *time.Time
	USRN          int64
	Level         string
	SAO           Component
	PAO           Component
}

// StreetDescriptor is one street name record for a USRN and language.
type StreetDescriptor struct {
	USRN        int64
	Language    string
	Description string
	Locality    string
	Town        string
	EndDate     *time.Time
	LastUpdate  *time.Time
}

// Organisation is one business occupancy record. A nil EndDate means the
// organisation still occupies the property.
type Organisation struct {
	UPRN      int64
	Name      string
	LegalName string
	StartDate *time.Time
	EndDate   *time.Time
}

// DeliveryPoint is one Royal Mail delivery point record, already flattened.
type DeliveryPoint struct {
	UPRN                    int64
	UDPRN                   *int64
	Postcode                string
	Department              string
	Organisation            string
	SubBuilding             string
	BuildingName            string
	BuildingNumber          string
	DependentThoroughfare   string
	Thoroughfare            string
	DoubleDependentLocality string
	DependentLocality       string
	PostTown                string
	EndDate                 *time.Time
	LastUpdate              *time.Time
}

// Classification is one land-use classification record.
type Classification struct {
	UPRN       int64
	Code       string
	Scheme     string
	EndDate    *time.Time
	LastUpdate *time.Time
}

// Tables bundles the six input relations for one run.
type Tables struct {
	BLPUs             []BLPU
	LPIs              []LPI
	StreetDescriptors []StreetDescriptor
	Organisations     []Organisation
	DeliveryPoints    []DeliveryPoint
	Classifications   []Classification
}

// Variant is one candidate address row before deduplication.
type Variant struct {
	UPRN          int64
	Postcode      string
	Address       string
	Source        Source
	LogicalStatus *LogicalStatus
	OfficialFlag  string
	State         string
	PostalCode    string
	ParentUPRN    *int64
	Hierarchy     HierarchyLevel
	Label         VariantLabel
	IsPrimary     bool
}

// AddressVariant is one row of the final output relation.
type AddressVariant struct {
	UPRN               int64          `json:"uprn"`
	Postcode           string         `json:"postcode,omitempty"`
	Address            string         `json:"address"`
	ClassificationCode string         `json:"classification_code,omitempty"`
	LogicalStatus      *LogicalStatus `json:"logical_status,omitempty"`
	State              string         `json:"blpu_state,omitempty"`
	PostalCode         string         `json:"postal_address_code,omitempty"`
	UDPRN              *int64         `json:"udprn,omitempty"`
	ParentUPRN         *int64         `json:"parent_uprn,omitempty"`
	Hierarchy          HierarchyLevel `json:"hierarchy_level,omitempty"`
	Source             Source         `json:"source"`
	Label              VariantLabel   `json:"variant_label"`
	IsPrimary          bool           `json:"is_primary"`
}

// Date ordering sentinels.
var (
	maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	minDate = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
)

// endOrMax substitutes the infinite-future sentinel for a missing end date.
func endOrMax(t *time.Time) time.Time {
	if t == nil {
		return maxDate
	}
	return *t
}

// updateOrMin substitutes the epoch sentinel for a missing last-update date.
func updateOrMin(t *time.Time) time.Time {
	if t == nil {
		return minDate
	}
	return *t
}
