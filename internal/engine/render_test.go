package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestRenderComponent(t *testing.T) {
	tests := []struct {
		name      string
		component Component
		want      string
	}{
		{
			name:      "empty",
			component: Component{},
			want:      "",
		},
		{
			name:      "text only",
			component: Component{Text: "THE OLD MILL"},
			want:      "THE OLD MILL",
		},
		{
			name:      "start number only",
			component: Component{StartNumber: intPtr(12)},
			want:      "12",
		},
		{
			name:      "start number with suffix",
			component: Component{StartNumber: intPtr(12), StartSuffix: "A"},
			want:      "12A",
		},
		{
			name:      "number range",
			component: Component{StartNumber: intPtr(12), EndNumber: intPtr(14)},
			want:      "12-14",
		},
		{
			name: "number range with suffixes",
			component: Component{
				StartNumber: intPtr(12), StartSuffix: "A",
				EndNumber: intPtr(14), EndSuffix: "B",
			},
			want: "12A-14B",
		},
		{
			name:      "text before number",
			component: Component{Text: "FLAT", StartNumber: intPtr(3)},
			want:      "FLAT 3",
		},
		{
			name:      "end number without start is ignored",
			component: Component{Text: "ANNEX", EndNumber: intPtr(9)},
			want:      "ANNEX",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderComponent(tt.component))
		})
	}
}

func TestRenderBaseAddress(t *testing.T) {
	sao := Component{Text: "FLAT", StartNumber: intPtr(2)}
	pao := Component{StartNumber: intPtr(10), StartSuffix: "A"}

	got := RenderBaseAddress(sao, pao, "HIGH STREET", "OLD TOWN", "WINCHESTER")
	assert.Equal(t, "FLAT 2 10A HIGH STREET OLD TOWN WINCHESTER", got)
}

func TestRenderBaseAddressSkipsEmptyParts(t *testing.T) {
	got := RenderBaseAddress(Component{}, Component{StartNumber: intPtr(7)}, "STATION ROAD", "", "ALTON")
	assert.Equal(t, "7 STATION ROAD ALTON", got)
}

func TestRenderDeliveryPoint(t *testing.T) {
	d := DeliveryPoint{
		Organisation:   "ACME LTD",
		BuildingNumber: "5",
		Thoroughfare:   "MARKET SQUARE",
		PostTown:       "PETERSFIELD",
	}
	assert.Equal(t, "ACME LTD 5 MARKET SQUARE PETERSFIELD", RenderDeliveryPoint(d))
}

func TestRenderDeliveryPointAllFields(t *testing.T) {
	d := DeliveryPoint{
		Department:              "ACCOUNTS",
		Organisation:            "ACME LTD",
		SubBuilding:             "UNIT 1",
		BuildingName:            "THE WAREHOUSE",
		BuildingNumber:          "5",
		DependentThoroughfare:   "BACK LANE",
		Thoroughfare:            "MARKET SQUARE",
		DoubleDependentLocality: "SOUTH END",
		DependentLocality:       "SHEET",
		PostTown:                "PETERSFIELD",
	}
	want := "ACCOUNTS ACME LTD UNIT 1 THE WAREHOUSE 5 BACK LANE MARKET SQUARE SOUTH END SHEET PETERSFIELD"
	assert.Equal(t, want, RenderDeliveryPoint(d))
}
