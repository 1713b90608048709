package etl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
)

func writeFixtureTables(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"blpu.csv": "uprn,postcode_locator,blpu_state,addressbase_postal,parent_uprn\n" +
			"1,GU34 1AA,2,D,\n" +
			"2,GU34 1AB,2,D,1\n",
		"lpi.csv": "uprn,lpi_key,language,logical_status,official_flag,start_date,end_date,last_update_date,usrn,level," +
			"sao_text,sao_start_number,sao_start_suffix,sao_end_number,sao_end_suffix," +
			"pao_text,pao_start_number,pao_start_suffix,pao_end_number,pao_end_suffix\n" +
			"1,KEY1,ENG,1,Y,2010-01-01,,2020-05-01,100,1,,,,,,,12,A,,\n" +
			"2,KEY2,ENG,8,,,2018-12-31,,100,,FLAT,1,,,,THE HOUSE,,,,\n",
		"street_descriptor.csv": "usrn,language,street_description,locality,town_name,end_date,last_update_date\n" +
			"100,ENG,HIGH STREET,,ALTON,,2021-03-15\n",
		"organisation.csv": "uprn,organisation,legal_name,start_date,end_date\n" +
			"1,CORNER CAFE,CORNER CAFE LTD,2019-06-01,\n",
		"delivery_point.csv": "uprn,udprn,postcode,department_name,organisation_name,sub_building_name,building_name,building_number," +
			"dependent_thoroughfare,thoroughfare,double_dependent_locality,dependent_locality,post_town,end_date,last_update_date\n" +
			"1,555,GU34 1AA,,,,,12,,HIGH STREET,,,ALTON,,\n",
		"classification.csv": "uprn,classification_code,class_scheme,end_date,last_update_date\n" +
			"1,RD04,AddressBase Premium Classification Scheme,,\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestAssertInputsExist(t *testing.T) {
	dir := writeFixtureTables(t)
	assert.NoError(t, AssertInputsExist(dir))
}

func TestAssertInputsExistReportsMissing(t *testing.T) {
	dir := writeFixtureTables(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "organisation.csv")))
	require.NoError(t, os.Remove(filepath.Join(dir, "classification.csv")))

	err := AssertInputsExist(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestLoadTables(t *testing.T) {
	dir := writeFixtureTables(t)
	filter, err := NewChunkFilter(1, 0)
	require.NoError(t, err)

	tables, err := LoadTables(dir, filter)
	require.NoError(t, err)

	require.Len(t, tables.BLPUs, 2)
	assert.Equal(t, int64(1), tables.BLPUs[0].UPRN)
	assert.Equal(t, "GU34 1AA", tables.BLPUs[0].Postcode)
	assert.Nil(t, tables.BLPUs[0].ParentUPRN)
	require.NotNil(t, tables.BLPUs[1].ParentUPRN)
	assert.Equal(t, int64(1), *tables.BLPUs[1].ParentUPRN)

	require.Len(t, tables.LPIs, 2)
	lpi := tables.LPIs[0]
	assert.Equal(t, engine.StatusApproved, lpi.LogicalStatus)
	assert.Equal(t, "ENG", lpi.Language)
	assert.Equal(t, int64(100), lpi.USRN)
	assert.Equal(t, "1", lpi.Level)
	require.NotNil(t, lpi.PAO.StartNumber)
	assert.Equal(t, 12, *lpi.PAO.StartNumber)
	assert.Equal(t, "A", lpi.PAO.StartSuffix)
	require.NotNil(t, lpi.StartDate)
	assert.Equal(t, "2010-01-01", lpi.StartDate.Format("2006-01-02"))
	assert.Nil(t, lpi.EndDate)

	historic := tables.LPIs[1]
	assert.Equal(t, engine.StatusHistorical, historic.LogicalStatus)
	assert.Equal(t, "FLAT", historic.SAO.Text)
	require.NotNil(t, historic.EndDate)

	require.Len(t, tables.StreetDescriptors, 1)
	assert.Equal(t, "HIGH STREET", tables.StreetDescriptors[0].Description)
	assert.Equal(t, "ALTON", tables.StreetDescriptors[0].Town)

	require.Len(t, tables.Organisations, 1)
	assert.Equal(t, "CORNER CAFE", tables.Organisations[0].Name)
	assert.Nil(t, tables.Organisations[0].EndDate)

	require.Len(t, tables.DeliveryPoints, 1)
	require.NotNil(t, tables.DeliveryPoints[0].UDPRN)
	assert.Equal(t, int64(555), *tables.DeliveryPoints[0].UDPRN)

	require.Len(t, tables.Classifications, 1)
	assert.Equal(t, "RD04", tables.Classifications[0].Code)
}

func TestLoadTablesAppliesChunkFilter(t *testing.T) {
	dir := writeFixtureTables(t)

	// Street descriptors are shared reference data, never chunk-filtered.
	var blpuTotal int
	for id := 0; id < 4; id++ {
		filter, err := NewChunkFilter(4, id)
		require.NoError(t, err)
		tables, err := LoadTables(dir, filter)
		require.NoError(t, err)
		blpuTotal += len(tables.BLPUs)
		assert.Len(t, tables.StreetDescriptors, 1)
	}
	assert.Equal(t, 2, blpuTotal)
}

func TestLoadTablesMissingFile(t *testing.T) {
	filter, err := NewChunkFilter(1, 0)
	require.NoError(t, err)

	_, err = LoadTables(t.TempDir(), filter)
	assert.Error(t, err)
}
