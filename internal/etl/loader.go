// Package etl loads the six normalized input tables from CSV into typed
// record slices, applying chunk partitioning at load time.
package etl

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
)

// RequiredTables lists the input files a run needs, in load order.
var RequiredTables = []string{
	"blpu",
	"lpi",
	"street_descriptor",
	"organisation",
	"delivery_point",
	"classification",
}

// ErrMissingInput marks a run aborted because input tables were absent.
var ErrMissingInput = errors.New("missing required input tables")

// AssertInputsExist fails before any transformation begins when required
// tables are absent, naming every missing file.
func AssertInputsExist(inputDir string) error {
	var missing []string
	for _, name := range RequiredTables {
		path := filepath.Join(inputDir, name+".csv")
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, name+".csv")
		}
	}
	if len(missing) > 0 {
		return errors.WithDetailf(ErrMissingInput, "missing: %s (in %s)", strings.Join(missing, ", "), inputDir)
	}
	return nil
}

// LoadTables reads all six tables. UPRN-keyed tables are restricted to the
// chunk; street descriptors are keyed by USRN and shared across properties,
// so every chunk loads them in full.
func LoadTables(inputDir string, filter ChunkFilter) (*engine.Tables, error) {
	tables := &engine.Tables{}

	if err := readTable(inputDir, "blpu", func(row record) error {
		uprn, ok := row.int64At("uprn")
		if !ok || !filter.Includes(uprn) {
			return nil
		}
		tables.BLPUs = append(tables.BLPUs, engine.BLPU{
			UPRN:       uprn,
			Postcode:   row.stringAt("postcode_locator"),
			State:      row.stringAt("blpu_state"),
			PostalCode: row.stringAt("addressbase_postal"),
			ParentUPRN: row.int64PtrAt("parent_uprn"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readTable(inputDir, "lpi", func(row record) error {
		uprn, ok := row.int64At("uprn")
		if !ok || !filter.Includes(uprn) {
			return nil
		}
		usrn, _ := row.int64At("usrn")
		status, _ := row.intAt("logical_status")
		tables.LPIs = append(tables.LPIs, engine.LPI{
			UPRN:          uprn,
			Key:           row.stringAt("lpi_key"),
			Language:      row.stringAt("language"),
			LogicalStatus: engine.LogicalStatus(status),
			OfficialFlag:  row.stringAt("official_flag"),
			StartDate:     row.datePtrAt("start_date"),
			EndDate:       row.datePtrAt("end_date"),
			LastUpdate:    row.datePtrAt("last_update_date"),
			USRN:          usrn,
			Level:         row.stringAt("level"),
			SAO: engine.Component{
				Text:        row.stringAt("sao_text"),
				StartNumber: row.intPtrAt("sao_start_number"),
				StartSuffix: row.stringAt("sao_start_suffix"),
				EndNumber:   row.intPtrAt("sao_end_number"),
				EndSuffix:   row.stringAt("sao_end_suffix"),
			},
			PAO: engine.Component{
				Text:        row.stringAt("pao_text"),
				StartNumber: row.intPtrAt("pao_start_number"),
				StartSuffix: row.stringAt("pao_start_suffix"),
				EndNumber:   row.intPtrAt("pao_end_number"),
				EndSuffix:   row.stringAt("pao_end_suffix"),
			},
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readTable(inputDir, "street_descriptor", func(row record) error {
		usrn, ok := row.int64At("usrn")
		if !ok {
			return nil
		}
		tables.StreetDescriptors = append(tables.StreetDescriptors, engine.StreetDescriptor{
			USRN:        usrn,
			Language:    row.stringAt("language"),
			Description: row.stringAt("street_description"),
			Locality:    row.stringAt("locality"),
			Town:        row.stringAt("town_name"),
			EndDate:     row.datePtrAt("end_date"),
			LastUpdate:  row.datePtrAt("last_update_date"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readTable(inputDir, "organisation", func(row record) error {
		uprn, ok := row.int64At("uprn")
		if !ok || !filter.Includes(uprn) {
			return nil
		}
		tables.Organisations = append(tables.Organisations, engine.Organisation{
			UPRN:      uprn,
			Name:      row.stringAt("organisation"),
			LegalName: row.stringAt("legal_name"),
			StartDate: row.datePtrAt("start_date"),
			EndDate:   row.datePtrAt("end_date"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readTable(inputDir, "delivery_point", func(row record) error {
		uprn, ok := row.int64At("uprn")
		if !ok || !filter.Includes(uprn) {
			return nil
		}
		tables.DeliveryPoints = append(tables.DeliveryPoints, engine.DeliveryPoint{
			UPRN:                    uprn,
			UDPRN:                   row.int64PtrAt("udprn"),
			Postcode:                row.stringAt("postcode"),
			Department:              row.stringAt("department_name"),
			Organisation:            row.stringAt("organisation_name"),
			SubBuilding:             row.stringAt("sub_building_name"),
			BuildingName:            row.stringAt("building_name"),
			BuildingNumber:          row.stringAt("building_number"),
			DependentThoroughfare:   row.stringAt("dependent_thoroughfare"),
			Thoroughfare:            row.stringAt("thoroughfare"),
			DoubleDependentLocality: row.stringAt("double_dependent_locality"),
			DependentLocality:       row.stringAt("dependent_locality"),
			PostTown:                row.stringAt("post_town"),
			EndDate:                 row.datePtrAt("end_date"),
			LastUpdate:              row.datePtrAt("last_update_date"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readTable(inputDir, "classification", func(row record) error {
		uprn, ok := row.int64At("uprn")
		if !ok || !filter.Includes(uprn) {
			return nil
		}
		tables.Classifications = append(tables.Classifications, engine.Classification{
			UPRN:       uprn,
			Code:       row.stringAt("classification_code"),
			Scheme:     row.stringAt("class_scheme"),
			EndDate:    row.datePtrAt("end_date"),
			LastUpdate: row.datePtrAt("last_update_date"),
		})
		return nil
	}); err != nil {
		return nil, err
	}

	return tables, nil
}

// record is one CSV row with header-based column access.
type record struct {
	columns map[string]int
	values  []string
}

func (r record) stringAt(column string) string {
	if idx, ok := r.columns[column]; ok && idx < len(r.values) {
		return strings.TrimSpace(r.values[idx])
	}
	return ""
}

func (r record) intAt(column string) (int, bool) {
	s := r.stringAt(column)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r record) int64At(column string) (int64, bool) {
	s := r.stringAt(column)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r record) intPtrAt(column string) *int {
	if n, ok := r.intAt(column); ok {
		return &n
	}
	return nil
}

func (r record) int64PtrAt(column string) *int64 {
	if n, ok := r.int64At(column); ok {
		return &n
	}
	return nil
}

func (r record) datePtrAt(column string) *time.Time {
	s := r.stringAt(column)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

// readTable streams a CSV table row by row through fn, mapping columns by
// lower-cased header name.
func readTable(inputDir, name string, fn func(record) error) error {
	path := filepath.Join(inputDir, name+".csv")
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s table", name)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return errors.Wrapf(err, "read %s header", name)
	}
	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[strings.ToLower(strings.TrimSpace(col))] = i
	}

	for {
		values, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "read %s row", name)
		}
		if err := fn(record{columns: columns, values: values}); err != nil {
			return err
		}
	}
	return nil
}
