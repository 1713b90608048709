// Package output reads and writes the final address-variant relation.
package output

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
)

// FileName is the durable output relation inside the output directory.
const FileName = "address_variants.csv"

var header = []string{
	"uprn", "postcode", "address", "classification_code", "logical_status",
	"blpu_state", "postal_address_code", "udprn", "parent_uprn",
	"hierarchy_level", "source", "variant_label", "is_primary",
}

// WriteAtomic writes the relation to a temp file in the target directory
// and renames it over path, so a run either fully replaces the output or
// leaves the previous one untouched.
func WriteAtomic(path string, variants []engine.AddressVariant) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp output")
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(header); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write output header")
	}
	for _, v := range variants {
		if err := writer.Write(marshalRow(v)); err != nil {
			tmp.Close()
			return errors.Wrap(err, "write output row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "flush output")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync output")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "replace output")
	}
	return nil
}

// Read loads a previously written relation, for the export, serve and
// inspect commands.
func Read(path string) ([]engine.AddressVariant, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open output relation")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil {
		return nil, errors.Wrap(err, "read output header")
	}

	var variants []engine.AddressVariant
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read output row")
		}
		v, err := unmarshalRow(row)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func marshalRow(v engine.AddressVariant) []string {
	return []string{
		strconv.FormatInt(v.UPRN, 10),
		v.Postcode,
		v.Address,
		v.ClassificationCode,
		formatStatus(v.LogicalStatus),
		v.State,
		v.PostalCode,
		formatInt64Ptr(v.UDPRN),
		formatInt64Ptr(v.ParentUPRN),
		string(v.Hierarchy),
		string(v.Source),
		string(v.Label),
		strconv.FormatBool(v.IsPrimary),
	}
}

func unmarshalRow(row []string) (engine.AddressVariant, error) {
	if len(row) != len(header) {
		return engine.AddressVariant{}, errors.Newf("output row has %d columns, want %d", len(row), len(header))
	}
	uprn, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return engine.AddressVariant{}, errors.Wrap(err, "parse uprn")
	}
	isPrimary, err := strconv.ParseBool(row[12])
	if err != nil {
		return engine.AddressVariant{}, errors.Wrap(err, "parse is_primary")
	}
	return engine.AddressVariant{
		UPRN:               uprn,
		Postcode:           row[1],
		Address:            row[2],
		ClassificationCode: row[3],
		LogicalStatus:      parseStatus(row[4]),
		State:              row[5],
		PostalCode:         row[6],
		UDPRN:              parseInt64Ptr(row[7]),
		ParentUPRN:         parseInt64Ptr(row[8]),
		Hierarchy:          engine.HierarchyLevel(row[9]),
		Source:             engine.Source(row[10]),
		Label:              engine.VariantLabel(row[11]),
		IsPrimary:          isPrimary,
	}, nil
}

func formatStatus(s *engine.LogicalStatus) string {
	if s == nil {
		return ""
	}
	return strconv.Itoa(int(*s))
}

func parseStatus(s string) *engine.LogicalStatus {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	status := engine.LogicalStatus(n)
	return &status
}

func formatInt64Ptr(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func parseInt64Ptr(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
