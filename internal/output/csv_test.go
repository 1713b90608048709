package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
)

func sampleVariants() []engine.AddressVariant {
	status := engine.StatusApproved
	udprn := int64(555)
	parent := int64(42)
	return []engine.AddressVariant{
		{
			UPRN:               1,
			Postcode:           "GU34 1AA",
			Address:            "12 HIGH STREET ALTON",
			ClassificationCode: "RD04",
			LogicalStatus:      &status,
			State:              "2",
			PostalCode:         "D",
			UDPRN:              &udprn,
			ParentUPRN:         &parent,
			Hierarchy:          engine.HierarchyChild,
			Source:             engine.SourceLPI,
			Label:              engine.LabelApproved,
			IsPrimary:          true,
		},
		{
			UPRN:      2,
			Address:   "CORNER CAFE 14 HIGH STREET",
			Source:    engine.SourceOrganisation,
			Label:     engine.LabelBusinessCurrent,
			Hierarchy: engine.HierarchyStandalone,
		},
	}
}

func TestWriteAtomicRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	want := sampleVariants()

	require.NoError(t, WriteAtomic(path, want))
	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestWriteAtomicReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteAtomic(path, sampleVariants()))
	require.NoError(t, WriteAtomic(path, sampleVariants()[:1]))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWriteAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAtomic(filepath.Join(dir, FileName), sampleVariants()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestWriteAtomicCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", FileName)
	assert.NoError(t, WriteAtomic(path, nil))
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), FileName))
	assert.Error(t, err)
}

func TestReadRejectsShortRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("uprn,address\n1,SOMEWHERE\n"), 0o644))

	_, err := Read(path)
	assert.Error(t, err)
}
