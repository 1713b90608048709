package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ManifestFileName sits next to the output relation and records what
// produced it.
const ManifestFileName = "manifest.json"

// Manifest describes one completed run.
type Manifest struct {
	RunID            string    `json:"run_id"`
	GeneratedAt      time.Time `json:"generated_at"`
	Output           string    `json:"output"`
	InputUPRNs       int       `json:"input_uprns"`
	OutputUPRNs      int       `json:"output_uprns"`
	TotalVariants    int       `json:"total_variants"`
	VariantUpliftPct float64   `json:"variant_uplift_pct"`
	NumChunks        int       `json:"num_chunks"`
	ChunkIDs         []int     `json:"chunk_ids"`
	DurationSeconds  float64   `json:"duration_seconds"`
}

func writeManifest(outputDir string, stats *Stats) (*Manifest, error) {
	m := &Manifest{
		RunID:            uuid.NewString(),
		GeneratedAt:      time.Now().UTC(),
		Output:           filepath.Base(stats.OutputPath),
		InputUPRNs:       stats.InputUPRNs,
		OutputUPRNs:      stats.OutputUPRNs,
		TotalVariants:    stats.TotalVariants,
		VariantUpliftPct: stats.VariantUpliftPct(),
		NumChunks:        stats.NumChunks,
		ChunkIDs:         stats.ChunkIDs,
		DurationSeconds:  stats.Duration.Seconds(),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode manifest")
	}
	path := filepath.Join(outputDir, ManifestFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, errors.Wrap(err, "write manifest")
	}
	return m, nil
}

// ReadManifest loads the manifest of the last completed run, for the
// inspect and serve commands.
func ReadManifest(outputDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, ManifestFileName))
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "decode manifest")
	}
	return &m, nil
}
