// Package pipeline orchestrates a full variant-resolution run: input
// checks, chunked engine execution, the integrity check and atomic output
// replacement.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/config"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/etl"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/output"
)

// IntegrityError reports a lost property identifier: the output relation
// covers fewer (or more) distinct UPRNs than the base-address input. It
// signals a bug in a generator's join or filter logic, never a recoverable
// data condition, so the run aborts and nothing is persisted.
type IntegrityError struct {
	InputUPRNs  int
	OutputUPRNs int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("lost UPRNs during processing: input %d, output %d", e.InputUPRNs, e.OutputUPRNs)
}

// Options are per-run parameters supplied by the CLI.
type Options struct {
	// Force recomputes even when durable output already exists.
	Force bool
	// ChunkID selects one chunk of the partition; ignored when AllChunks.
	ChunkID int
	// AllChunks processes every chunk concurrently and concatenates.
	AllChunks bool
}

// Stats summarises a completed (or skipped) run.
type Stats struct {
	RunID         string
	OutputPath    string
	Skipped       bool
	InputUPRNs    int
	OutputUPRNs   int
	TotalVariants int
	NumChunks     int
	ChunkIDs      []int
	Duration      time.Duration
}

// VariantUpliftPct is the percentage of output rows beyond one per UPRN.
func (s *Stats) VariantUpliftPct() float64 {
	if s.OutputUPRNs == 0 {
		return 0
	}
	return float64(s.TotalVariants-s.OutputUPRNs) / float64(s.OutputUPRNs) * 100
}

// Pipeline runs the engine against configured paths.
type Pipeline struct {
	cfg *config.Config
	log *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, log: log}
}

// chunkResult is one chunk's engine output, kept in chunk order so the
// concatenated relation is deterministic.
type chunkResult struct {
	variants    []engine.AddressVariant
	inputUPRNs  int
	outputUPRNs int
}

// Run executes the pipeline. It either skips because output exists and
// Force was not supplied, fully recomputes and atomically replaces the
// output, or fails before anything is written.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Stats, error) {
	start := time.Now()
	outputPath := filepath.Join(p.cfg.Paths.OutputDir, output.FileName)

	if err := etl.AssertInputsExist(p.cfg.Paths.InputDir); err != nil {
		return nil, err
	}

	if !opts.Force {
		if _, err := os.Stat(outputPath); err == nil {
			p.log.Info("output already exists, skipping (use --force to re-process)",
				zap.String("output", outputPath))
			return &Stats{OutputPath: outputPath, Skipped: true}, nil
		}
	}

	numChunks := p.cfg.Processing.NumChunks
	chunkIDs := []int{opts.ChunkID}
	if opts.AllChunks {
		chunkIDs = make([]int, numChunks)
		for i := range chunkIDs {
			chunkIDs[i] = i
		}
	}
	sort.Ints(chunkIDs)

	results := make([]chunkResult, len(chunkIDs))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range chunkIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			filter, err := etl.NewChunkFilter(numChunks, id)
			if err != nil {
				return err
			}
			chunkStart := time.Now()
			tables, err := etl.LoadTables(p.cfg.Paths.InputDir, filter)
			if err != nil {
				return errors.Wrapf(err, "load chunk %d", id)
			}
			p.log.Debug("chunk loaded",
				zap.Int("chunk_id", id),
				zap.Int("blpu", len(tables.BLPUs)),
				zap.Int("lpi", len(tables.LPIs)),
				zap.Duration("elapsed", time.Since(chunkStart)))

			variants, in, out := engine.Run(tables)
			results[i] = chunkResult{variants: variants, inputUPRNs: in, outputUPRNs: out}
			p.log.Info("chunk processed",
				zap.Int("chunk_id", id),
				zap.Int("input_uprns", in),
				zap.Int("output_uprns", out),
				zap.Int("variants", len(variants)),
				zap.Duration("elapsed", time.Since(chunkStart)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Chunks are disjoint by UPRN, so counts sum and relations concatenate.
	var combined []engine.AddressVariant
	stats := &Stats{
		OutputPath: outputPath,
		NumChunks:  numChunks,
		ChunkIDs:   chunkIDs,
	}
	for _, r := range results {
		combined = append(combined, r.variants...)
		stats.InputUPRNs += r.inputUPRNs
		stats.OutputUPRNs += r.outputUPRNs
	}
	stats.TotalVariants = len(combined)

	if stats.InputUPRNs != stats.OutputUPRNs {
		return nil, &IntegrityError{InputUPRNs: stats.InputUPRNs, OutputUPRNs: stats.OutputUPRNs}
	}

	if err := output.WriteAtomic(outputPath, combined); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	manifest, err := writeManifest(p.cfg.Paths.OutputDir, stats)
	if err != nil {
		return nil, err
	}
	stats.RunID = manifest.RunID

	p.log.Info("run complete",
		zap.String("run_id", stats.RunID),
		zap.Int("input_uprns", stats.InputUPRNs),
		zap.Int("output_uprns", stats.OutputUPRNs),
		zap.Int("total_variants", stats.TotalVariants),
		zap.Float64("variant_uplift_pct", stats.VariantUpliftPct()),
		zap.Duration("elapsed", stats.Duration),
		zap.String("output", outputPath))
	return stats, nil
}
