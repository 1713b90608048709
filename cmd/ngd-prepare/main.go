package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/config"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/db"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/export"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/logging"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/output"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/pipeline"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/web"
)

var (
	configPath string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ngd-prepare",
		Short: "Prepare NGD AddressBase Premium data for address matching",
		Long:  `Resolves address variants per UPRN from normalized AddressBase Premium tables and produces a deduplicated flat relation for matching pipelines`,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(createRunCmd())
	rootCmd.AddCommand(createExportCmd())
	rootCmd.AddCommand(createServeCmd())
	rootCmd.AddCommand(createInspectCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and builds the logger, shared by every subcommand.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func createRunCmd() *cobra.Command {
	var (
		force     bool
		chunkID   int
		numChunks int
		allChunks bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve address variants and write the output relation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			if numChunks > 0 {
				cfg.Processing.NumChunks = numChunks
			}
			stats, err := pipeline.New(cfg, log).Run(cmd.Context(), pipeline.Options{
				Force:     force,
				ChunkID:   chunkID,
				AllChunks: allChunks,
			})
			if err != nil {
				return err
			}
			if stats.Skipped {
				pterm.Info.Printfln("Output already exists at %s, nothing to do", stats.OutputPath)
				return nil
			}
			printRunSummary(stats)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-process even if output exists")
	cmd.Flags().IntVar(&chunkID, "chunk-id", 0, "chunk of the UPRN partition to process")
	cmd.Flags().IntVar(&numChunks, "num-chunks", 0, "override the configured chunk count")
	cmd.Flags().BoolVar(&allChunks, "all-chunks", false, "process every chunk concurrently")
	return cmd
}

func printRunSummary(stats *pipeline.Stats) {
	pterm.DefaultSection.Println("Run summary")
	pterm.DefaultTable.WithData(pterm.TableData{
		{"Run ID", stats.RunID},
		{"Input UPRNs", fmt.Sprintf("%d", stats.InputUPRNs)},
		{"Output UPRNs", fmt.Sprintf("%d", stats.OutputUPRNs)},
		{"Total variants", fmt.Sprintf("%d", stats.TotalVariants)},
		{"Variant uplift", fmt.Sprintf("%.1f%%", stats.VariantUpliftPct())},
		{"Chunks", fmt.Sprintf("%d of %d", len(stats.ChunkIDs), stats.NumChunks)},
		{"Duration", stats.Duration.Round(time.Millisecond).String()},
		{"Output", stats.OutputPath},
	}).Render()
}

func createExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Load the output relation into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			variants, err := output.Read(filepath.Join(cfg.Paths.OutputDir, output.FileName))
			if err != nil {
				return err
			}
			conn, err := db.NewConnection(cfg.Postgres)
			if err != nil {
				return err
			}
			defer conn.Close()

			stats, err := export.New(conn.DB, cfg.Postgres.Table, log).Export(cmd.Context(), variants)
			if err != nil {
				return err
			}
			pterm.Success.Printfln("Exported %d rows to %s in %s",
				stats.Rows, cfg.Postgres.Table, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

func createServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the output relation over HTTP for inspection",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer log.Sync()

			variants, err := output.Read(filepath.Join(cfg.Paths.OutputDir, output.FileName))
			if err != nil {
				return err
			}
			// The manifest is optional; a relation copied without it still serves.
			manifest, err := pipeline.ReadManifest(cfg.Paths.OutputDir)
			if err != nil {
				log.Warn("no manifest found", zap.Error(err))
				manifest = nil
			}
			return web.NewServer(cfg.Server, variants, manifest, log).Start()
		},
	}
}

func createInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Summarise the output relation and its manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			variants, err := output.Read(filepath.Join(cfg.Paths.OutputDir, output.FileName))
			if err != nil {
				return err
			}

			uprns := make(map[int64]bool)
			bySource := make(map[string]int)
			primaries := 0
			for _, v := range variants {
				uprns[v.UPRN] = true
				bySource[string(v.Source)]++
				if v.IsPrimary {
					primaries++
				}
			}

			pterm.DefaultSection.Println("Output relation")
			data := pterm.TableData{
				{"UPRNs", fmt.Sprintf("%d", len(uprns))},
				{"Total variants", fmt.Sprintf("%d", len(variants))},
				{"Primary variants", fmt.Sprintf("%d", primaries)},
			}
			sources := make([]string, 0, len(bySource))
			for source := range bySource {
				sources = append(sources, source)
			}
			sort.Strings(sources)
			for _, source := range sources {
				data = append(data, []string{"Source " + source, fmt.Sprintf("%d", bySource[source])})
			}
			pterm.DefaultTable.WithData(data).Render()

			if manifest, err := pipeline.ReadManifest(cfg.Paths.OutputDir); err == nil {
				pterm.DefaultSection.Println("Last run")
				pterm.DefaultTable.WithData(pterm.TableData{
					{"Run ID", manifest.RunID},
					{"Generated", manifest.GeneratedAt.Format(time.RFC3339)},
					{"Uplift", fmt.Sprintf("%.1f%%", manifest.VariantUpliftPct)},
					{"Duration", fmt.Sprintf("%.1fs", manifest.DurationSeconds)},
				}).Render()
			}
			return nil
		},
	}
}
