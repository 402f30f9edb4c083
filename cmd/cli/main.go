package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/montanaflynn/stats"
	"github.com/spf13/cobra"

	"gohypo/adapters/postgres"
	"gohypo/adapters/render"
	"gohypo/adapters/table"
	"gohypo/adapters/transition"
	"gohypo/app"
	"gohypo/domain/core"
	"gohypo/domain/run"
	"gohypo/internal"
	"gohypo/internal/config"
	"gohypo/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "gocrit",
		Short: "Critical temperature estimation from Monte Carlo observable sweeps",
	}

	rootCmd.AddCommand(
		newEstimateCmd(),
		newPlotCmd(),
		newArchiveCmd(),
		newRunsCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEstimateCmd() *cobra.Command {
	var workers int
	var asJSON bool
	var asReport bool

	cmd := &cobra.Command{
		Use:   "estimate [table-file]",
		Short: "Estimate the critical temperature of every observable in a table",
		Long: `Estimate critical temperatures from a sweep table (TSV, CSV or XLSX).

Response functions (susceptibilities and heat capacity) are located at
their curve peak; every other observable at the peak of |dy/dT|.

Example: gocrit estimate result.txt --workers 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEstimate(cmd.Context(), args[0], workers, asJSON, asReport)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent observables (0 = one goroutine per observable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full run as JSON")
	cmd.Flags().BoolVar(&asReport, "report", false, "Print the markdown report instead of the summary")

	return cmd
}

func newPlotCmd() *cobra.Command {
	var workers int
	var outPath string
	var format string

	cmd := &cobra.Command{
		Use:   "plot [table-file]",
		Short: "Analyze a table and draw the annotated multi-panel figure",
		Long: `Analyze a sweep table and draw one panel per observable, each with a
dashed marker at the estimated critical temperature.

Example: gocrit plot result.txt --out figures/result.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd.Context(), args[0], outPath, format, workers)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent observables (0 = one goroutine per observable)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output path (default <figure-dir>/<table>.<format>)")
	cmd.Flags().StringVar(&format, "format", "", "Figure format: png or svg (default from FIGURE_FORMAT)")

	return cmd
}

func newArchiveCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "archive [table-file]",
		Short: "Analyze a table and store the run in the archive database",
		Long: `Analyze a sweep table and persist the run, estimates and table data
to the archive so it can be listed, reported and replotted later.

Requires DATABASE_URL.

Example: gocrit archive result.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchive(cmd.Context(), args[0], workers)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent observables (0 = one goroutine per observable)")

	return cmd
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived analysis runs",
	}
	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
		newRunsReportCmd(),
		newRunsDeleteCmd(),
	)
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var source string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(cmd.Context(), ports.RunFilters{Source: source, Limit: limit, Offset: offset})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Only runs for this source file")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")

	return cmd
}

func newRunsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(cmd.Context(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full run as JSON")

	return cmd
}

func newRunsReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [run-id]",
		Short: "Print the markdown report for an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsReport(cmd.Context(), args[0])
		},
	}
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run-id]",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsDelete(cmd.Context(), args[0])
		},
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the archive database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := openDatabase()
				if err != nil {
					return err
				}
				defer db.Close()

				if err := postgres.NewMigrator(db).Up(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("Migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := openDatabase()
				if err != nil {
					return err
				}
				defer db.Close()

				statuses, err := postgres.NewMigrator(db).Status(cmd.Context())
				if err != nil {
					return err
				}
				applied := 0
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
						applied++
					}
					fmt.Printf("  %s: %s\n", s.Version, state)
				}
				fmt.Printf("\n%d/%d migrations applied\n", applied, len(statuses))
				return nil
			},
		},
	)

	return cmd
}

// analyzeFile reads a table and runs the full analysis over it
func analyzeFile(ctx context.Context, path string, workers int, repo ports.RunRepository, archive bool) (*app.AnalysisResult, error) {
	tbl, err := table.NewReader(path).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}

	svc := app.NewAnalysisService(transition.NewEngine(), repo, internal.NewDefaultLogger(), workers)
	return svc.Run(ctx, app.AnalysisRequest{Table: tbl, Archive: archive})
}

func runEstimate(ctx context.Context, path string, workers int, asJSON, asReport bool) error {
	result, err := analyzeFile(ctx, path, workers, nil, false)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}
	if asReport {
		fmt.Print(app.BuildReport(result.Run))
		return nil
	}

	printRecord(result.Run)
	fmt.Printf("Runtime: %d ms\n", result.RuntimeMs)
	return nil
}

func runPlot(ctx context.Context, path, outPath, format string, workers int) error {
	analysisCfg := config.LoadAnalysis()
	if format == "" {
		format = analysisCfg.FigureFormat
	}
	renderer, err := render.NewRenderer(format)
	if err != nil {
		return err
	}

	result, err := analyzeFile(ctx, path, workers, nil, false)
	if err != nil {
		return err
	}

	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		outPath = filepath.Join(analysisCfg.FigureDir, fmt.Sprintf("%s.%s", base, format))
	}
	if err := renderer.Render(ctx, result.Run.Table, result.Run, outPath); err != nil {
		return err
	}

	printRecord(result.Run)
	fmt.Printf("Figure: %s\n", outPath)
	return nil
}

func runArchive(ctx context.Context, path string, workers int) error {
	db, repo, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := analyzeFile(ctx, path, workers, repo, true)
	if err != nil {
		return err
	}

	printRecord(result.Run)
	fmt.Printf("Archived run: %s\n", result.Run.ID)
	return nil
}

func runRunsList(ctx context.Context, filters ports.RunFilters) error {
	db, repo, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	summaries, err := repo.List(ctx, filters)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No archived runs")
		return nil
	}

	fmt.Printf("%-36s  %-24s  %7s  %5s  %s\n", "ID", "SOURCE", "RESULTS", "SKIPS", "CREATED")
	for _, s := range summaries {
		fmt.Printf("%-36s  %-24s  %7d  %5d  %s\n",
			s.ID, s.Source, s.ResultCount, s.SkipCount, s.CreatedAt)
	}
	return nil
}

func runRunsShow(ctx context.Context, rawID string, asJSON bool) error {
	db, repo, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := loadRun(ctx, repo, rawID)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode run: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printRecord(rec)
	fmt.Printf("Created: %s\n", rec.CreatedAt)
	return nil
}

func runRunsReport(ctx context.Context, rawID string) error {
	db, repo, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := loadRun(ctx, repo, rawID)
	if err != nil {
		return err
	}

	fmt.Print(app.BuildReport(rec))
	return nil
}

func runRunsDelete(ctx context.Context, rawID string) error {
	db, repo, err := openArchive(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := core.ParseRunID(rawID)
	if err != nil {
		return err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Printf("Deleted run %s\n", id)
	return nil
}

func loadRun(ctx context.Context, repo ports.RunRepository, rawID string) (*run.AnalysisRun, error) {
	id, err := core.ParseRunID(rawID)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// printRecord writes the per-observable estimates and the consensus
func printRecord(rec *run.AnalysisRun) {
	fmt.Printf("\n=== CRITICAL POINT ESTIMATES ===\n")
	fmt.Printf("Source: %s (%s)\n", rec.Source, rec.Format)
	fmt.Printf("Observables: %d | Samples: %d\n", rec.ObservableCount, rec.SampleCount)
	fmt.Printf("Fingerprint: %s\n\n", rec.Fingerprint.Short())

	for _, res := range rec.Results {
		est := res.Estimate
		marker := ""
		if est.Fallback {
			marker = "  (fallback: no interior peak)"
		}
		fmt.Printf("%-14s T_c = %-8.4g kind=%s peaks=%d signal=%.4g%s\n",
			est.Key, est.TC, est.Kind, est.PeakCount, est.SignalValue, marker)
	}
	for _, skip := range rec.Skips {
		fmt.Printf("%-14s skipped: %s\n", skip.Key, skip.Reason)
	}

	if tcs := rec.TCs(); len(tcs) > 0 {
		median, err := stats.Median(tcs)
		if err == nil {
			fmt.Printf("\nConsensus (median of %d): T_c = %.4g\n", len(tcs), median)
		}
	}
}

// openDatabase connects to the archive database from configuration
func openDatabase() (*sqlx.DB, error) {
	appConfig, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// openArchive connects and makes sure the schema is current
func openArchive(ctx context.Context) (*sqlx.DB, ports.RunRepository, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}

	if err := postgres.NewMigrator(db).Up(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database migration failed: %w", err)
	}
	return db, postgres.NewRunRepository(db), nil
}
