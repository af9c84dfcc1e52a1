package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mmrzaf/costgen/internal/app"
	"github.com/mmrzaf/costgen/internal/config"
	"github.com/mmrzaf/costgen/internal/domain"
	"github.com/mmrzaf/costgen/internal/infra/repos/runs"
	"github.com/mmrzaf/costgen/internal/infra/repos/schemas"
	"github.com/mmrzaf/costgen/internal/logging"
	"github.com/mmrzaf/costgen/internal/providers"
	"github.com/mmrzaf/costgen/internal/timeutil"
	"github.com/mmrzaf/costgen/internal/validation"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	schemasDir string
	runsDBPath string
	logLevel   string
)

func main() {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:          "costgen",
		Short:        "Synthetic cloud cost report generator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&schemasDir, "schemas-dir", cfg.SchemasDir, "Schemas directory")
	rootCmd.PersistentFlags().StringVar(&runsDBPath, "runs-db", cfg.RunsDBPath, "Runs database path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level")

	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(generateCmd(cfg))
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSchema(repo *schemas.FileRepository, ref string) (*domain.Schema, error) {
	if strings.Contains(ref, "/") || strings.HasSuffix(ref, ".yaml") || strings.HasSuffix(ref, ".yml") || strings.HasSuffix(ref, ".json") {
		return repo.GetByPath(ref)
	}
	return repo.Get(ref)
}

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage report schemas",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := schemas.NewFileRepository(schemasDir)
			list, err := repo.List()
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPROVIDER\tCOLUMNS")
			for _, s := range list {
				provider := s.Provider
				if provider == "" {
					provider = providers.Generic
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.ID, s.Name, provider, len(s.Columns))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show schema details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(schemas.NewFileRepository(schemasDir), args[0])
			if err != nil {
				return err
			}

			data, _ := yaml.Marshal(schema)
			fmt.Println(string(data))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <id|path>",
		Short: "Validate a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(schemas.NewFileRepository(schemasDir), args[0])
			if err != nil {
				return err
			}

			if err := validation.ValidateSchema(schema); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}
			if _, err := providers.Build(schema, "", providers.Options{}); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}

			fmt.Printf("Schema '%s' is valid\n", schema.Name)
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd)
	return cmd
}

func generateCmd(cfg *config.Config) *cobra.Command {
	var (
		schemaID       string
		schemaPath     string
		provider       string
		start          string
		end            string
		rows           int64
		untilPeriodEnd bool
		sinkKind       string
		out            string
		dsn            string
		table          string
		pgSchema       string
		seed           int64
		batchSize      int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a cost report",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger(logLevel)

			runRepo := runs.NewSQLiteRepository(runsDBPath)
			if err := runRepo.Init(); err != nil {
				return err
			}
			defer runRepo.Close()

			svc := app.NewRunService(schemas.NewFileRepository(schemasDir), runRepo, logger, batchSize)

			req := &domain.RunRequest{
				SchemaID:       schemaID,
				SchemaPath:     schemaPath,
				Provider:       provider,
				Rows:           rows,
				UntilPeriodEnd: untilPeriodEnd,
			}
			if schemaID == "" && schemaPath == "" {
				return fmt.Errorf("either --schema or --schema-path required")
			}
			if untilPeriodEnd && !cmd.Flags().Changed("rows") {
				req.Rows = 0
			}

			now := time.Now().UTC()
			if start != "" {
				t, err := timeutil.ParseDate(start, now)
				if err != nil {
					return fmt.Errorf("invalid --start: %w", err)
				}
				req.Start = &t
			}
			if end != "" {
				t, err := timeutil.ParseDate(end, now)
				if err != nil {
					return fmt.Errorf("invalid --end: %w", err)
				}
				req.End = &t
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &seed
			}

			name := schemaID
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(schemaPath), filepath.Ext(schemaPath))
			}
			if table == "" {
				table = name
			}
			req.Sink = domain.SinkConfig{Kind: sinkKind, DSN: dsn, Table: table, Schema: pgSchema}
			if sinkKind == domain.SinkKindCSV {
				if out == "" {
					out = filepath.Join(cfg.OutputDir, fmt.Sprintf("%s-%s.csv", name, now.Format("20060102T150405")))
				}
				req.Sink.DSN = out
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run, err := svc.Generate(ctx, req)
			if err != nil {
				if run != nil {
					fmt.Printf("Run %s failed: %v\n", run.ID, err)
				}
				return err
			}

			var stats domain.RunStats
			_ = json.Unmarshal(run.Stats, &stats)
			fmt.Printf("Run %s completed successfully\n", run.ID)
			fmt.Printf("Rows: %d (%s)\n", stats.RowsGenerated, stats.StopReason)
			fmt.Printf("Duration: %.2fs\n", stats.DurationSeconds)
			if run.SinkKind == domain.SinkKindCSV {
				fmt.Printf("Output: %s\n", run.SinkDSN)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaID, "schema", "", "Schema ID or name")
	cmd.Flags().StringVar(&schemaPath, "schema-path", "", "Schema file path (inside the schemas directory)")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider (generic|aws|ocp); defaults to the schema's")
	cmd.Flags().StringVar(&start, "start", "", "Report period start (YYYY-MM-DD, RFC3339 or relative like -30d)")
	cmd.Flags().StringVar(&end, "end", "", "Report period end")
	cmd.Flags().Int64VarP(&rows, "rows", "n", cfg.DefaultRows, "Rows to generate")
	cmd.Flags().BoolVar(&untilPeriodEnd, "until-period-end", false, "Generate hourly rows until the report period is exhausted")
	cmd.Flags().StringVar(&sinkKind, "sink", domain.SinkKindCSV, "Sink kind (csv|sqlite|postgres)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "CSV output path")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Database DSN for sqlite/postgres sinks")
	cmd.Flags().StringVar(&table, "table", "", "Destination table for sqlite/postgres sinks (defaults to the schema id)")
	cmd.Flags().StringVar(&pgSchema, "pg-schema", "", "Destination PostgreSQL schema")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "Seed for RNG")
	cmd.Flags().IntVar(&batchSize, "batch-size", cfg.BatchSize, "Rows per sink batch")

	return cmd
}

func openRunRepo() (*runs.SQLiteRepository, error) {
	runRepo := runs.NewSQLiteRepository(runsDBPath)
	if err := runRepo.Init(); err != nil {
		return nil, err
	}
	return runRepo, nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect run history",
	}

	var limit int
	var status string
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo, err := openRunRepo()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			list, err := runRepo.List(limit, status)
			if err != nil {
				return err
			}

			if format == "json" {
				data, _ := json.MarshalIndent(list, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCHEMA\tPROVIDER\tSINK\tSTATUS\tSTARTED")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID[:8], r.SchemaName, r.Provider, r.SinkKind, r.Status, r.StartedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepo, err := openRunRepo()
			if err != nil {
				return err
			}
			defer runRepo.Close()

			run, err := runRepo.Get(args[0])
			if err != nil {
				return err
			}

			view := struct {
				domain.Run `yaml:",inline"`
				Stats      *domain.RunStats `yaml:"stats,omitempty"`
			}{Run: *run}
			if len(run.Stats) > 0 {
				var stats domain.RunStats
				if err := json.Unmarshal(run.Stats, &stats); err == nil {
					view.Stats = &stats
				}
			}

			data, _ := yaml.Marshal(view)
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}
