// Package main implements the encore command-line interface for running,
// tracing, and benchmarking the MusicFestival query catalog.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TFMV/encore/cmd/encore/config"
	"github.com/TFMV/encore/pkg/catalog"
	"github.com/TFMV/encore/pkg/infrastructure/converter"
	"github.com/TFMV/encore/pkg/infrastructure/metrics"
	"github.com/TFMV/encore/pkg/infrastructure/pool"
	"github.com/TFMV/encore/pkg/present"
	"github.com/TFMV/encore/pkg/repositories"
	"github.com/TFMV/encore/pkg/repositories/mysql"
	"github.com/TFMV/encore/pkg/seed"
	"github.com/TFMV/encore/pkg/services"
	"github.com/TFMV/encore/pkg/trace"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "encore",
	Short: "MusicFestival query benchmark CLI",
	Long: `Encore runs a fixed catalog of analytical queries against the
MusicFestival database, times join strategies under optimizer hints and
session switches, and captures optimizer traces for plan inspection.`,
}

var runCmd = &cobra.Command{
	Use:   "run <query-id>",
	Short: "Run a catalog query and print its result set",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

var traceCmd = &cobra.Command{
	Use:   "trace <query-id>",
	Short: "Run a catalog query with the optimizer trace enabled",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrace,
}

var compareCmd = &cobra.Command{
	Use:   "compare <query-id>",
	Short: "Benchmark a query across join strategies",
	Long: `Compare times the query under each join strategy variant, including the
optimizer switches that force block nested loop and hash joins, and prints
per-strategy timing statistics with a box plot.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

var plansCmd = &cobra.Command{
	Use:   "plans <query-id>",
	Short: "Compare a query against its index-hinted variant",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlans,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the query catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

var exportCmd = &cobra.Command{
	Use:   "export <query-id>",
	Short: "Export a query, its trace, and its result set to files",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the MusicFestival schema and load sample data",
	Long: `Seed drops and recreates every MusicFestival table, then loads a
deterministic sample data set sized by the scale flags. The target database
is created first when it does not exist.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(seedCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().String("host", "localhost", "Database host")
	rootCmd.PersistentFlags().Int("port", 3306, "Database port")
	rootCmd.PersistentFlags().String("user", "root", "Database user")
	rootCmd.PersistentFlags().String("password", "", "Database password")
	rootCmd.PersistentFlags().String("database", "MusicFestival", "Database name")
	rootCmd.PersistentFlags().String("charset", "utf8mb4", "Connection character set")
	rootCmd.PersistentFlags().Duration("connect-timeout", 10*time.Second, "Connection timeout")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("metrics", false, "Enable Prometheus metrics")
	rootCmd.PersistentFlags().String("metrics-address", ":9090", "Metrics server address")

	for _, cmd := range []*cobra.Command{runCmd, traceCmd, compareCmd, plansCmd, exportCmd} {
		cmd.Flags().StringArrayP("params", "p", nil, "Query parameter in declaration order (repeatable)")
	}
	compareCmd.Flags().IntP("iterations", "n", 0, "Timed runs per strategy (default from config)")
	plansCmd.Flags().IntP("iterations", "n", 0, "Timed runs per plan (default from config)")
	exportCmd.Flags().StringP("dir", "d", "", "Output directory (default from config)")

	seedCmd.Flags().Int("festivals", 0, "Festival count (default 8)")
	seedCmd.Flags().Int("days", 0, "Days per festival (default 3)")
	seedCmd.Flags().Int("events", 0, "Events per festival day (default 4)")
	seedCmd.Flags().Int("tickets", 0, "Tickets per event (default 40)")
	seedCmd.Flags().Int("artists", 0, "Artist count (default 60)")
	seedCmd.Flags().Int("bands", 0, "Band count (default 10)")
	seedCmd.Flags().Int("visitors", 0, "Visitor count (default 200)")
	seedCmd.Flags().Int("staff", 0, "Staff member count (default 45)")
	seedCmd.Flags().Int64("rng-seed", 0, "Seed for generated value jitter (default 42)")

	// Only the persistent flags go through viper. Binding per-command flag
	// sets would let the last-bound set shadow the others.
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(fmt.Errorf("failed to bind flags: %w", err))
	}

	viper.SetEnvPrefix("ENCORE")
	viper.AutomaticEnv()

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("encore MusicFestival benchmark CLI\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogging(cfg.LogLevel)

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	params, _ := cmd.Flags().GetStringArray("params")
	result, err := app.queries.Run(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	fmt.Print(present.RenderTable(result))
	fmt.Printf("%d row(s) in %.3fs\n", len(result.Rows), result.ElapsedSeconds())
	return nil
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogging(cfg.LogLevel)

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	params, _ := cmd.Flags().GetStringArray("params")
	result, err := app.queries.RunTraced(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	fmt.Print(present.RenderTable(result))
	fmt.Printf("%d row(s) in %.3fs\n", len(result.Rows), result.ElapsedSeconds())
	fmt.Printf("\nAccess Plan: %s\n\n", trace.ExtractStrategy(result.Trace))
	fmt.Println(trace.Format(result.Trace))
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if iterations, _ := cmd.Flags().GetInt("iterations"); iterations > 0 {
		cfg.Benchmark.Iterations = iterations
	}
	logger := setupLogging(cfg.LogLevel)

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	params, _ := cmd.Flags().GetStringArray("params")
	report, err := app.bench.CompareJoinStrategies(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	fmt.Print(present.RenderReport(report))
	return nil
}

func runPlans(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if iterations, _ := cmd.Flags().GetInt("iterations"); iterations > 0 {
		cfg.Benchmark.PlanIterations = iterations
	}
	logger := setupLogging(cfg.LogLevel)

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	params, _ := cmd.Flags().GetStringArray("params")
	report, err := app.bench.ComparePlans(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}

	fmt.Print(present.RenderReport(report))
	return nil
}

// runCatalog lists the catalog without touching the database.
func runCatalog(cmd *cobra.Command, args []string) error {
	fmt.Print(present.RenderCatalog(catalog.New().List()))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Export.Dir = dir
	}
	logger := setupLogging(cfg.LogLevel)

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	params, _ := cmd.Flags().GetStringArray("params")
	paths, err := app.exports.ExportQuery(cmd.Context(), args[0], params, cfg.Export.Dir)
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogging(cfg.LogLevel)

	size := seed.Size{
		Festivals:       intFlag(cmd, "festivals"),
		DaysPerFestival: intFlag(cmd, "days"),
		EventsPerDay:    intFlag(cmd, "events"),
		TicketsPerEvent: intFlag(cmd, "tickets"),
		Artists:         intFlag(cmd, "artists"),
		Bands:           intFlag(cmd, "bands"),
		Visitors:        intFlag(cmd, "visitors"),
		Staff:           intFlag(cmd, "staff"),
	}
	size.Seed, _ = cmd.Flags().GetInt64("rng-seed")

	// The target database may not exist yet, so the first connection
	// targets the server alone.
	serverParams := dsnParams(cfg)
	serverParams.Database = ""
	serverPool, err := pool.New(pool.Config{
		DSN:                pool.BuildDSN(serverParams),
		MaxOpenConnections: 1,
		MaxIdleConnections: 1,
		ConnectionTimeout:  cfg.Database.ConnectTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	db, err := serverPool.Get(cmd.Context())
	if err == nil {
		err = seed.EnsureDatabase(cmd.Context(), db, cfg.Database.Name)
	}
	if closeErr := serverPool.Close(); closeErr != nil {
		logger.Warn().Err(closeErr).Msg("Error closing server connection")
	}
	if err != nil {
		return err
	}

	dataPool, err := pool.New(pool.Config{
		DSN:                pool.BuildDSN(dsnParams(cfg)),
		MaxOpenConnections: 1,
		MaxIdleConnections: 1,
		ConnectionTimeout:  cfg.Database.ConnectTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := dataPool.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error closing connection pool")
		}
	}()

	handle, err := dataPool.Get(cmd.Context())
	if err != nil {
		return err
	}

	loader := seed.NewLoader(handle, logger)
	if err := loader.Reset(cmd.Context()); err != nil {
		return err
	}
	if err := loader.Load(cmd.Context(), size); err != nil {
		return err
	}

	fmt.Printf("Database %s seeded.\n", cfg.Database.Name)
	return nil
}

// app bundles the wired components behind the database-backed commands.
type app struct {
	logger        zerolog.Logger
	pool          pool.ConnectionPool
	gateway       repositories.QueryGateway
	metricsServer *metrics.MetricsServer
	queries       services.QueryService
	bench         services.BenchmarkService
	exports       services.ExportService
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	var collector metrics.Collector
	var metricsServer *metrics.MetricsServer
	if cfg.Metrics.Enabled {
		prometheusCollector := metrics.NewPrometheusCollector()
		collector = prometheusCollector
		metricsServer = metrics.NewMetricsServer(cfg.Metrics.Address, cfg.Metrics.Path, prometheusCollector.Registry())
		go func() {
			logger.Info().Str("address", cfg.Metrics.Address).Msg("Starting metrics server")
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start metrics server")
			}
		}()
	} else {
		collector = metrics.NewNoOpCollector()
	}

	// Benchmarks time single statements, so the pool stays small.
	connPool, err := pool.New(pool.Config{
		DSN:                pool.BuildDSN(dsnParams(cfg)),
		MaxOpenConnections: 2,
		MaxIdleConnections: 1,
		ConnectionTimeout:  cfg.Database.ConnectTimeout,
	}, logger.With().Str("component", "pool").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	connPool.SetMetricsCollector(collector)

	gateway := mysql.NewQueryGateway(
		connPool,
		converter.New(logger.With().Str("component", "converter").Logger()),
		collector,
		logger.With().Str("component", "gateway").Logger(),
		mysql.WithTraceMaxMemSize(cfg.Trace.MaxMemSize),
	)

	cat := catalog.New()
	metricsAdapter := &serviceMetricsAdapter{collector: collector}

	queries := services.NewQueryService(cat, gateway,
		&serviceLoggerAdapter{logger: logger.With().Str("component", "query_service").Logger()},
		metricsAdapter)
	bench := services.NewBenchmarkService(cat, gateway,
		&serviceLoggerAdapter{logger: logger.With().Str("component", "benchmark_service").Logger()},
		metricsAdapter,
		services.WithSweepIterations(cfg.Benchmark.Iterations),
		services.WithPlanIterations(cfg.Benchmark.PlanIterations))
	exports := services.NewExportService(cat, gateway,
		&serviceLoggerAdapter{logger: logger.With().Str("component", "export_service").Logger()},
		metricsAdapter)

	return &app{
		logger:        logger,
		pool:          connPool,
		gateway:       gateway,
		metricsServer: metricsServer,
		queries:       queries,
		bench:         bench,
		exports:       exports,
	}, nil
}

// Close releases the pinned session, the pool, and the metrics server.
func (a *app) Close() {
	if err := a.gateway.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Error closing gateway session")
	}
	if err := a.pool.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Error closing connection pool")
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Stop(); err != nil {
			a.logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}
}

func dsnParams(cfg *config.Config) pool.DSNParams {
	return pool.DSNParams{
		Host:           cfg.Database.Host,
		Port:           cfg.Database.Port,
		User:           cfg.Database.User,
		Password:       cfg.Database.Password,
		Database:       cfg.Database.Name,
		Charset:        cfg.Database.Charset,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}
}

func intFlag(cmd *cobra.Command, name string) int {
	value, _ := cmd.Flags().GetInt(name)
	return value
}

func loadConfig() (*config.Config, error) {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:           viper.GetString("host"),
			Port:           viper.GetInt("port"),
			User:           viper.GetString("user"),
			Password:       viper.GetString("password"),
			Name:           viper.GetString("database"),
			Charset:        viper.GetString("charset"),
			ConnectTimeout: viper.GetDuration("connect-timeout"),
		},
		Benchmark: config.BenchmarkConfig{
			Iterations:     viper.GetInt("iterations"),
			PlanIterations: viper.GetInt("plan-iterations"),
		},
		Trace: config.TraceConfig{
			MaxMemSize: viper.GetInt64("trace-max-mem-size"),
		},
		Export: config.ExportConfig{
			Dir: viper.GetString("export-dir"),
		},
		Metrics: config.MetricsConfig{
			Enabled: viper.GetBool("metrics"),
			Address: viper.GetString("metrics-address"),
			Path:    viper.GetString("metrics-path"),
		},
		LogLevel: viper.GetString("log-level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setupLogging(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
		zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
			short := file
			for i := len(file) - 1; i > 0; i-- {
				if file[i] == '/' {
					short = file[i+1:]
					break
				}
			}
			return fmt.Sprintf("%s:%d", short, line)
		}
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	// Logs go to stderr so query output on stdout stays pipeable.
	context := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "encore")

	if logLevel == zerolog.DebugLevel {
		context = context.Caller()
	}

	return context.Logger()
}
