package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"

	"github.com/marketloop/marketloop/internal/config"
	"github.com/marketloop/marketloop/internal/engine"
	enginev1 "github.com/marketloop/marketloop/internal/engine/engine_v1"
	"github.com/marketloop/marketloop/internal/evaluator"
	"github.com/marketloop/marketloop/internal/executor"
	"github.com/marketloop/marketloop/internal/logger"
	"github.com/marketloop/marketloop/internal/registry"
	"github.com/marketloop/marketloop/internal/report"
	"github.com/marketloop/marketloop/internal/types"
	"github.com/marketloop/marketloop/pkg/dataprovider"
	"github.com/marketloop/marketloop/pkg/watchlist"
)

// runAction wires the registry, provider, evaluator, executor and report
// sinks together and runs the engine until interrupted.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if apiKey := os.Getenv("POLYGON_API_KEY"); apiKey != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = apiKey
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// Load the watchlist into the registry
	instruments, err := watchlist.Load(cmd.String("watchlist"))
	if err != nil {
		return fmt.Errorf("failed to load watchlist: %w", err)
	}

	reg := registry.NewRegistry(log)
	for _, instrument := range instruments {
		if err := reg.Add(instrument); err != nil {
			return fmt.Errorf("failed to register %s: %w", instrument.Symbol, err)
		}
	}

	// Create and initialize the engine
	eng, err := enginev1.NewEvalEngineV1(reg)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	if err := eng.Initialize(cfg.EngineConfig()); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	// Data provider
	var apiKeyArg any
	if cfg.Provider.APIKey != "" {
		apiKeyArg = cfg.Provider.APIKey
	}

	provider, err := dataprovider.NewProvider(dataprovider.ProviderType(cfg.Provider.Type), apiKeyArg)
	if err != nil {
		return fmt.Errorf("failed to create data provider: %w", err)
	}

	if err := eng.SetDataProvider(provider); err != nil {
		return fmt.Errorf("failed to set data provider: %w", err)
	}

	// Evaluator
	eval, err := evaluator.NewThresholdEvaluator(
		decimal.NewFromFloat(cfg.Evaluator.Floor),
		decimal.NewFromFloat(cfg.Evaluator.Ceiling),
		decimal.NewFromFloat(cfg.Evaluator.AlertMargin),
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluator: %w", err)
	}

	if err := eng.SetEvaluator(eval); err != nil {
		return fmt.Errorf("failed to set evaluator: %w", err)
	}

	// Executor
	var exec executor.Executor

	switch cfg.Executor.Type {
	case "webhook":
		exec, err = executor.NewWebhookExecutor(cfg.Executor.WebhookURL)
		if err != nil {
			return fmt.Errorf("failed to create webhook executor: %w", err)
		}
	default:
		exec = executor.NewPaperExecutor(log)
	}

	if err := eng.SetExecutor(exec); err != nil {
		return fmt.Errorf("failed to set executor: %w", err)
	}

	// Report sinks: always log. An explicit duckdb_path pins the report
	// database; otherwise the engine stores it inside the session folder
	// when data_output_path is set.
	if err := eng.AddReportSink(report.NewLogSink(log)); err != nil {
		return fmt.Errorf("failed to add log sink: %w", err)
	}

	if cfg.Report.DuckDBPath != "" {
		store, err := report.NewDuckDBStore(cfg.Report.DuckDBPath)
		if err != nil {
			return fmt.Errorf("failed to open report store: %w", err)
		}
		defer store.Close()

		if err := eng.AddReportSink(store); err != nil {
			return fmt.Errorf("failed to add report store: %w", err)
		}
	}

	if cfg.Report.DataOutputPath != "" {
		if err := eng.SetDataOutputPath(cfg.Report.DataOutputPath); err != nil {
			return fmt.Errorf("failed to set data output path: %w", err)
		}
	}

	// Callbacks
	onStart := engine.OnEngineStartCallback(func(sessionID string, instrumentCount int) error {
		fmt.Printf("Engine started: session=%s instruments=%d\n", sessionID, instrumentCount)

		return nil
	})
	onStop := engine.OnEngineStopCallback(func(err error) {
		if err != nil {
			fmt.Printf("Engine stopped with error: %v\n", err)
		} else {
			fmt.Println("Engine stopped")
		}
	})
	onRunComplete := engine.OnRunCompleteCallback(func(runReport types.RunReport) error {
		fmt.Printf("Run %d: status=%s instruments=%d failed=%d\n",
			runReport.RunID, runReport.Status, len(runReport.Outcomes), runReport.FailedCount())

		return nil
	})
	onError := engine.OnErrorCallback(func(err error) {
		fmt.Printf("Error: %v\n", err)
	})

	callbacks := engine.Callbacks{
		OnEngineStart: &onStart,
		OnEngineStop:  &onStop,
		OnRunComplete: &onRunComplete,
		OnError:       &onError,
	}

	// Stop on interrupt
	runCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cmd.Bool("once") {
		runReport, err := eng.RunOnce(runCtx)
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		fmt.Printf("Run %d: status=%s instruments=%d failed=%d\n",
			runReport.RunID, runReport.Status, len(runReport.Outcomes), runReport.FailedCount())

		return nil
	}

	fmt.Printf("Starting evaluation loop with %d instruments...\n", reg.Len())

	return eng.Run(runCtx, callbacks)
}

// schemaAction prints the engine configuration JSON schema.
func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := engine.GetConfigSchema()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "marketloop",
		Usage: "Periodic evaluation of tradable instruments",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the evaluation loop",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML configuration file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "watchlist",
						Aliases:  []string{"w"},
						Usage:    "Path to the CSV instrument watchlist",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "once",
						Usage: "Execute a single run and exit",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the engine configuration JSON schema",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
