package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JamesPrial/pii-leak-test/config"
	clientrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/client"
	staffrepo "github.com/JamesPrial/pii-leak-test/internal/repositories/staff"
	"github.com/JamesPrial/pii-leak-test/pkg/database"
	"github.com/JamesPrial/pii-leak-test/pkg/generate"
	"github.com/JamesPrial/pii-leak-test/pkg/refdata"
)

type generateOptions struct {
	kind        string
	staffCount  int
	clientCount int
	biasState   string
	biasPct     float64
	seed        int64
	out         string
	dataPath    string
	persist     bool
	replace     bool
}

func main() {
	root := &cobra.Command{
		Use:           "piigen",
		Short:         "Generate synthetic PII datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a dataset and write it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts, cmd.Flags().Changed("seed"))
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "both", "Record kind: staff, clients, or both")
	cmd.Flags().IntVar(&opts.staffCount, "staff", 50, "Number of staff records")
	cmd.Flags().IntVar(&opts.clientCount, "clients", 50, "Number of client records")
	cmd.Flags().StringVar(&opts.biasState, "bias-state", "", "State to bias geography toward")
	cmd.Flags().Float64Var(&opts.biasPct, "bias-pct", 0, "Fraction of records drawn from the bias state (0..1)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Seed for reproducible output (default: wall clock)")
	cmd.Flags().StringVar(&opts.out, "out", "dataset.json", "Output file path")
	cmd.Flags().StringVar(&opts.dataPath, "data", "data", "Reference data directory")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "Also write records to the database")
	cmd.Flags().BoolVar(&opts.replace, "replace", false, "Clear existing tables before persisting")

	return cmd
}

func runGenerate(ctx context.Context, opts generateOptions, seedSet bool) error {
	store, err := refdata.Load(opts.dataPath)
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	genOpts := generate.Options{
		Kind:        generate.Kind(opts.kind),
		StaffCount:  opts.staffCount,
		ClientCount: opts.clientCount,
		BiasState:   opts.biasState,
		BiasPct:     opts.biasPct,
	}
	if seedSet {
		genOpts.Seed = &opts.seed
	}

	dataset, err := generate.NewGenerator(store).Generate(genOpts)
	if err != nil {
		return err
	}

	if err := writeDataset(opts.out, dataset); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wrote %d staff and %d client records to %s (seed %d)\n",
		len(dataset.Staff), len(dataset.Clients), opts.out, dataset.Seed)

	if !opts.persist {
		return nil
	}
	return persistDataset(ctx, dataset, opts.replace)
}

// writeDataset writes to a temp file in the target directory and renames it
// into place, so a failed run never leaves a partial dataset behind.
func writeDataset(path string, dataset *generate.Dataset) error {
	data, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".piigen-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move dataset into place: %w", err)
	}
	return nil
}

func persistDataset(ctx context.Context, dataset *generate.Dataset, replace bool) error {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return fmt.Errorf("failed to bind config: %w", err)
	}

	logger := newLogger(cfg)

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName,
		cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode)

	sqlxDB, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	db := database.NewDatabaseInstance(sqlxDB, logger)
	defer db.Close()

	staffRepository := staffrepo.NewRepository(db, logger)
	clientRepository := clientrepo.NewRepository(db, logger)

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if replace {
		if err := staffRepository.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear staff table: %w", err)
		}
		if err := clientRepository.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to clear client table: %w", err)
		}
	}

	if len(dataset.Staff) > 0 {
		if err := staffRepository.BulkCreate(ctx, dataset.Staff); err != nil {
			return fmt.Errorf("failed to persist staff records: %w", err)
		}
	}
	if len(dataset.Clients) > 0 {
		if err := clientRepository.BulkCreate(ctx, dataset.Clients); err != nil {
			return fmt.Errorf("failed to persist client records: %w", err)
		}
	}

	fmt.Fprintf(os.Stdout, "persisted %d staff and %d client records\n",
		len(dataset.Staff), len(dataset.Clients))
	return nil
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	if cfg.PrettyLogs {
		zapLogger, _ = zap.NewDevelopment()
	} else {
		zapLogger, _ = zap.NewProduction()
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}
