package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresmejia3/rollcall/internal/config"
	"github.com/andresmejia3/rollcall/internal/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Cfg is the resolved configuration shared by subcommands
	Cfg *config.Config
	// DB is the optional attendance ledger, nil when no connection string is configured
	DB *store.Store

	cfgFile string
	dbURL   string
	verbose bool
)

const ledgerConnectTimeout = 5 * time.Second

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "rollcall",
	Short:   "Face-recognition attendance register",
	Long:    "Enroll faces from a webcam, mark attendance when known faces are recognised, and export or email the daily register.\nRun without a subcommand for the interactive menu.",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)

		var err error
		Cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// Flag beats config and environment
		if dbURL != "" {
			Cfg.Database.URL = dbURL
		}
		// Use the command's context (which will be cancellable) for the connection
		DB = connectLedger(cmd.Context(), Cfg.Database.URL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			// and we still need to send the "Close" command to the DB.
			DB.Close(context.Background())
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		runMenu(cmd.Context(), os.Stdin, os.Stdout, menuActions())
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadDotEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to YAML config (default: ./rollcall.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for the attendance ledger (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadDotEnv pulls SMTP credentials and friends from a local .env file.
// Variables already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to read .env: %v\n", err)
	}
}

// connectLedger opens the optional attendance ledger. A failed connection is
// logged and the command runs without it.
func connectLedger(ctx context.Context, url string) *store.Store {
	if url == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, ledgerConnectTimeout)
	defer cancel()

	db, err := store.New(ctx, url)
	if err != nil {
		slog.Warn("attendance ledger unavailable, continuing without it", "error", err)
		return nil
	}
	slog.Debug("attendance ledger connected")
	return db
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
