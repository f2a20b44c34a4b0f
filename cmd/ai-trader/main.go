package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SCPrime/ai-Trader-sub001/api"
	"github.com/SCPrime/ai-Trader-sub001/internal/config"
	"github.com/SCPrime/ai-Trader-sub001/pkg/health"
	"github.com/SCPrime/ai-Trader-sub001/pkg/journal"
	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
	"github.com/SCPrime/ai-Trader-sub001/pkg/orders"
	"github.com/SCPrime/ai-Trader-sub001/pkg/proxy"
)

var (
	cfgFile string
	logger  *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ai-trader",
		Short: "Retail trading dashboard client",
		Long:  `A client for the ai-Trader backend proxy: submits dry-run orders with idempotent request IDs, polls backend health, fetches positions with P&L, and keeps a capped local order history`,
		Run:   runDashboard,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newPositionsCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newHistoryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runDashboard(cmd *cobra.Command, args []string) {
	app := mustBootstrap()
	defer app.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the health poller
	poller := health.NewPoller(app.client, app.cfg.Health.IntervalDuration(), app.logger)
	poller.Start(ctx)

	submitter := orders.NewSubmitter(app.client, app.journal, app.logger)

	// Start API server
	apiServer := api.NewServer(submitter, app.journal, poller, app.client, app.logger, fmt.Sprintf("%d", app.cfg.Server.Port))
	go func() {
		if err := apiServer.Start(); err != nil {
			app.logger.WithError(err).Fatal("Failed to start API server")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	app.logger.Info("Dashboard client is running. Press Ctrl+C to stop.")

	<-sigChan
	app.logger.Info("Received shutdown signal")

	// Graceful shutdown
	poller.Stop()
	cancel()

	app.logger.Info("Dashboard client stopped")
}

func newSubmitCmd() *cobra.Command {
	var (
		symbol     string
		side       string
		qty        int64
		orderType  string
		limitPrice float64
		dupTest    bool
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a dry-run order through the backend proxy",
		Run: func(cmd *cobra.Command, args []string) {
			app := mustBootstrap()
			defer app.Close()
			ctx := context.Background()

			submitter := orders.NewSubmitter(app.client, app.journal, app.logger)
			order := orders.NewOrderRequest(symbol, models.OrderSide(side), qty, models.OrderType(orderType), limitPrice)

			result, err := submitter.Submit(ctx, order)
			if err != nil {
				app.logger.WithError(err).Fatal("Order submission failed")
			}
			printJSON(result)

			if dupTest {
				dup, err := submitter.DuplicateTest(ctx)
				if err != nil {
					app.logger.WithError(err).Fatal("Duplicate test failed")
				}
				printJSON(dup)
			}
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "ticker symbol")
	cmd.Flags().StringVar(&side, "side", "buy", "order side: buy or sell")
	cmd.Flags().Int64Var(&qty, "qty", 0, "quantity in whole shares")
	cmd.Flags().StringVar(&orderType, "type", "market", "order type: market or limit")
	cmd.Flags().Float64Var(&limitPrice, "limit-price", 0, "limit price, required for limit orders")
	cmd.Flags().BoolVar(&dupTest, "duplicate-test", false, "re-send the same envelope once more after submitting")

	return cmd
}

func newPositionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "Fetch current positions with unrealized P&L",
		Run: func(cmd *cobra.Command, args []string) {
			app := mustBootstrap()
			defer app.Close()

			positions, err := app.client.Positions(context.Background())
			if err != nil {
				app.logger.WithError(err).Fatal("Failed to fetch positions")
			}
			printJSON(positions)
		},
	}
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe backend health once and print the result",
		Run: func(cmd *cobra.Command, args []string) {
			app := mustBootstrap()
			defer app.Close()

			poller := health.NewPoller(app.client, 0, app.logger)
			printJSON(poller.Check(context.Background()))
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the local order journal, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			app := mustBootstrap()
			defer app.Close()

			records, err := app.journal.History(context.Background())
			if err != nil {
				app.logger.WithError(err).Fatal("Failed to read order history")
			}
			printJSON(records)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the entire local order journal",
		Run: func(cmd *cobra.Command, args []string) {
			app := mustBootstrap()
			defer app.Close()

			if err := app.journal.Clear(context.Background()); err != nil {
				app.logger.WithError(err).Fatal("Failed to clear order history")
			}
			app.logger.Info("Order history cleared")
		},
	})

	return cmd
}

// app holds everything a command needs after configuration is resolved.
type app struct {
	cfg     *config.Config
	logger  *logrus.Logger
	client  proxy.Client
	journal *journal.Journal
	closers []func()
}

func (a *app) Close() {
	for _, c := range a.closers {
		c()
	}
}

func mustBootstrap() *app {
	// Initialize logger
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load .env so local runs pick up credentials without exporting them
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.WithError(err).Error("Invalid log level, using INFO")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	}

	auth, err := buildAuthenticator(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure backend authentication")
	}

	client := proxy.NewHTTPClient(cfg.Proxy.BaseURL, auth, cfg.Proxy.RequestsPerSec, logger)

	repo, closer, err := buildJournalRepository(context.Background(), cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open order journal")
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		journal: journal.New(repo, logger),
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return a
}

func buildAuthenticator(cfg *config.Config) (proxy.Authenticator, error) {
	switch proxy.AuthType(cfg.Proxy.AuthType) {
	case proxy.AuthTypeNone, "":
		return nil, nil
	case proxy.AuthTypeAPIKey:
		if cfg.Proxy.APIToken == "" {
			return nil, fmt.Errorf("auth type apikey requires proxy.api_token")
		}
		return proxy.NewAPIKeyAuthenticator(cfg.Proxy.APIToken), nil
	case proxy.AuthTypeJWT:
		return proxy.NewJWTAuthenticator(cfg.Proxy.APIKeyName, cfg.Proxy.PrivateKeyPEM)
	default:
		return nil, fmt.Errorf("unknown auth type %q", cfg.Proxy.AuthType)
	}
}

func buildJournalRepository(ctx context.Context, cfg *config.Config) (journal.Repository, func(), error) {
	switch cfg.Journal.Backend {
	case "memory":
		return journal.NewMemoryRepository(), nil, nil
	case "file", "":
		return journal.NewFileRepository(cfg.Journal.Path, logger), nil, nil
	case "redis":
		repo := journal.NewRedisRepository(cfg.Journal.Redis.Addr, cfg.Journal.Redis.Password, cfg.Journal.Redis.DB)
		return repo, func() { repo.Close() }, nil
	case "postgres":
		repo, err := journal.NewPostgresRepository(ctx, cfg.Journal.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown journal backend %q", cfg.Journal.Backend)
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(data))
}
