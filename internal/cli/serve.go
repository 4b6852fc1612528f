package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tizendotnet/netcore-jenkins/internal/config"
	"github.com/tizendotnet/netcore-jenkins/internal/handlers"
	"github.com/tizendotnet/netcore-jenkins/internal/logger"
	"github.com/tizendotnet/netcore-jenkins/internal/metrics"
	"github.com/tizendotnet/netcore-jenkins/internal/routes"
	"github.com/tizendotnet/netcore-jenkins/internal/trigger"
)

var serveCmd = &cobra.Command{
	Use:   "serve <jenkins-token>",
	Short: "Run the webhook server",
	Long: `Starts the HTTP server that accepts MyGet webhooks on /webhook/<route>.
The Jenkins API token is taken from the first argument.`,
	Args: cobra.ExactArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg.Jenkins.Token = args[0]
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logger.L()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	// Interrupt and SIGTERM cancel startup retries as well as the running server
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Jenkins
	jenkins := trigger.NewClient(&cfg.Jenkins, m, log)
	if err := jenkins.Connect(ctx); err != nil {
		if ctx.Err() != nil {
			logger.Info("Interrupted while connecting to Jenkins")
			return nil
		}
		logger.Fatal("Failed to connect to Jenkins",
			zap.String("url", cfg.Jenkins.URL),
			zap.Error(err),
		)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:               "netcore-jenkins",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	webhookHandler := handlers.NewWebhookHandler(jenkins, &cfg.Jenkins, &cfg.Webhook, m, log)
	healthHandler := handlers.NewHealthHandler(jenkins, log)
	routes.SetupRoutes(app, cfg.Webhook.WebhookPath(), webhookHandler, healthHandler, reg)

	// Start server in a goroutine
	go func() {
		addr := cfg.Server.Address()
		logger.Info("Server starting",
			zap.String("address", addr),
			zap.String("webhook_path", cfg.Webhook.WebhookPath()),
			zap.String("jenkins_job", cfg.Jenkins.Job),
		)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	<-ctx.Done()
	stop()

	logger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}

	// Let in-flight Jenkins calls finish so their outcome is logged
	waitCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := jenkins.Wait(waitCtx); err != nil {
		logger.Warn("Jenkins calls still in flight at shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}
