package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/program-matcher/internal/logger"
	"github.com/spigell/program-matcher/internal/metrics"
	"github.com/spigell/program-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve match and analysis requests over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", ":8080", "listen address")
	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the program-matcher server", zap.String("version", version))

	logger.Debug(fmt.Sprintf("starting with config: \n %s", renderConfig(config)))

	m := metrics.New()
	a, err := newApplication(ctx, config, logger, m)
	if err != nil {
		logger.Fatal("building the application", zap.Error(err))
	}
	defer a.Close()

	address := ":8080"
	if config.Server != nil && config.Server.Address != "" {
		address = config.Server.Address
	}

	router := server.NewRouter(a.engine, logger,
		server.WithMetricsHandler(m.Handler()),
		server.WithMiddleware(m.Middleware),
	)
	if err := server.ListenAndServe(ctx, address, router.Handler(), logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
