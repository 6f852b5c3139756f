package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"foodgame/internal/api"
	"foodgame/internal/config"
	"foodgame/internal/engine"
	"foodgame/internal/events"
	"foodgame/internal/generation"
	"foodgame/internal/metrics"
	"foodgame/internal/models"
	"foodgame/internal/random"
	"foodgame/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	envFile     string
	port        int
	metricsPort int
)

var rootCmd = &cobra.Command{
	Use:   "foodgame",
	Short: "Restaurant game server with LLM generated customers, menus and consequences",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, envFile)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
		}
		if cmd.Flags().Changed("metrics-port") {
			cfg.Server.MetricsPort = metricsPort
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err := cfg.Log.NewLogger(os.Stderr)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Path to .env file")
	rootCmd.Flags().IntVar(&port, "port", 8000, "API server port")
	rootCmd.Flags().IntVar(&metricsPort, "metrics-port", 9090, "Metrics server port (0 disables it)")
	rootCmd.AddCommand(playCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// serve builds the game stack and runs the API and metrics servers until ctx is done
func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	provider, err := models.NewModelRegistry().GetProvider(cfg.LLM.ProviderType(), cfg.LLM.ProviderConfig())
	if err != nil {
		return err
	}
	if provider == nil {
		logger.Warn("no LLM provider configured, every generator will use its fallback")
	}

	seed := cfg.Game.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}
	dice := random.NewDice(seed)
	logger.WithField("seed", seed).Info("random source seeded")

	collector := metrics.NewMetricsCollector()
	hub := events.NewHub(logger)

	genOpts := generation.Options{
		Provider: provider,
		Timeout:  cfg.LLM.Timeout,
		Logger:   logger,
		Recorder: collector,
	}
	profiles := generation.NewProfileGenerator(genOpts, generation.NewFakerNames(dice))

	menuOpts := genOpts
	menuOpts.CacheSize = cfg.Game.MenuCacheSize
	menus, err := generation.NewMenuGenerator(menuOpts)
	if err != nil {
		return err
	}

	consequenceOpts := genOpts
	consequenceOpts.CacheSize = cfg.Game.ConsequenceCacheSize
	consequences, err := generation.NewConsequenceGenerator(consequenceOpts)
	if err != nil {
		return err
	}

	game := engine.New(store.NewGameStore(), profiles, menus, consequences,
		engine.WithDice(dice),
		engine.WithPublisher(hub),
		engine.WithRecorder(collector),
		engine.WithLogger(logger),
		engine.WithViolationChance(cfg.Game.ViolationChance),
		engine.WithStartingBalances(cfg.Game.StartingMoney, cfg.Game.StartingReputation),
		engine.WithLeaderboardSize(cfg.Game.LeaderboardSize),
	)

	gameAPI := api.NewGameAPI(game, api.Options{
		Logger:            logger,
		Metrics:           collector,
		Hub:               hub,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	})

	servers := []*http.Server{{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: gameAPI.Router,
	}}
	if cfg.Server.MetricsPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		servers = append(servers, &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
			Handler: mux,
		})
	}

	errc := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.WithField("addr", srv.Addr).Info("starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("server %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down servers")
	case runErr = <-errc:
		logger.WithError(runErr).Error("server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).WithField("addr", srv.Addr).Error("shutdown failed")
		}
	}
	return runErr
}
