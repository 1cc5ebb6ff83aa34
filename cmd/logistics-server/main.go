package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vietcart/logistics/internal/adapters/cache"
	"github.com/vietcart/logistics/internal/adapters/eventbus"
	httpadapter "github.com/vietcart/logistics/internal/adapters/http"
	"github.com/vietcart/logistics/internal/adapters/metrics"
	"github.com/vietcart/logistics/internal/adapters/persistence"
	"github.com/vietcart/logistics/internal/adapters/provider"
	"github.com/vietcart/logistics/internal/adapters/push"
	appdispatch "github.com/vietcart/logistics/internal/application/dispatch"
	apporders "github.com/vietcart/logistics/internal/application/orders"
	"github.com/vietcart/logistics/internal/application/shippingfacade"
	apptracking "github.com/vietcart/logistics/internal/application/tracking"
	"github.com/vietcart/logistics/internal/domain/shared"
	"github.com/vietcart/logistics/internal/infrastructure/config"
	"github.com/vietcart/logistics/internal/infrastructure/database"
	"github.com/vietcart/logistics/internal/infrastructure/logger"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "logistics-server",
		Short: "VietCart logistics and order fulfillment service",
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(serveCmd(), migrateCmd(), resetCountersCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server, consumers, and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)
			log, err := logger.New(&cfg.Logging)
			if err != nil {
				return err
			}
			defer log.Sync()

			clock := shared.NewRealClock()

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer database.Close(db)
			if err := persistence.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			redisClient, err := cache.NewClient(&cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			defer redisClient.Close()
			redisCache := cache.NewRedisCache(redisClient)

			metrics.InitRegistry()
			providerMetrics := metrics.NewProviderMetricsCollector()
			dispatchMetrics := metrics.NewDispatchMetricsCollector()
			httpMetrics := metrics.NewHTTPMetricsCollector()
			for _, c := range []interface{ Register() error }{providerMetrics, dispatchMetrics, httpMetrics} {
				if err := c.Register(); err != nil {
					return fmt.Errorf("metrics: %w", err)
				}
			}

			// Repositories
			orderRepo := persistence.NewOrderRepository(db)
			rewardRepo := persistence.NewRewardRepository(db, clock)
			shipmentRepo := persistence.NewShipmentRepository(db)
			shipperRepo := persistence.NewShipperRepository(db, clock)
			officeRepo := persistence.NewPostOfficeRepository(db)
			eventRepo := persistence.NewTrackingEventRepository(db)
			configRepo := persistence.NewProviderConfigRepository(db)

			// Providers
			vault, err := provider.NewVault(cfg.Providers.EncryptionKey)
			if err != nil {
				return fmt.Errorf("vault: %w", err)
			}
			inhouse := provider.NewInHouse(shipmentRepo, clock)
			registry := provider.NewRegistry(&cfg.Providers, vault, inhouse, clock, log)

			// Event bus
			publisher := eventbus.NewKafkaPublisher(&cfg.Kafka, clock, log)
			defer publisher.Close()

			hub := push.NewHub(log)

			// Usecases
			dispatcher := appdispatch.NewDispatcher(shipperRepo, officeRepo, shipmentRepo, orderRepo, eventRepo, publisher, dispatchMetrics, &cfg.Dispatch, clock, log)
			resetJob, err := appdispatch.NewResetJob(shipperRepo, dispatchMetrics, &cfg.Dispatch, clock, log)
			if err != nil {
				return fmt.Errorf("reset job: %w", err)
			}
			facade := shippingfacade.NewFacade(registry, vault, configRepo, shipmentRepo, orderRepo, eventRepo, redisCache, publisher, providerMetrics, &cfg.Providers, clock, log)
			inventoryGw := eventbus.NewInventoryBridge(publisher)
			paymentGw := eventbus.NewPaymentBridge(publisher)
			orderSvc := apporders.NewService(orderRepo, rewardRepo, shipmentRepo, facade, dispatcher, inventoryGw, paymentGw, eventRepo, publisher, clock, log)
			trackingSvc := apptracking.NewService(shipperRepo, shipmentRepo, orderRepo, eventRepo, redisCache, hub, &cfg.Dispatch, clock, log)

			paymentConsumer := eventbus.NewPaymentConsumer(&cfg.Kafka, orderSvc, log)
			defer paymentConsumer.Close()
			reconciler := eventbus.NewReconciler(shipmentRepo, publisher, clock, 5*time.Minute, 15*time.Minute, log)

			handlers := httpadapter.NewHandlers(orderSvc, facade, trackingSvc, dispatcher, shipperRepo, hub, log)
			router := httpadapter.NewRouter(handlers, &cfg.Server, httpMetrics, log)

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      router,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go resetJob.Run(ctx)
			go reconciler.Run(ctx)
			go func() {
				if err := paymentConsumer.Run(ctx); err != nil && ctx.Err() == nil {
					log.Error("payment consumer stopped", zap.Error(err))
				}
			}()
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()

			<-ctx.Done()
			log.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)
			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := persistence.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func resetCountersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-counters",
		Short: "Force the daily shipper counter reset for every region",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig(configPath)
			log, err := logger.New(&cfg.Logging)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.NewConnection(&cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close(db)

			clock := shared.NewRealClock()
			shipperRepo := persistence.NewShipperRepository(db, clock)
			job, err := appdispatch.NewResetJob(shipperRepo, metrics.NewDispatchMetricsCollector(), &cfg.Dispatch, clock, log)
			if err != nil {
				return err
			}
			job.RunOnce(cmd.Context())
			return nil
		},
	}
}
