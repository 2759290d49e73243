package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/meetpipe/meeting-gateway/internal/config"
	"github.com/meetpipe/meeting-gateway/internal/db"
	"github.com/meetpipe/meeting-gateway/internal/kafka"
	"github.com/meetpipe/meeting-gateway/internal/logger"
	"github.com/meetpipe/meeting-gateway/internal/metrics"
	"github.com/meetpipe/meeting-gateway/internal/outbox"
	"github.com/meetpipe/meeting-gateway/internal/repository"
)

// relayCmd runs the outbox relay. Deploy exactly one active instance: the
// poller has no row claiming, so two relays would double-send every event.
var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the outbox relay poller",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level)
		metrics.MustRegister(prometheus.DefaultRegisterer)

		// 2) DB connection (MySQL)
		dbx, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer dbx.Close()

		// 3) kafka producer
		producer := kafka.NewProducerFromConfig(kafka.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
		})
		defer producer.Close()

		// 4) relay
		outboxRepo := repository.NewOutboxRepository(dbx)
		router := outbox.NewRouter(cfg.Kafka.Topics)
		relay := outbox.NewRelay(outboxRepo, producer, router, logger.Log)

		// tune knobs
		if cfg.Outbox.PollInterval > 0 {
			relay.PollInterval = cfg.Outbox.PollInterval
		}
		if cfg.Outbox.BatchSize > 0 {
			relay.BatchSize = cfg.Outbox.BatchSize
		}
		if cfg.Outbox.Retention > 0 {
			relay.Retention = cfg.Outbox.Retention
		}
		if cfg.Outbox.SweepInterval > 0 {
			relay.SweepInterval = cfg.Outbox.SweepInterval
		}

		// 5) graceful shutdown
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Printf(">> relay started interval=%s batch=%d retention=%s",
			relay.PollInterval, relay.BatchSize, relay.Retention)

		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
