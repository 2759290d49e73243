package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/meetpipe/meeting-gateway/internal/config"
	"github.com/meetpipe/meeting-gateway/internal/consumer"
	"github.com/meetpipe/meeting-gateway/internal/db"
	httpSrv "github.com/meetpipe/meeting-gateway/internal/http"
	"github.com/meetpipe/meeting-gateway/internal/kafka"
	"github.com/meetpipe/meeting-gateway/internal/logger"
	"github.com/meetpipe/meeting-gateway/internal/notify"
	"github.com/meetpipe/meeting-gateway/internal/repository"
	"github.com/meetpipe/meeting-gateway/internal/store"
	"github.com/meetpipe/meeting-gateway/internal/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway: HTTP API, websocket push channel, result consumers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger.Init(cfg.Log.Level)

		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		redisClient, err := db.NewRedisClient(db.RedisOpts{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer func() { _ = redisClient.Close() }()

		chDB, err := db.NewClickHouseConnection(db.ClickHouseOpts{
			DSN:             cfg.ClickHouse.DSN,
			MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
			MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
			ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ClickHouse.ConnMaxIdleTime,
			PingTimeout:     cfg.ClickHouse.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() {
			_ = chDB.Close()
		}()

		// fan-out plumbing
		resultStore := store.NewResultStore()
		hub := ws.NewHub()
		notifier := notify.NewNotifier(hub, cfg.WebSocket.BroadcastAll, logger.Log)
		archiveRepo := repository.NewResultArchiveRepository(chDB)
		results := consumer.NewResults(resultStore, notifier, archiveRepo, logger.Log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// one consumer per processed topic, own group member each
		groupID := cfg.Kafka.GroupID
		if groupID == "" {
			groupID = "meetgw-gateway"
		}
		newConsumer := func(topic string) *kafka.Consumer {
			return kafka.NewConsumerFromConfig(kafka.ConsumerConfig{
				Brokers:        cfg.Kafka.Brokers,
				Topic:          topic,
				GroupID:        groupID,
				MinBytes:       cfg.Kafka.MinBytes,
				MaxBytes:       cfg.Kafka.MaxBytes,
				CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
			})
		}

		summaries := newConsumer(cfg.Kafka.Topics.ProcessedSummaries)
		defer summaries.Close()
		transcripts := newConsumer(cfg.Kafka.Topics.ProcessedTranscripts)
		defer transcripts.Close()
		actionItems := newConsumer(cfg.Kafka.Topics.ProcessedActionItems)
		defer actionItems.Close()

		go func() { _ = results.RunSummaries(ctx, summaries) }()
		go func() { _ = results.RunTranscriptions(ctx, transcripts) }()
		go func() { _ = results.RunActionItems(ctx, actionItems) }()

		server := httpSrv.NewServer(cfg, mysqlDB, chDB, redisClient, resultStore, hub, logger.Log)

		errCh := make(chan error, 1)
		go func() {
			log.Printf("starting http on %s", cfg.HTTP.Addr)
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		select {
		case <-ctx.Done():
			log.Printf("signal received, shutting down...")
		case err := <-errCh:
			if err != nil {
				log.Printf("http server exited: %v", err)
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)

		return nil
	},
}
