package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meetpipe/meeting-gateway/internal/config"
	"github.com/meetpipe/meeting-gateway/internal/http/middleware"
	"github.com/meetpipe/meeting-gateway/internal/metrics"
	"github.com/meetpipe/meeting-gateway/internal/outbox"
	"github.com/meetpipe/meeting-gateway/internal/repository"
	"github.com/meetpipe/meeting-gateway/internal/service/meeting"
	"github.com/meetpipe/meeting-gateway/internal/store"
	"github.com/meetpipe/meeting-gateway/internal/ws"
)

type Server struct{ e *echo.Echo }

// NewServer wires the gateway API: collector ingest endpoints, result reads
// from the in-memory store, ClickHouse reports, and the websocket push
// channel.
func NewServer(
	cfg config.Config,
	mysqlDB, clickhouseDB *sqlx.DB,
	rds *redis.Client,
	resultStore *store.ResultStore,
	hub *ws.Hub,
	logger *zap.Logger,
) *Server {
	// repos (MySQL)
	clientsRepo := repository.NewClientsRepository(mysqlDB)
	meetingsRepo := repository.NewMeetingsRepository(mysqlDB)
	messagesRepo := repository.NewMessagesRepository(mysqlDB)
	voiceRepo := repository.NewVoiceSessionsRepository(mysqlDB)
	mediaRepo := repository.NewMediaAssetsRepository(mysqlDB)
	outboxRepo := repository.NewOutboxRepository(mysqlDB)

	// repos (ClickHouse)
	archiveRepo := repository.NewResultArchiveRepository(clickhouseDB)

	// services
	publisher := outbox.NewPublisher(outboxRepo)
	meetingSvc := meeting.New(mysqlDB, meetingsRepo, messagesRepo, voiceRepo, mediaRepo, publisher)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// push channel (auth happens via the subscribe protocol, not API keys)
	wsHandler := ws.NewHandler(hub, cfg.WebSocket, logger)
	e.GET("/ws", wsHandler.Handle)

	// middlewares
	authMW := middleware.APIKeyMiddleware(clientsRepo)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:client:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)

	// collector ingest (writes aggregate + outbox row in one tx)
	v1.POST("/meetings", createMeetingHandler(meetingSvc))
	v1.GET("/meetings/:id", getMeetingHandler(meetingSvc))
	v1.POST("/meetings/:id/start", startMeetingHandler(meetingSvc))
	v1.POST("/meetings/:id/end", endMeetingHandler(meetingSvc))
	v1.POST("/messages", ingestMessageHandler(meetingSvc))
	v1.POST("/voice-sessions", voiceSessionHandler(meetingSvc))
	v1.POST("/media", mediaUploadHandler(meetingSvc))

	// live reads (in-memory store)
	v1.GET("/meetings/:id/summary", getSummaryHandler(resultStore))
	v1.GET("/meetings/:id/transcription", getTranscriptionHandler(resultStore))
	v1.GET("/meetings/:id/action-items", getActionItemsHandler(resultStore))
	v1.GET("/summaries", listSummariesHandler(resultStore))
	v1.GET("/action-items", listActionItemsHandler(resultStore))
	v1.GET("/dashboard/stats", dashboardStatsHandler(resultStore))
	v1.DELETE("/meetings/:id/cache", clearMeetingCacheHandler(resultStore))

	// historical reads (ClickHouse)
	v1.GET("/reports/results", listArchivedResultsHandler(archiveRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
