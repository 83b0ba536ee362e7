// Package main runs the chat hub HTTP server with WebSocket and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chaines-io/chat-hub/config"
	"github.com/chaines-io/chat-hub/internal/chat"
	"github.com/chaines-io/chat-hub/internal/middleware"
	"github.com/chaines-io/chat-hub/internal/realtime"
	"github.com/chaines-io/chat-hub/internal/streams"
	"github.com/chaines-io/chat-hub/pkg/queue"
	"github.com/chaines-io/chat-hub/pkg/redis"
	"github.com/chaines-io/chat-hub/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	backend, err := chat.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer backend.Close()

	gateway := chat.NewGateway(backend.Store, chat.Limits{
		MaxImageEncoded: cfg.Chat.MaxImageEncoded,
		MaxFileEncoded:  cfg.Chat.MaxFileEncoded,
	}, logger)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	hubOpts := realtime.Options{Welcome: cfg.Chat.Welcome}

	// Broadcast session log (postgres only)
	var streamHandler *streams.Handler
	if backend.Pool != nil {
		streamRepo := streams.NewRepository(backend.Pool)
		if n, err := streamRepo.CloseDangling(ctx); err != nil {
			logger.Warn("close dangling broadcast sessions", zap.Error(err))
		} else if n > 0 {
			logger.Info("closed dangling broadcast sessions", zap.Int64("count", n))
		}
		recorder := streams.NewRecorder(streamRepo, 1024, logger)
		go recorder.Run(bgCtx)
		hubOpts.Recorder = recorder
		streamHandler = streams.NewHandler(streamRepo, logger)
	}

	// Redis: cross-instance chat fan-out and the archive queue
	var (
		jobQueue *queue.Queue
		pubsub   *realtime.RedisPubSub
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		pubsub = realtime.NewRedisPubSub(rdb, logger)
		hubOpts.Publisher = pubsub
		jobQueue = queue.NewQueue(rdb, logger)
	}

	hub := realtime.NewHub(logger, gateway, hubOpts)
	if pubsub != nil {
		stop, err := pubsub.Subscribe(bgCtx, hub.BroadcastRaw)
		if err != nil {
			logger.Fatal("redis subscribe", zap.Error(err))
		}
		defer stop()
	}

	var archiver chat.ArchiveEnqueuer
	if jobQueue != nil {
		archiver = jobQueue
		if cfg.Archive.IntervalMinutes > 0 {
			go scheduleArchives(bgCtx, jobQueue, time.Duration(cfg.Archive.IntervalMinutes)*time.Minute, logger)
		}
	}
	chatHandler := chat.NewHandler(gateway, archiver, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger, cfg.Server.WSPath))

	router.GET("/healthz", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok", "connections": hub.ConnectionCount()})
	})
	if cfg.Server.IndexFile != "" {
		router.StaticFile("/", cfg.Server.IndexFile)
	}

	api := router.Group("/api")
	{
		api.GET("/messages", chatHandler.List)
		api.POST("/archive", chatHandler.Archive)
		api.GET("/ice-servers", realtime.ICEServersHandler(realtime.ParseICEServers(cfg.WebRTC.ICEUrls)))
		if streamHandler != nil {
			api.GET("/broadcasts", streamHandler.List)
		}
	}

	router.GET(cfg.Server.WSPath, realtime.ServeWs(hub, logger, realtime.ClientConfig{
		ReadLimit:  cfg.Realtime.ReadLimit,
		SendBuffer: cfg.Realtime.SendBuffer,
	}))

	// WriteTimeout is left unset: it would cut long-lived socket connections.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("db_driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	bgCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// scheduleArchives enqueues a snapshot job every interval until ctx is done.
func scheduleArchives(ctx context.Context, q *queue.Queue, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := q.EnqueueArchive(ctx, "scheduled"); err != nil {
				logger.Error("enqueue scheduled archive", zap.Error(err))
			}
		}
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
