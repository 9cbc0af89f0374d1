package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/jaidee/backend/internal/config"
	"github.com/jaidee/backend/internal/handler"
	"github.com/jaidee/backend/internal/service/activity"
	"github.com/jaidee/backend/internal/service/ai"
	"github.com/jaidee/backend/internal/service/chat"
	emotionservice "github.com/jaidee/backend/internal/service/emotion"
	riskservice "github.com/jaidee/backend/internal/service/risk"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	gateway, err := ai.NewGateway(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize ai gateway: %v", err)
	}

	store, closeStore, err := newHistoryStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize session store: %v", err)
	}
	defer closeStore()

	chatSvc := chat.NewService(gateway, store, chat.Options{
		HistoryLimit: cfg.Chat.HistoryLimit,
		MaxParts:     cfg.Chat.MaxParts,
		MaxTokens:    cfg.AI.ChatMaxTokens,
	})
	riskSvc := riskservice.NewService(gateway, riskservice.Config{
		ExtraPhrases: cfg.Triage.ExtraRiskPhrases,
		MaxTokens:    cfg.AI.ClassifyMaxTokens,
	})
	emotionSvc := emotionservice.NewService(gateway, emotionservice.Config{
		Enabled:   cfg.Triage.EmotionLLMEnabled,
		MaxTokens: cfg.AI.ClassifyMaxTokens,
	})
	if emotionSvc.Enabled() {
		log.Println("Emotion classifier service enabled")
	} else {
		log.Println("Emotion classifier disabled by configuration, using keyword heuristics")
	}
	activitySvc := activity.NewService(gateway, activity.Config{
		MaxTokens: cfg.AI.RecommendMaxTokens,
	})

	if cfg.Session.Store == config.StoreMemory {
		go runJanitor(ctx, chatSvc, cfg.Chat.SessionTTL)
	}

	router := handler.NewRouter(handler.Services{
		Chat:     chatSvc,
		Risk:     riskSvc,
		Emotion:  emotionSvc,
		Activity: activitySvc,
	}, handler.Options{
		Provider:       cfg.AI.Provider,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	startServer(ctx, cfg.Server, router)
}

func newHistoryStore(ctx context.Context, cfg *config.Config) (chat.HistoryStore, func(), error) {
	if cfg.Session.Store != config.StoreRedis {
		log.Println("using in-memory session store")
		return chat.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Session.RedisAddr,
		Password: cfg.Session.RedisPassword,
		DB:       cfg.Session.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Session.RedisAddr, err)
	}

	log.Printf("using redis session store at %s", cfg.Session.RedisAddr)
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Printf("warning: failed to close redis client: %v", err)
		}
	}
	return chat.NewRedisStore(client, cfg.Chat.SessionTTL), closeFn, nil
}

// runJanitor evicts idle in-memory sessions until ctx is done.
func runJanitor(ctx context.Context, chatSvc *chat.Service, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	interval := 10 * time.Minute
	if ttl < interval {
		interval = ttl
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			chatSvc.EvictIdle(now, ttl)
		}
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Jaidee backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
