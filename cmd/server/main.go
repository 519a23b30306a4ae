package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suPer8Hu/notechat/internal/ai"
	"github.com/suPer8Hu/notechat/internal/chat"
	"github.com/suPer8Hu/notechat/internal/config"
	"github.com/suPer8Hu/notechat/internal/db"
	"github.com/suPer8Hu/notechat/internal/httpapi"
	"github.com/suPer8Hu/notechat/internal/httpapi/handlers"
	"github.com/suPer8Hu/notechat/internal/httpapi/middleware"
	"github.com/suPer8Hu/notechat/internal/notes"
	"github.com/suPer8Hu/notechat/internal/store/rabbitmq"
	"github.com/suPer8Hu/notechat/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	chatRepo := chat.NewRepo(gdb)
	notesRepo := notes.NewRepo(gdb)
	if err := chatRepo.Migrate(); err != nil {
		log.Fatalf("migrate chat: %v", err)
	}
	if err := notesRepo.Migrate(); err != nil {
		log.Fatalf("migrate notes: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := ai.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}
	chatSvc := chat.NewService(chatRepo, provider, cfg.ChatContextWindowSize)

	var limiter middleware.RateLimiter
	if cfg.RedisAddr != "" {
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rds.Close()
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rds.Ping(pctx); err != nil {
			log.Printf("redis ping failed, rate limiting fails open until it recovers: %v", err)
		}
		cancel()
		limiter = rds
	}

	var jobs handlers.JobPublisher
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbit publisher unavailable, async chat disabled: %v", err)
	} else {
		defer pub.Close()
		jobs = pub
	}

	h := handlers.NewHandler(chatSvc, notes.NewService(notesRepo), jobs)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(cfg, h, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("server listening addr=%s provider=%s window=%d", cfg.HTTPAddr, cfg.AIProvider, chatSvc.WindowSize())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
