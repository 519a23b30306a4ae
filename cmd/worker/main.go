package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/notechat/internal/ai"
	"github.com/suPer8Hu/notechat/internal/chat"
	"github.com/suPer8Hu/notechat/internal/config"
	"github.com/suPer8Hu/notechat/internal/db"
	"github.com/suPer8Hu/notechat/internal/store/rabbitmq"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	repo := chat.NewRepo(gdb)
	if err := repo.Migrate(); err != nil {
		log.Fatalf("migrate chat: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := ai.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}
	svc := chat.NewService(repo, provider, cfg.ChatContextWindowSize)

	//  strict concurrency control
	concurrency := cfg.WorkerConcurrency

	consumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, cfg.RabbitQueue, concurrency)
	if err != nil {
		log.Fatalf("rabbit consumer: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	log.Printf("worker started, queue=%s concurrency=%d provider=%s", cfg.RabbitQueue, concurrency, cfg.AIProvider)

	jobTimeout := cfg.AITimeout + 30*time.Second

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				jobID, err := rabbitmq.DecodeJob(d.Body)
				if err != nil {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				// shutdown drains in-flight jobs instead of cancelling them
				jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), jobTimeout)
				err = svc.ProcessJob(jctx, jobID)
				cancel()
				if err != nil {
					log.Printf("worker=%d job %s failed cost=%s err=%v", workerID, jobID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}
				if cost := time.Since(start); cost > 2*time.Second {
					log.Printf("job_timing worker=%d job=%s total=%s", workerID, jobID, cost)
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed job=%s err=%v", workerID, jobID, err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				close(jobs)
				wg.Wait()
				return
			}
			jobs <- d
		}
	}
}
