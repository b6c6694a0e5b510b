package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mealtrack/internal/config"
	"mealtrack/internal/meals"
	"mealtrack/internal/queue"
	"mealtrack/internal/store"
)

// Worker consumes meal-update events and keeps per-date headcounts fresh.
// Only useful with QUEUE_BACKEND=redis; the in-memory queue never leaves the
// API process.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	q := queue.NewRedisQueue(redisClient.Client, "mealtrack:updates")

	svc := meals.NewService(meals.NewRepository(db), nil)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for meal updates...")
	for msg := range messages {
		if msg.Type != "meal_update" {
			continue
		}
		upd, err := msg.Decode()
		if err != nil {
			log.Printf("bad meal update payload: %v", err)
			continue
		}
		if err := svc.Recount(ctx, upd.Date); err != nil {
			log.Printf("recount %s failed: %v", upd.Date, err)
			continue
		}
		log.Printf("headcount refreshed for %s", upd.Date)
	}

	log.Println("worker stopped")
}
