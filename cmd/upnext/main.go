package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"upnext/internal/auth"
	"upnext/internal/clock"
	"upnext/internal/config"
	"upnext/internal/db"
	"upnext/internal/event"
	httpx "upnext/internal/http"
	"upnext/internal/kv"
	"upnext/internal/notify"
)

func main() {
	cfg, _ := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal(err)
	}

	var kvStore kv.Store = &kv.Postgres{DB: gdb}
	if cfg.RedisAddr != "" {
		kvStore = kv.NewRedis(cfg.RedisAddr)
	}

	clk := clock.System{}
	queue := &notify.Queue{DB: gdb}
	coord := &notify.Coordinator{Scheduler: queue, Clock: clk}
	store := event.New(kvStore, coord, clk)

	ctx, cancel := context.WithCancel(context.Background())

	coord.EnsureReady(ctx)
	if _, err := store.Load(ctx); err != nil {
		log.Printf("load events: %v\n", err)
	}

	// dispatcher
	dispatcher := &notify.Dispatcher{
		ID:       "dispatcher-1",
		Queue:    queue,
		Sink:     notify.LogSink{},
		Interval: cfg.DispatchInterval,
	}
	go dispatcher.Run(ctx)

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	r := httpx.NewRouter(cfg, store, kvStore, clk, jwtSvc)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s\n", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
