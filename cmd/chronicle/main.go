package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/westeroschronicles/chronicle/internal/auth"
	"github.com/westeroschronicles/chronicle/internal/config"
	httpapp "github.com/westeroschronicles/chronicle/internal/http"
	"github.com/westeroschronicles/chronicle/internal/rate"
	"github.com/westeroschronicles/chronicle/internal/store/sqlite"
	"github.com/westeroschronicles/chronicle/internal/vote"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("open db", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer st.Close()

	authSvc := auth.NewService(st, cfg.TokenSecret, cfg.TokenTTL)
	ledger := vote.NewLedger(st)
	limiter := rate.NewMemory()

	server := httpapp.NewServer(st, authSvc, ledger, limiter, cfg, log)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("chronicle listening", zap.String("addr", cfg.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}
