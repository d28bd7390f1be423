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

	"github.com/sir_venger/upload_lite/internal/app/uploadhttp"
	"github.com/sir_venger/upload_lite/internal/config"
	"github.com/sir_venger/upload_lite/internal/usecase/uploadsvc"
)

// main инициализирует Upload API и обеспечивает корректное завершение по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, srv, err := uploadhttp.NewServer(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Фоновый GC брошенных сессий; ядро таймером не владеет.
	stopGC := uploadsvc.StartGC(srv.Uploads, cfg.GCMaxAge(), cfg.GCInterval())
	defer stopGC()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("UPLOAD shutdown error: %v", err)
		}
	}()

	log.Printf("UPLOAD listening on %s (staging=%s, uploads=%s, gc ttl=%dh every=%dm)",
		cfg.ListenAddr, cfg.StagingDir, cfg.UploadDir, cfg.GCMaxAgeHours, cfg.GCIntervalMin)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("UPLOAD final shutdown error: %v", err)
	}
}
