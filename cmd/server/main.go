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

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dexhavrelock-sketch/oil-management/internal/admin"
	"github.com/dexhavrelock-sketch/oil-management/internal/config"
	"github.com/dexhavrelock-sketch/oil-management/internal/game"
	"github.com/dexhavrelock-sketch/oil-management/internal/server"
	"github.com/dexhavrelock-sketch/oil-management/internal/storage"
	"github.com/dexhavrelock-sketch/oil-management/internal/telemetry"
)

type serverEnv struct {
	Addr       string `env:"OIL_ADDR" envDefault:":8080"`
	ConfigPath string `env:"OIL_CONFIG" envDefault:"oil_config.yml"`
	DataDir    string `env:"OIL_DATA_DIR" envDefault:"data"`
}

func main() {
	_ = godotenv.Load()

	var se serverEnv
	if err := env.Parse(&se); err != nil {
		log.Fatalf("parse environment: %v", err)
	}

	cfg, err := config.Load(se.ConfigPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("load config: %v", err)
		}
		// No config file: env vars over built-in defaults.
		cfg = &config.Config{Balance: config.FromEnv()}
		cfg.ApplyDefaults()
	}
	if len(cfg.Admin.Credentials) == 0 {
		cfg.Admin = config.AdminFromEnv()
	}

	store, err := storage.OpenFromEnv(se.DataDir)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	telem := telemetry.NewMemoryRepository()
	engine := game.NewEngine(ctx, game.Options{
		Config:    cfg.Balance,
		Store:     store,
		Logger:    log.Default(),
		Telemetry: telem,
	})
	defer engine.Close()

	scheduler := game.NewScheduler(engine, log.Default())
	go scheduler.Run(ctx)

	handler := server.NewHandler(&server.App{
		Engine:    engine,
		Scheduler: scheduler,
		Admin:     admin.NewService(admin.NewStaticCredentials(cfg.Admin), log.Default()),
		Telemetry: telem,
		Logger:    log.Default(),
	})

	srv := &http.Server{Addr: se.Addr, Handler: handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on http://localhost%s", se.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
