package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appcfg "github.com/Falequi/ChatBotsGestionPartidos/internal/config"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/conversation"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/format"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/gestion"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/msgcat"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/obslog"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/server"
	"github.com/Falequi/ChatBotsGestionPartidos/internal/session"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("log init error: %v", err)
	}

	cat, err := msgcat.New(cfg.MsgTemplateDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}
	formatter := format.NewFormatter(cat)

	client := gestion.NewClient(cfg.GestionBaseURL, gestion.WithTimeout(cfg.HTTPTimeout))

	var store session.Store
	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("redis store error: %v", err)
		}
		store = rs
	} else {
		store = session.NewMemoryStore()
	}

	engine := conversation.NewEngine(store, client, formatter)
	srv := server.New(engine, formatter, cfg.TransportPrefix, cfg.CountryCode)

	go func() {
		if err := srv.Listen(cfg.Port); err != nil {
			obslog.L().Fatal("server_error", zap.Error(err))
		}
	}()
	obslog.L().Info("bot_started",
		zap.Int("port", cfg.Port),
		zap.String("gestion_api", cfg.GestionBaseURL),
		zap.Bool("redis_sessions", cfg.RedisURL != ""))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	obslog.L().Info("shutting_down")
	_ = srv.Shutdown()
	_ = store.Close()
	_ = obslog.L().Sync()
}
