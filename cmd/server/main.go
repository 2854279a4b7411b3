package main

import (
	"context"
	"flag"
	"os"

	"otcledger/internal/adapter/cache"
	"otcledger/internal/adapter/in_memory"
	"otcledger/internal/adapter/kafka"
	"otcledger/internal/adapter/pg"
	"otcledger/internal/api/http"
	"otcledger/internal/config"
	"otcledger/internal/core"
	"otcledger/internal/domain"
	"otcledger/internal/logger"
	"otcledger/internal/port"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	log := logger.New("server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config", "err", err.Error())
		os.Exit(1)
	}

	ctx := context.Background()

	var repo port.Repository
	if cfg.Postgres.DSN != "" {
		pgRepo, err := pg.NewPgRepo(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Error("connect to Postgres", "err", err.Error())
			os.Exit(1)
		}
		defer pgRepo.Close()
		if err := pgRepo.InitSchema(ctx); err != nil {
			log.Error("init schema", "err", err.Error())
			os.Exit(1)
		}
		repo = pgRepo
	} else {
		log.Warn("no postgres dsn configured, state is in-memory only")
		repo = in_memory.NewMemoryRepo()
	}

	var c port.Cache
	if cfg.Redis.Addr != "" {
		c = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL.Std())
	}

	var pub port.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		pub = kp
	}

	engine := core.NewEngine(domain.Identity(cfg.Operator), repo, c, pub, logger.New("engine"))
	if err := engine.LoadStateFromRepo(ctx); err != nil {
		log.Error("load state", "err", err.Error())
		os.Exit(1)
	}

	server := http.NewHTTPServer(engine, cfg.HTTP.RateLimit.Std())
	log.Info("starting HTTP server", "addr", cfg.HTTP.Addr, "operator", cfg.Operator)
	if err := server.Run(cfg.HTTP.Addr); err != nil {
		log.Error("HTTP server failed", "err", err.Error())
		os.Exit(1)
	}
}
