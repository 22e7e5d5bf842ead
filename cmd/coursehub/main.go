package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"coursehub/internal/config"
	"coursehub/internal/logger"
	"coursehub/internal/metrics"
	"coursehub/internal/mongo"
	"coursehub/internal/mysql"
	"coursehub/internal/routing"
	"coursehub/pkg/audit"
	"coursehub/pkg/password"
	"coursehub/pkg/token"
	"coursehub/pkg/user"
)

func main() {
	cfg, err := config.Load() // env vars, optionally from START or .env
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logger.Load(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := token.New(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("token manager: %v", err)
	}

	db, err := mysql.LoadDB(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()

	mongoDB, err := mongo.LoadDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			logger.Error("mongo disconnect", "error", err)
		}
	}()

	logins := audit.NewMongoRepo(mongoDB)
	if err := logins.EnsureIndexes(ctx); err != nil {
		logger.Warn("login_events index", "error", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)

	userService := user.NewService(user.NewMySQLRepo(db), password.NewHasher(), tokens, logins, logger)

	r := routing.NewRouter(routing.Deps{
		Users:       userService,
		Logins:      logins,
		Tokens:      tokens,
		Gatherer:    reg,
		Logger:      logger,
		StaticDir:   cfg.StaticDir,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	})

	if err := routing.StartServer(ctx, cfg.Addr(), r, logger); err != nil {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
}
