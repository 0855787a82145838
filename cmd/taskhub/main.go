package main

import (
	"log"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"taskhub/internal/config"
	"taskhub/internal/logger"
	"taskhub/internal/metrics"
	"taskhub/internal/mongo"
	"taskhub/internal/routing"
	"taskhub/pkg/account"
	"taskhub/pkg/mailer"
	"taskhub/pkg/middleware"
	"taskhub/pkg/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config:", err)
	}

	db := mongo.LoadDB(cfg)

	logger := logger.Load()

	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)

	var notifier mailer.Notifier = mailer.Noop{}
	if cfg.SendGridKey != "" {
		notifier = mailer.NewSendGrid(cfg.SendGridKey, cfg.MailFrom)
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler(registry)).Methods("GET")

	api := r.NewRoute().Subrouter()
	api.Use(middleware.Panic)
	api.Use(middleware.Logging(logger))
	api.Use(middleware.Metrics(collector))
	api.Use(middleware.Auth(codec, account.NewMongoRepo(db)))

	routing.InitRoutes(api, db, codec, notifier, cfg, logger)
	routing.StartServer(cfg.Addr, r)
}
