package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/transdom/transdom/config"
	"github.com/transdom/transdom/internal/api/httpapi"
	"github.com/transdom/transdom/internal/broker/kafka"
	"github.com/transdom/transdom/internal/cache/rediscache"
	"github.com/transdom/transdom/internal/services/accounts"
	"github.com/transdom/transdom/internal/services/insurance"
	"github.com/transdom/transdom/internal/services/orders"
	"github.com/transdom/transdom/internal/services/rates"
	"github.com/transdom/transdom/internal/storage/pgstore"
)

type apiApp struct {
	ctx    context.Context
	cancel context.CancelFunc

	opts     apiOpts
	handler  http.Handler
	producer *kafka.Producer
	closeDB  func()
}

func mustBootstrapAPI() *apiApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	httpAddr := cfg.Transdom.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	topic := cfg.Kafka.OrderEventsTopicName
	if topic == "" {
		topic = "order.events"
	}

	sessionTTL := time.Duration(cfg.Transdom.SessionTTLSeconds) * time.Second
	ratesTTL := time.Duration(cfg.Transdom.RatesCacheTTLSeconds) * time.Second
	if ratesTTL <= 0 {
		ratesTTL = 10 * time.Minute
	}

	policy, err := insurance.ParsePolicy(cfg.Transdom.InsurancePolicy)
	if err != nil {
		// The two formulas give different fees; refusing to guess beats
		// quoting the wrong one.
		panic(fmt.Sprintf("insurance config: %v", err))
	}
	insCfg := insurance.DefaultConfig(policy)
	if cfg.Transdom.InsuranceRatePercent != "" {
		insCfg.Rate = decimal.RequireFromString(cfg.Transdom.InsuranceRatePercent)
	}
	if cfg.Transdom.InsuranceMinFee != "" {
		insCfg.MinFee = decimal.RequireFromString(cfg.Transdom.InsuranceMinFee)
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st := mustOpenPostgresWithRetry(connString, 60*time.Second)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)
	limiter := rediscache.NewRateLimiter(redisAddr)

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)

	ratesSvc := rates.New(st, rc, ratesTTL)
	ordersSvc := orders.New(st, producer, nil, orders.Options{
		OrderNoPrefix: cfg.Transdom.OrderNoPrefix,
		EventsTopic:   topic,
	})
	accountsSvc := accounts.New(st, rc, limiter, accounts.Options{
		SessionTTL:         sessionTTL,
		LoginRatePerMinute: cfg.Transdom.LoginRateLimitPerMinute,
	})
	insCalc := insurance.New(insCfg)

	server := httpapi.New(ratesSvc, ordersSvc, accountsSvc, insCalc, cfg.Transdom.APIKey, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &apiApp{
		ctx:      ctx,
		cancel:   cancel,
		opts:     apiOpts{httpAddr: httpAddr},
		handler:  server.Router(),
		producer: producer,
		closeDB:  st.Close,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgstore.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgstore.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *apiApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *apiApp) Run() error {
	return runAPI(a.ctx, a.opts, a.handler)
}
