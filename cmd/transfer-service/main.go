package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/wallet-transfer-service/internal/shared/cache"
	"github.com/radieske/wallet-transfer-service/internal/shared/config"
	"github.com/radieske/wallet-transfer-service/internal/shared/db"
	kshared "github.com/radieske/wallet-transfer-service/internal/shared/kafka"
	"github.com/radieske/wallet-transfer-service/internal/shared/logger"
	"github.com/radieske/wallet-transfer-service/internal/shared/metrics"
	tcache "github.com/radieske/wallet-transfer-service/internal/transfer-service/cache"
	thttp "github.com/radieske/wallet-transfer-service/internal/transfer-service/http"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/ledger"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/producer"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/repo"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/retention"
	"github.com/radieske/wallet-transfer-service/internal/transfer-service/service"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	ctx := context.Background()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	if err := db.EnsureSchema(ctx, pg); err != nil {
		log.Fatal("schema", zap.Error(err))
	}

	// Redis
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}

	// Kafka writers (topic transfer_completed + DLQ pra publicação que falhou)
	writer := kshared.NewWriter(cfg.KafkaBrokers, cfg.TopicTransferCompleted)
	defer writer.Close()
	dlqWriter := kshared.NewWriter(cfg.KafkaBrokers, cfg.TopicTransferCompletedDLQ)
	defer dlqWriter.Close()

	// deps
	repository := repo.NewPostgres(pg)
	statusCache := tcache.NewStatus(rdb, cfg.RetentionMaxAge, log)
	publ := producer.NewKafkaPublisher(writer, dlqWriter, log)

	lcli := ledger.New(cfg.LedgerURL, cfg.LedgerTimeout)
	guarded := ledger.NewBreaker(lcli, log)

	svc := service.New(log, repository, guarded, lcli, statusCache, publ)

	// Sweeper de retenção roda em background
	sweeper := retention.NewSweeper(log, repository, cfg.RetentionMaxAge, cfg.RetentionSweepInterval)
	go sweeper.Run(ctx)

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	// HTTP público
	api := thttp.NewServer(log, svc)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	log.Info("transfer-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
