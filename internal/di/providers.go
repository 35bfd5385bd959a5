package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"RoastGate/internal/analytics"
	"RoastGate/internal/domain/repository"
	"RoastGate/internal/handler/api"
	"RoastGate/internal/recorder"
	"RoastGate/internal/upstream"
	pkgch "RoastGate/pkg/clickhouse"
	"RoastGate/pkg/config"
	xhttp "RoastGate/pkg/http"
	pkgkafka "RoastGate/pkg/kafka"
	"RoastGate/pkg/logger"
	"RoastGate/pkg/metrics"
	"RoastGate/pkg/queue"
	"RoastGate/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideUpstreamClient creates the HTTP client used for backend calls.
func ProvideUpstreamClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Upstream.Timeout))
}

// ProvideForwarder creates the backend forwarder.
func ProvideForwarder(
	lgr *logger.Logger,
	client *xhttp.Client,
	m repository.Metrics,
	cfg *config.Config,
) *upstream.Forwarder {
	return upstream.NewForwarder(lgr, client, cfg.Upstream.BaseURL, m)
}

// kafkaLogPublisher adapts the producer to the logger's Publisher port.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideEventSink selects the analytics event sink from configuration.
func ProvideEventSink(cfg *config.Config, lgr *logger.Logger) (repository.EventSink, error) {
	switch cfg.Events.Sink {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		lgr.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "error-logs",
			Publisher:      kafkaLogPublisher{producer},
		})
		return recorder.NewKafkaSink(producer, cfg.Events.Topic), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		q := queue.NewRedisPublisher(lgr, client)
		if err := q.Start(); err != nil {
			return nil, fmt.Errorf("redis queue: %w", err)
		}
		// With a queue available, ship aggregated error logs through it too.
		lgr.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "error-logs",
			Publisher:      q,
		})
		return recorder.NewQueueSink(q), nil

	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sink, err := recorder.NewClickHouseSink(ctx, client)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return sink, nil

	default:
		return recorder.NewLogSink(lgr), nil
	}
}

// ProvideSnapshotSource creates the analytics read aggregator over the
// backend's analytics endpoint.
func ProvideSnapshotSource(lgr *logger.Logger, client *xhttp.Client, cfg *config.Config) repository.SnapshotSource {
	store := analytics.NewUpstreamStore(client, cfg.Upstream.BaseURL)
	return analytics.NewAggregator(lgr, store)
}

// ProvideIngestor creates the analytics event ingestor.
func ProvideIngestor(
	lgr *logger.Logger,
	sink repository.EventSink,
	m repository.Metrics,
	cfg *config.Config,
) *analytics.Ingestor {
	return analytics.NewIngestor(lgr, sink, m, cfg.Analytics.APISecret)
}

// ProvideHandler creates the gateway's HTTP handler.
func ProvideHandler(
	lgr *logger.Logger,
	forwarder *upstream.Forwarder,
	snapshots repository.SnapshotSource,
	ingestor *analytics.Ingestor,
) xhttp.Handler {
	return api.NewGatewayHandler(lgr, forwarder, snapshots, ingestor)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *logger.Logger,
	handler xhttp.Handler,
	sink repository.EventSink,
) *server.App {
	return server.New(cfg, lgr, handler, sink)
}
