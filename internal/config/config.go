package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Service holds service-level settings.
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" default:"development"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`

	// IngestMode selects how POST /events reaches the store: "direct"
	// writes synchronously, "queue" publishes to SQS for the consumer.
	IngestMode string `envconfig:"SERVICE_INGEST_MODE" default:"direct"`
}

// SQLite holds the storage adapter settings.
type SQLite struct {
	Path          string `envconfig:"SQLITE_PATH" default:"agent-analytics.db"`
	BusyTimeoutMS int    `envconfig:"SQLITE_BUSY_TIMEOUT_MS" default:"5000"`
	MaxOpenConns  int    `envconfig:"SQLITE_MAX_OPEN_CONNS" default:"1"`
}

// SQS holds the queue settings used by the queued ingest path and the
// consumer.
type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL"`
	Region   string `envconfig:"SQS_REGION" default:"us-east-1"`
}

// Consumer holds the batch-writer settings.
type Consumer struct {
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"500"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
	ReceiverBuffer  int    `envconfig:"CONSUMER_RECEIVER_BUFFER" default:"100"`
}

type Config struct {
	Service  Service
	SQLite   SQLite
	SQS      SQS
	Consumer Consumer
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
