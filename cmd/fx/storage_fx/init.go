package storage_fx

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bookstore/internal/config"
	"bookstore/internal/infra"
	"bookstore/internal/services"
)

var Module = fx.Provide(
	provideAWSConfig, provideObjectStorage, provideEventPublisher, services.NewUploadService)

func provideAWSConfig(cfg config.Config) (sdkaws.Config, error) {
	return infra.LoadAWSConfig(context.Background(), cfg)
}

func provideObjectStorage(awsCfg sdkaws.Config, cfg config.Config) infra.ObjectStorage {
	// custom endpoints (LocalStack, MinIO) need path-style addressing
	return infra.NewS3Storage(awsCfg, cfg.S3Bucket, cfg.PresignExpiry, cfg.AWSEndpoint != "")
}

func provideEventPublisher(awsCfg sdkaws.Config, cfg config.Config, log *zap.Logger) infra.EventPublisher {
	if cfg.OrderEventsARN == "" {
		log.Info("ORDER_EVENTS_TOPIC_ARN not set, order events are only logged")
		return infra.NewLogPublisher(log)
	}
	return infra.NewSNSPublisher(awsCfg, cfg.OrderEventsARN)
}
