package infra

import (
	"context"
	"fmt"

	"bookstore/internal/config"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// LoadAWSConfig loads the default credential chain. AWS_ENDPOINT points all
// clients at a LocalStack-style endpoint.
func LoadAWSConfig(ctx context.Context, cfg config.Config) (sdkaws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return awsCfg, fmt.Errorf("failed to load aws config: %w", err)
	}

	if cfg.AWSEndpoint != "" {
		awsCfg.BaseEndpoint = sdkaws.String(cfg.AWSEndpoint)
	}

	return awsCfg, nil
}
