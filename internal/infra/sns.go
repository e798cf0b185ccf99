package infra

import (
	"context"
	"encoding/json"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

const EventOrderCompleted = "order.completed"

// EventPublisher announces domain events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload map[string]interface{}) error
}

type snsPublisher struct {
	client   *sns.Client
	topicARN string
}

func NewSNSPublisher(awsCfg sdkaws.Config, topicARN string) EventPublisher {
	return &snsPublisher{
		client:   sns.NewFromConfig(awsCfg),
		topicARN: topicARN,
	}
}

func (p *snsPublisher) Publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	payload["event_type"] = eventType

	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(p.topicARN),
		Message:  sdkaws.String(string(msgBytes)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(eventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", p.topicARN, err)
	}
	return nil
}

// logPublisher is used when no topic is configured.
type logPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) EventPublisher {
	return &logPublisher{log: log}
}

func (p *logPublisher) Publish(_ context.Context, eventType string, payload map[string]interface{}) error {
	p.log.Debug("event not published, no topic configured", zap.String("event_type", eventType), zap.Any("payload", payload))
	return nil
}
