// internal/common/aws/sns.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Alert is a topic message with string attributes for subscription filters.
type Alert struct {
	TopicARN   string
	Subject    string
	Message    string
	Attributes map[string]string
}

type Publisher struct {
	client SNSService
}

func NewPublisher(client SNSService) *Publisher {
	return &Publisher{client: client}
}

func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return sns.NewFromConfig(cfg), nil
}

func (p *Publisher) Publish(ctx context.Context, alert Alert) (string, error) {
	input := &sns.PublishInput{
		TopicArn: aws.String(alert.TopicARN),
		Message:  aws.String(alert.Message),
	}
	if alert.Subject != "" {
		input.Subject = aws.String(alert.Subject)
	}
	if len(alert.Attributes) > 0 {
		input.MessageAttributes = make(map[string]types.MessageAttributeValue, len(alert.Attributes))
		for k, v := range alert.Attributes {
			input.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(v),
			}
		}
	}

	out, err := p.client.Publish(ctx, input)
	if err != nil {
		return "", fmt.Errorf("sns publish to %s: %w", alert.TopicARN, err)
	}
	return aws.ToString(out.MessageId), nil
}
