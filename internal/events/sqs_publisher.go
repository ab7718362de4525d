package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"parking_marketplace/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSSendAPI là phần của *sqs.Client mà publisher cần.
type SQSSendAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher đẩy catalog event lên một SQS queue cho các consumer bên ngoài.
type SQSPublisher struct {
	sqsClient SQSSendAPI
	queueURL  string
}

func NewSQSPublisher(client SQSSendAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{sqsClient: client, queueURL: queueURL}
}

func (p *SQSPublisher) Publish(ctx context.Context, event domain.CatalogEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("SQSPublisher: marshal event: %w", err)
	}

	out, err := p.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Type)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SQSPublisher: send %s: %w", event.Type, err)
	}
	if out != nil && out.MessageId != nil {
		log.Printf("SQS Publisher: event %s sent as message %s", event.Type, *out.MessageId)
	}
	return nil
}
