package adapters

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/mongonsh/simple-voice-assistant/application/ports/outbound"
	"github.com/mongonsh/simple-voice-assistant/config"
	"github.com/mongonsh/simple-voice-assistant/domain"
)

type dynamoTurnItem struct {
	Role    string `dynamodbav:"role"`
	Content string `dynamodbav:"content"`
}

type dynamoExchangeItem struct {
	ExchangeId   string           `dynamodbav:"exchange_id"`
	Message      string           `dynamodbav:"message"`
	History      []dynamoTurnItem `dynamodbav:"history"`
	Reply        string           `dynamodbav:"reply"`
	AudioId      string           `dynamodbav:"audio_id,omitempty"`
	InputTokens  int              `dynamodbav:"input_tokens"`
	OutputTokens int              `dynamodbav:"output_tokens"`
	CreatedAt    string           `dynamodbav:"created_at"`
	TTL          int64            `dynamodbav:"ttl"`
}

type dynamoExchangeRecorder struct {
	logger       outbound.LoggerPort
	dynamoSvc    dynamodbiface.DynamoDBAPI
	dynamoConfig *config.DynamoConfig
	now          func() time.Time
}

func NewDynamoExchangeRecorder(logger outbound.LoggerPort, dynamoSvc dynamodbiface.DynamoDBAPI, dynamoConfig *config.DynamoConfig) outbound.ExchangeRecorderPort {
	return &dynamoExchangeRecorder{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
		now:          time.Now,
	}
}

func (c *dynamoExchangeRecorder) Record(ctx context.Context, exchange domain.Exchange) error {
	history := make([]dynamoTurnItem, 0, len(exchange.Request.History))
	for _, turn := range exchange.Request.History {
		history = append(history, dynamoTurnItem{Role: string(turn.Role), Content: turn.Content})
	}

	item := dynamoExchangeItem{
		ExchangeId:   exchange.ID,
		Message:      exchange.Request.Message,
		History:      history,
		Reply:        exchange.Reply,
		AudioId:      exchange.AudioID,
		InputTokens:  exchange.Usage.InputTokens,
		OutputTokens: exchange.Usage.OutputTokens,
		CreatedAt:    exchange.CreatedAt.UTC().Format(time.RFC3339),
		TTL:          c.now().Add(time.Duration(c.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to marshal exchange item", map[string]interface{}{
			"exchange_id": exchange.ID,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(c.dynamoConfig.TableName),
	}

	_, err = c.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to save exchange item", map[string]interface{}{
			"exchange_id": exchange.ID,
		})
		return err
	}

	return nil
}

type noopExchangeRecorder struct{}

func NewNoopExchangeRecorder() outbound.ExchangeRecorderPort {
	return noopExchangeRecorder{}
}

func (noopExchangeRecorder) Record(context.Context, domain.Exchange) error {
	return nil
}
