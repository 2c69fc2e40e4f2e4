package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/samvad-hq/envelope-client/pkg/probes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-456")}, nil
}

func failedEvent() Event {
	return NewEvent("orders", "Orders", probes.Outcome{ProbeID: "orders", Success: false, Message: "Name is required", HTTPStatus: 400})
}

func TestSQSPublisherSendsAttributes(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "queue", queueURL: "https://example.com/queue", client: client, log: noopLogger{}}

	require.NoError(t, pub.Publish(context.Background(), failedEvent()))
	require.NotNil(t, client.input)
	assert.Equal(t, "https://example.com/queue", aws.ToString(client.input.QueueUrl))

	attr := client.input.MessageAttributes["probe_id"]
	assert.Equal(t, "String", aws.ToString(attr.DataType))
	assert.Equal(t, "orders", aws.ToString(attr.StringValue))
	assert.Equal(t, "false", aws.ToString(client.input.MessageAttributes["healthy"].StringValue))

	var body Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &body))
	assert.Equal(t, "Name is required", body.Outcome.Message)
}

func TestSQSPublisherError(t *testing.T) {
	pub := &sqsPublisher{id: "queue", client: &fakeSQSClient{err: errors.New("boom")}, log: noopLogger{}}
	err := pub.Publish(context.Background(), failedEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSNSPublisherSendsAttributes(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{id: "topic", topicARN: "arn:aws:sns:::topic", client: client, log: noopLogger{}}

	require.NoError(t, pub.Publish(context.Background(), failedEvent()))
	require.NotNil(t, client.input)
	assert.Equal(t, "arn:aws:sns:::topic", aws.ToString(client.input.TopicArn))
	assert.Equal(t, "orders", aws.ToString(client.input.MessageAttributes["probe_id"].StringValue))
	assert.Contains(t, aws.ToString(client.input.Message), `"probe_id":"orders"`)
}

func TestSNSPublisherError(t *testing.T) {
	pub := &snsPublisher{id: "topic", client: &fakeSNSClient{err: errors.New("throttled")}, log: noopLogger{}}
	assert.Error(t, pub.Publish(context.Background(), failedEvent()))
}

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	cfg, err := loadAWSConfig(context.Background(), "eu-west-1", &AWSCredentials{AccessKeyID: "AKIA", SecretAccessKey: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", creds.AccessKeyID)
}
