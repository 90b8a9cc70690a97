package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/samvad-hq/ltiaas-client/internal/domain"
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

func TestSQSPublisherPublishSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{
		id:       "queue",
		queueURL: "https://example.com/queue",
		client:   client,
		log:      ensureLogger(nil),
	}

	err := pub.Publish(context.Background(), NewLaunchEvent(domain.Launch{ID: "l1", DeploymentID: "dep-1"}))
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://example.com/queue" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["deployment_id"]
	if !ok || aws.ToString(attr.StringValue) != "dep-1" {
		t.Fatalf("deployment_id attribute missing or wrong: %#v", attr)
	}
	if aws.ToString(attr.DataType) != "String" {
		t.Fatalf("DataType should be String, got %#v", attr.DataType)
	}
	if body := aws.ToString(client.input.MessageBody); !strings.Contains(body, `"type":"ltiaas.launch"`) {
		t.Fatalf("MessageBody missing event type: %s", body)
	}
}

func TestSQSPublisherSkipsEmptyAttributes(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "queue", queueURL: "q", client: client, log: ensureLogger(nil)}

	if err := pub.Publish(context.Background(), NewLaunchEvent(domain.Launch{ID: "l1"})); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, ok := client.input.MessageAttributes["deployment_id"]; ok {
		t.Fatalf("empty deployment_id should not be sent as an attribute")
	}
}

func TestSQSPublisherPublishError(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("boom")}
	pub := &sqsPublisher{id: "queue", queueURL: "q", client: client, log: ensureLogger(nil)}

	if err := pub.Publish(context.Background(), NewLaunchEvent(domain.Launch{ID: "l1"})); err == nil {
		t.Fatalf("expected error from Publish")
	}
}
