package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/samvad-hq/ltiaas-client/internal/domain"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSNSPublisherPublishSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
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
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.input.MessageAttributes["event_type"]
	if !ok || aws.ToString(attr.StringValue) != EventTypeLaunch {
		t.Fatalf("event_type attribute missing or wrong: %#v", attr)
	}
	if msg := aws.ToString(client.input.Message); !strings.Contains(msg, `"deployment_id":"dep-1"`) {
		t.Fatalf("Message missing deployment_id: %s", msg)
	}
}

func TestSNSPublisherPublishError(t *testing.T) {
	client := &fakeSNSClient{err: errors.New("boom")}
	pub := &snsPublisher{id: "topic", topicARN: "arn", client: client, log: ensureLogger(nil)}

	if err := pub.Publish(context.Background(), NewLaunchEvent(domain.Launch{ID: "l1"})); err == nil {
		t.Fatalf("expected error from Publish")
	}
}
