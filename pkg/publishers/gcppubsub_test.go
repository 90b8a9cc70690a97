package publishers

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/samvad-hq/ltiaas-client/internal/domain"
)

func TestGCPPubSubPublisherPublishes(t *testing.T) {
	// In-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer admin.Close()
	if _, err := admin.CreateTopic(ctx, "launches"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newGCPPubSubPublisher(ctx, PublisherConfig{
		ID:        "pubsub",
		Type:      TypeGCPPubSub,
		GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "test-project", Topic: "launches"},
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubPublisher: %v", err)
	}
	defer pub.(*gcpPubSubPublisher).Close()

	if err := pub.Publish(ctx, NewLaunchEvent(domain.Launch{ID: "l1", DeploymentID: "dep-1"})); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message on the emulator, got %d", len(msgs))
	}
	if got := msgs[0].Attributes["deployment_id"]; got != "dep-1" {
		t.Fatalf("deployment_id attribute = %q", got)
	}
}
