package publishers

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type gcpPubSubPublisher struct {
	id     string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

// newGCPPubSubPublisher honours PUBSUB_EMULATOR_HOST through the pubsub client.
func newGCPPubSubPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.GCPPubSub == nil {
		return nil, fmt.Errorf("publisher %q missing gcp_pubsub configuration", cfg.ID)
	}
	pc := cfg.GCPPubSub

	var opts []option.ClientOption
	if pc.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(pc.Endpoint))
	}
	if pc.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(pc.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, pc.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubPublisher{
		id:     cfg.ID,
		client: client,
		topic:  client.Topic(pc.Topic),
		log:    ensureLogger(log),
	}, nil
}

func (g *gcpPubSubPublisher) ID() string   { return g.id }
func (g *gcpPubSubPublisher) Type() string { return TypeGCPPubSub }

// Publish sends the event and waits for the server-assigned message id.
func (g *gcpPubSubPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := make(map[string]string)
	for k, v := range evt.attributes() {
		if v != "" {
			attrs[k] = v
		}
	}

	msgID, err := g.topic.Publish(ctx, &pubsub.Message{Data: payload, Attributes: attrs}).Get(ctx)
	if err != nil {
		g.log.ErrorObj("pubsub publisher send failed", "publisher_pubsub_error", map[string]any{
			"publisher_id": g.id,
			"event_id":     evt.ID,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	g.log.DebugObj("pubsub publisher delivered event", "publisher_pubsub_delivery", map[string]any{
		"publisher_id": g.id,
		"event_id":     evt.ID,
		"message_id":   msgID,
	})
	return nil
}

// Close flushes pending messages and releases the client.
func (g *gcpPubSubPublisher) Close() error {
	g.topic.Stop()
	return g.client.Close()
}
