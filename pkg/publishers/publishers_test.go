package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := `
publishers:
  - id: hook
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: queue
    type: SQS
    sqs:
      uri: " https://sqs.example.com/queue "
      region: us-east-1
  - id: topic
    type: sns
    sns:
      topic_arn: arn:aws:sns:us-east-1:123:launches
      region: us-east-1
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "queue" || enabled[1].ID != "topic" {
		t.Fatalf("expected queue and topic enabled, got %#v", enabled)
	}
	queue, ok := reg.ByID("queue")
	if !ok || queue.Type != TypeSQS || queue.SQS.QueueURL != "https://sqs.example.com/queue" {
		t.Fatalf("queue config not sanitized: %#v", queue)
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewConfigRegistry([]PublisherConfig{
		{ID: "a", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://x"}},
		{ID: "a", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://y"}},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	invalid := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "q"}},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		{ID: "q2", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "q", Region: "us-east-1", AWSAccess: AWSAccess{AccessKeyID: "AKIA"}}},
		{ID: "g1", Type: TypeGCPPubSub, GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "p"}},
		{Type: TypeHTTP},
	}
	for _, cfg := range invalid {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}

func TestSanitizePublisherConfigDefaults(t *testing.T) {
	cfg := sanitizePublisherConfig(PublisherConfig{
		ID:   " hook ",
		Type: " HTTP ",
		HTTP: &HTTPPublisherConfig{URL: "https://x", Headers: map[string]string{" ": "v", "X-A": " 1 "}},
	})
	if cfg.ID != "hook" || cfg.Type != TypeHTTP || !cfg.EnabledValue() {
		t.Fatalf("unexpected sanitized config %#v", cfg)
	}
	if cfg.HTTP.Method != "POST" || cfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", cfg.HTTP)
	}
	if len(cfg.HTTP.Headers) != 1 || cfg.HTTP.Headers["X-A"] != "1" {
		t.Fatalf("headers not sanitized: %#v", cfg.HTTP.Headers)
	}
}
