package deployments

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/ltiaas-client/pkg/ltiaas"
)

func TestLoadResolvesEnvAndFiltersDisabled(t *testing.T) {
	t.Setenv("COURSE_A_KEY", "key-a")
	path := filepath.Join(t.TempDir(), "deployments.yaml")
	raw := `
deployments:
  - id: course-a
    base_url: https://a.ltiaas.com/
    api_key_env: COURSE_A_KEY
  - id: course-b
    base_url: https://b.ltiaas.com
    api_key: key-b
    enabled: false
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	a, ok := reg.ByID("course-a")
	if !ok || a.APIKey != "key-a" || a.BaseURL != "https://a.ltiaas.com" {
		t.Fatalf("unexpected course-a %#v", a)
	}

	clients := reg.Clients(nil)
	if len(clients) != 1 {
		t.Fatalf("expected 1 enabled client, got %d", len(clients))
	}
	if got := clients["course-a"].IDTokenURL(); got != "https://a.ltiaas.com/api/idtoken" {
		t.Fatalf("IDTokenURL = %q", got)
	}
}

func TestNewRejectsInvalidDeployments(t *testing.T) {
	cases := [][]Deployment{
		nil,
		{{BaseURL: "https://x", APIKey: "k"}},
		{{ID: "a", APIKey: "k"}},
		{{ID: "a", BaseURL: "https://x"}},
		{{ID: "a", BaseURL: "https://x", APIKeyEnv: "LTIAAS_TEST_UNSET_KEY"}},
		{{ID: "a", BaseURL: "https://x", APIKey: "k"}, {ID: "a", BaseURL: "https://y", APIKey: "k"}},
	}
	for i, deps := range cases {
		if _, err := New(deps); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestClientsAppliesPerDeploymentOptions(t *testing.T) {
	reg, err := New([]Deployment{
		{ID: "a", BaseURL: "https://a.ltiaas.com", APIKey: "k"},
		{ID: "b", BaseURL: "https://b.ltiaas.com", APIKey: "k"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var seen []string
	clients := reg.Clients(func(d Deployment) []ltiaas.Option {
		seen = append(seen, d.ID)
		return []ltiaas.Option{ltiaas.WithTimeout(time.Second)}
	})
	if len(clients) != 2 || len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("unexpected clients=%d seen=%v", len(clients), seen)
	}
	if got := clients["b"].MembershipsURL(); got != "https://b.ltiaas.com/api/memberships" {
		t.Fatalf("MembershipsURL = %q", got)
	}
}
