package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRestyClientDoPassesVerbAndHeaders(t *testing.T) {
	var gotMethod, gotAuth string
	var gotBodyLen int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotBodyLen = r.ContentLength
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewRestyClient(0)
	resp, err := client.Do(context.Background(), http.MethodDelete, srv.URL, map[string]string{
		"Authorization": "Bearer K",
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Fatalf("expected DELETE, got %s", gotMethod)
	}
	if gotAuth != "Bearer K" {
		t.Fatalf("unexpected Authorization %q", gotAuth)
	}
	if gotBodyLen > 0 {
		t.Fatalf("expected no request body, got %d bytes", gotBodyLen)
	}
	if resp.StatusCode() != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", resp.StatusCode())
	}
	if string(resp.Body()) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", resp.Body())
	}
}

func TestRestyClientDoSurfacesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := NewRestyClient(0).Do(context.Background(), http.MethodGet, url, nil); err == nil {
		t.Fatalf("expected error for closed server")
	}
}
