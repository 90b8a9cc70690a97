package ltiaas

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestStatusErrorSnippetKeepsRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxBodySnippet-1) + "é" + strings.Repeat("b", 100)
	err := &StatusError{Method: "GET", URL: "https://x/api/idtoken", StatusCode: 500, Body: []byte(body)}

	msg := err.Error()
	if !utf8.ValidString(msg) {
		t.Fatalf("Error() is not valid UTF-8: %q", msg[len(msg)-8:])
	}
	if !strings.HasSuffix(msg, strings.Repeat("a", maxBodySnippet-1)) {
		t.Fatalf("expected snippet to end before the split rune, got %q", msg[len(msg)-8:])
	}
}

func TestStatusErrorSnippetShortBody(t *testing.T) {
	err := &StatusError{Method: "GET", URL: "u", StatusCode: 401, Body: []byte(" {\"error\":\"naïve\"} ")}
	if got, want := err.Error(), `ltiaas GET u: unexpected status 401: {"error":"naïve"}`; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if got := (&StatusError{Method: "GET", URL: "u", StatusCode: 502}).Error(); got != "ltiaas GET u: unexpected status 502" {
		t.Fatalf("Error() = %q", got)
	}
}
