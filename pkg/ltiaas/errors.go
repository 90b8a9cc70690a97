package ltiaas

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnknownMethod is returned when a RequestMethod outside the supported set is used.
var ErrUnknownMethod = errors.New("ltiaas: unknown request method")

const maxBodySnippet = 512

// StatusError reports a non-2xx response from the LTIaaS API. The body is kept
// verbatim so callers can inspect upstream error payloads.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("ltiaas %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if snippet := bodySnippet(e.Body); snippet != "" {
		msg += ": " + snippet
	}
	return msg
}

// IsStatus reports whether err is a StatusError carrying the given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func bodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
		// Back off to a rune boundary; at most utf8.UTFMax-1 bytes are dropped.
		for i := 0; i < utf8.UTFMax-1 && len(body) > 0 && !utf8.Valid(body); i++ {
			body = body[:len(body)-1]
		}
	}
	return strings.TrimSpace(string(body))
}
