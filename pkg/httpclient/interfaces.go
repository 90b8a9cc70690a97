package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Implementations send no request body; verbs are passed through unchanged.
type Client interface {
	Do(ctx context.Context, method, url string, headers map[string]string) (Response, error)
}
