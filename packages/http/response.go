package http

import (
	"net/http"
	"time"
)

// InboundResponse is a response exactly as received. Header keys are in
// canonical form; Body holds the complete, undecoded body.
type InboundResponse struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

func (r *InboundResponse) ContentType() string {
	return r.Header.Get("Content-Type")
}

func (r *InboundResponse) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
