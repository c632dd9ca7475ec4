package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds request handling with http.TimeoutHandler. The body written
// on expiry is the usual error envelope with code REQUEST_TIMEOUT. Streaming
// routes use StreamingTimeout instead because TimeoutHandler buffers.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, err := json.Marshal(errorEnvelope("REQUEST_TIMEOUT", "request timed out"))
	if err != nil {
		body = []byte(`{"success":false}`)
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
