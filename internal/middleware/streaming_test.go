package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamingTimeoutCancelsIdleStream(t *testing.T) {
	done := make(chan error, 1)
	handler := StreamingTimeout(time.Minute, 20*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		done <- r.Context().Err()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/comments/stream", nil))

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("idle stream was not cancelled")
	}
}

func TestStreamingTimeoutWritesKeepStreamAlive(t *testing.T) {
	handler := StreamingTimeout(0, 50*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 5; i++ {
			time.Sleep(20 * time.Millisecond)
			_, err := w.Write([]byte(": ping\n\n"))
			require.NoError(t, err)
			w.(http.Flusher).Flush()
		}
		assert.NoError(t, r.Context().Err())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/comments/stream", nil))

	assert.True(t, rec.Flushed)
	assert.Contains(t, rec.Body.String(), ": ping")
}
