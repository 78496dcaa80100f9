package signalapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skalibog/signalfeed/internal/config"
	"github.com/skalibog/signalfeed/internal/core"
	"github.com/skalibog/signalfeed/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
	"total_signals": 3,
	"bot_status": "ready",
	"signals": [
		{"id": 5, "symbol": "BTCUSDT", "position": "BUY", "entry": "65000", "stop_loss": "64000",
		 "take_profits": "[66000, 67000]", "risk_reward": "1:2", "source_channel": "crypto",
		 "timestamp": "2025-08-07 10:00:00", "formatted_signal": "BTC BUY"}
	]
}`

func TestClient_FetchSnapshot(t *testing.T) {
	var gotRequestID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/signals", r.URL.Path)
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	client := NewClient(config.APIConfig{BaseURL: srv.URL, SignalsPath: "/api/signals"})
	snapshot, err := client.FetchSnapshot(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, 3, snapshot.TotalSignals)
	assert.Equal(t, models.BotReady, snapshot.BotStatus)
	require.Len(t, snapshot.Signals, 1)
	assert.Equal(t, "66000, 67000", snapshot.Signals[0].TakeProfits.Join(", "))
}

func TestClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "database is locked"}`))
	}))
	defer srv.Close()

	client := NewClientWithURL(srv.URL, nil)
	_, err := client.FetchSnapshot(context.Background())
	require.Error(t, err)

	assert.True(t, errors.Is(err, core.ErrFetchFailed))
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "database is locked")
}

func TestClient_NotFoundWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClientWithURL(srv.URL, nil).FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFetchFailed))
	assert.Contains(t, err.Error(), "404")
}

func TestClient_MalformedBody(t *testing.T) {
	tests := map[string]string{
		"not json":            `<html>oops</html>`,
		"broken take profits": `{"total_signals":1,"signals":[{"id":1,"take_profits":"[1,"}]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewClientWithURL(srv.URL, nil).FetchSnapshot(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrMalformedResponse))
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClientWithURL(url, nil).FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFetchFailed))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClientWithURL(srv.URL, &http.Client{Timeout: 50 * time.Millisecond})
	_, err := client.FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFetchFailed))
}
