package adminhttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"icehockey/internal/config"
)

type fakeProvider struct{ status Status }

func (f fakeProvider) Status() Status { return f.status }

func TestHealthzRespondsOK(t *testing.T) {
	router := NewRouter(RouterConfig{Admin: config.DefaultAdmin(), Provider: fakeProvider{}})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestStatusReturnsJSONFromProvider(t *testing.T) {
	want := Status{ServerName: "Test Rink", SessionCount: 3, Period: 2, RedScore: 1}
	router := NewRouter(RouterConfig{Admin: config.DefaultAdmin(), Provider: fakeProvider{status: want}})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	var got Status
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	router := NewRouter(RouterConfig{Admin: config.DefaultAdmin(), Provider: fakeProvider{}})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSpectateWebSocketReceivesBroadcastStatus(t *testing.T) {
	hub := NewHub(fakeProvider{status: Status{ServerName: "Spectate Rink"}})
	router := NewRouter(RouterConfig{Admin: config.DefaultAdmin(), Provider: fakeProvider{}, Hub: hub})
	ts := httptest.NewServer(router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/spectate"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("unexpected dial error: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 registered spectator, got %d", hub.ClientCount())
	}

	stop := make(chan struct{})
	go hub.Run(20*time.Millisecond, stop)
	defer close(stop)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("unexpected error reading broadcast: %v", err)
	}

	var got Status
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}
	if got.ServerName != "Spectate Rink" {
		t.Fatalf("unexpected status payload: %+v", got)
	}
}
