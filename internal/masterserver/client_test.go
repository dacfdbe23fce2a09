package masterserver

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"icehockey/internal/config"
)

func TestParseMasterAddrValid(t *testing.T) {
	addr, err := parseMasterAddr("203.0.113.7 27585")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.IP.String() != "203.0.113.7" || addr.Port != 27585 {
		t.Fatalf("unexpected addr: %v", addr)
	}
}

func TestParseMasterAddrRejectsMalformed(t *testing.T) {
	cases := []string{"", "203.0.113.7", "203.0.113.7 27585 extra", "not-an-ip 27585", "203.0.113.7 notaport"}
	for _, c := range cases {
		if _, err := parseMasterAddr(c); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestNewReturnsNilWhenDisabled(t *testing.T) {
	c := New(config.MasterServerConfig{Enabled: false}, 27585)
	if c != nil {
		t.Fatal("expected nil client when disabled")
	}
	// Must tolerate Run on a nil receiver, same no-op pattern as replay.Writer.
	c.Run(context.Background())
}

func TestResolveStoresMasterOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("127.0.0.1 9999\n"))
	}))
	defer srv.Close()

	cfg := config.MasterServerConfig{Enabled: true, ResolveURL: srv.URL, HeartbeatPeriod: 1, BurstCount: 1, ReresolvePeriod: 1}
	c := New(cfg, 27585)

	if !c.resolve(context.Background()) {
		t.Fatal("expected resolve to succeed")
	}
	addr := c.masterAddr()
	if addr == nil || addr.Port != 9999 {
		t.Fatalf("expected resolved master on port 9999, got %v", addr)
	}
}

func TestResolveFailsOnBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("garbage"))
	}))
	defer srv.Close()

	cfg := config.MasterServerConfig{Enabled: true, ResolveURL: srv.URL, ReresolvePeriod: 1}
	c := New(cfg, 27585)

	if c.resolve(context.Background()) {
		t.Fatal("expected resolve to fail on malformed body")
	}
	if c.masterAddr() != nil {
		t.Fatal("expected no master stored after failed resolve")
	}
}

func TestBurstSendsHeartbeatsToMaster(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		t.Fatalf("failed to open test listener: %v", err)
	}
	defer listener.Close()

	cfg := config.MasterServerConfig{HeartbeatPeriod: 0, BurstCount: 2}
	c := &Client{cfg: cfg}

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		t.Fatalf("failed to open sender socket: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	target := listener.LocalAddr().(*net.UDPAddr)
	ok := c.burst(ctx, conn, target)
	if !ok {
		t.Fatal("expected burst to report at least one successful send")
	}

	listener.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 16)
	n, _, err := listener.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("expected to receive a heartbeat: %v", err)
	}
	if string(buf[:n]) != "Hock " {
		t.Fatalf("expected %q payload, got %q", "Hock ", buf[:n])
	}
}
