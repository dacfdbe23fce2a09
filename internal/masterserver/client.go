// Package masterserver implements the heartbeat burst and re-resolution
// client described in §6: while a master is known, send "Hock " to it every
// HeartbeatPeriod seconds for BurstCount iterations; once unreachable,
// re-resolve the current master via an HTTP GET every ReresolvePeriod
// seconds until one answers again.
package masterserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"icehockey/internal/config"
)

// heartbeatPayload is the literal datagram the original protocol expects
// a server to announce itself with ("Hock" + a trailing space).
var heartbeatPayload = []byte("Hock ")

// Client owns the UDP heartbeat burst and the HTTP re-resolution loop. It
// runs entirely off the tick's critical path (§5).
type Client struct {
	cfg    config.MasterServerConfig
	port   int
	http   *http.Client
	limiter *rate.Limiter

	mu      sync.RWMutex
	current *net.UDPAddr
}

// New builds a Client for the local server listening on port. Returns nil
// when master-server discovery is disabled, so callers can treat a nil
// *Client as a no-op.
func New(cfg config.MasterServerConfig, port int) *Client {
	if !cfg.Enabled {
		return nil
	}
	return &Client{
		cfg:  cfg,
		port: port,
		http: &http.Client{Timeout: 5 * time.Second},
		// Re-resolution is the only unbounded-retry path here; cap it so a
		// master that is down for a long time doesn't turn into a hot loop.
		limiter: rate.NewLimiter(rate.Every(time.Duration(cfg.ReresolvePeriod)*time.Second), 1),
	}
}

// Run blocks until ctx is cancelled, alternating between heartbeat bursts
// (while a master address is known) and re-resolution attempts (while it
// is not). Intended to be started in its own goroutine.
func (c *Client) Run(ctx context.Context) {
	if c == nil {
		return
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: 0})
	if err != nil {
		log.Printf("masterserver: failed to open heartbeat socket: %v", err)
		return
	}
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		addr := c.masterAddr()
		if addr == nil {
			if !c.resolve(ctx) {
				c.sleep(ctx, time.Duration(c.cfg.ReresolvePeriod)*time.Second)
			}
			continue
		}

		if !c.burst(ctx, conn, addr) {
			// Burst failed to reach the master at all; drop it and
			// re-resolve on the next loop iteration.
			c.setMaster(nil)
		}
	}
}

// burst sends cfg.BurstCount heartbeats cfg.HeartbeatPeriod seconds apart.
// Returns false if every send in the burst failed, signalling the master
// should be re-resolved.
func (c *Client) burst(ctx context.Context, conn *net.UDPConn, addr *net.UDPAddr) bool {
	sentAny := false
	for i := 0; i < c.cfg.BurstCount; i++ {
		if _, err := conn.WriteToUDP(heartbeatPayload, addr); err != nil {
			log.Printf("masterserver: heartbeat to %s failed: %v", addr, err)
		} else {
			sentAny = true
		}
		if !c.sleep(ctx, time.Duration(c.cfg.HeartbeatPeriod)*time.Second) {
			return true
		}
	}
	return sentAny
}

// resolve performs the HTTP GET against cfg.ResolveURL, expecting a
// whitespace-separated "IP PORT" response body, and stores the result as
// the current master on success.
func (c *Client) resolve(ctx context.Context) bool {
	if !c.limiter.Allow() {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ResolveURL, nil)
	if err != nil {
		log.Printf("masterserver: building resolve request: %v", err)
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("masterserver: resolve request failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("masterserver: reading resolve response: %v", err)
		return false
	}
	addr, err := parseMasterAddr(string(body))
	if err != nil {
		log.Printf("masterserver: parsing resolve response %q: %v", body, err)
		return false
	}
	log.Printf("masterserver: resolved master at %s", addr)
	c.setMaster(addr)
	return true
}

func parseMasterAddr(body string) (*net.UDPAddr, error) {
	fields := strings.Fields(body)
	if len(fields) != 2 {
		return nil, fmt.Errorf("expected \"IP PORT\", got %d fields", len(fields))
	}
	ip := net.ParseIP(fields[0])
	if ip == nil {
		return nil, fmt.Errorf("invalid ip %q", fields[0])
	}
	port, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", fields[1], err)
	}
	return &net.UDPAddr{IP: ip, Port: port}, nil
}

func (c *Client) masterAddr() *net.UDPAddr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Client) setMaster(addr *net.UDPAddr) {
	c.mu.Lock()
	c.current = addr
	c.mu.Unlock()
}

// sleep waits for d or ctx cancellation, returning false if ctx finished
// first.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
