// Package discovery advertises the running server over mDNS so LAN game
// browsers can find it without a master-server heartbeat, adjunct to the
// master-server "heartbeat" operator command (§5 step 6).
package discovery

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/grandcat/zeroconf"
)

const serviceType = "_arenacore._udp"

func resolveInstanceName(instance string) string {
	if instance != "" {
		return instance
	}
	host, _ := os.Hostname()
	return fmt.Sprintf("arenacore-%s", host)
}

func txtRecords(mapname, gametype string) []string {
	return []string{
		"map=" + mapname,
		"gametype=" + gametype,
	}
}

// Beacon is a running mDNS advertisement; call Close (or cancel its
// context) to withdraw it.
type Beacon struct {
	svc  *zeroconf.Server
	done chan struct{}
}

// Start registers instance (the server's configured hostname, falling
// back to "arenacore-" followed by os.Hostname) under serviceType on port, carrying mapname and
// gametype as TXT metadata so a browser can filter without a full query.
func Start(ctx context.Context, instance string, port int, mapname, gametype string) (*Beacon, error) {
	instance = resolveInstanceName(instance)
	meta := txtRecords(mapname, gametype)

	svc, err := zeroconf.Register(instance, serviceType, "local.", port, meta, nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: mdns register: %w", err)
	}

	b := &Beacon{svc: svc, done: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		svc.Shutdown()
	}()
	return b, nil
}

// Close withdraws the advertisement.
func (b *Beacon) Close() {
	close(b.done)
	b.svc.Shutdown()
	time.Sleep(50 * time.Millisecond)
}
