// Package netutil provides address arithmetic for mesh network blocks and
// reachability checks for remote hosts.
package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

const (
	// pollInterval is the delay between two reachability attempts.
	pollInterval = 500 * time.Millisecond
	// dialTimeout bounds a single TCP dial.
	dialTimeout = 2 * time.Second
)

// WaitForPort waits until a TCP port accepts connections on host.
// host may be a name, an IPv4 or an IPv6 literal. The first attempt is made
// immediately; afterwards it polls until the port is open or timeout elapses.
func WaitForPort(ctx context.Context, host string, port int, timeout time.Duration) error {
	address := net.JoinHostPort(host, strconv.Itoa(port))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		lastErr = dial(ctx, address)
		if lastErr == nil {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("timeout waiting for %s: %w", address, lastErr)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func dial(ctx context.Context, address string) error {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
