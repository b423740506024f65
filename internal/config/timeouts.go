package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Connect           time.Duration // Timeout for the TCP dial plus SSH handshake
	PortWait          time.Duration // Timeout for the SSH port to become reachable
	Command           time.Duration // Timeout for a single remote command
	Lock              time.Duration // Timeout for acquiring the machine-id lock
	RetryMaxAttempts  int           // Connection retries after the first attempt; 0 disables them
	RetryInitialDelay time.Duration // Initial delay between connection retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - NEBUCTL_TIMEOUT_CONNECT (default: 10s)
//   - NEBUCTL_TIMEOUT_PORT_WAIT (default: 30s)
//   - NEBUCTL_TIMEOUT_COMMAND (default: 5m)
//   - NEBUCTL_TIMEOUT_LOCK (default: 30s)
//   - NEBUCTL_RETRY_MAX_ATTEMPTS (default: 3, 0 disables retries)
//   - NEBUCTL_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Connect:           parseDuration("NEBUCTL_TIMEOUT_CONNECT", 10*time.Second),
		PortWait:          parseDuration("NEBUCTL_TIMEOUT_PORT_WAIT", 30*time.Second),
		Command:           parseDuration("NEBUCTL_TIMEOUT_COMMAND", 5*time.Minute),
		Lock:              parseDuration("NEBUCTL_TIMEOUT_LOCK", 30*time.Second),
		RetryMaxAttempts:  parseInt("NEBUCTL_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("NEBUCTL_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

// TestTimeouts returns short timeouts suitable for tests.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		Connect:           time.Second,
		PortWait:          time.Second,
		Command:           5 * time.Second,
		Lock:              100 * time.Millisecond,
		RetryMaxAttempts:  1,
		RetryInitialDelay: 10 * time.Millisecond,
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
