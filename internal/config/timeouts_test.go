package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	clearTimeoutEnvVars(t)

	timeouts := LoadTimeouts()

	if timeouts.Connect != 10*time.Second {
		t.Errorf("Expected Connect default 10s, got %v", timeouts.Connect)
	}
	if timeouts.PortWait != 30*time.Second {
		t.Errorf("Expected PortWait default 30s, got %v", timeouts.PortWait)
	}
	if timeouts.Command != 5*time.Minute {
		t.Errorf("Expected Command default 5m, got %v", timeouts.Command)
	}
	if timeouts.Lock != 30*time.Second {
		t.Errorf("Expected Lock default 30s, got %v", timeouts.Lock)
	}
	if timeouts.RetryMaxAttempts != 3 {
		t.Errorf("Expected RetryMaxAttempts default 3, got %d", timeouts.RetryMaxAttempts)
	}
	if timeouts.RetryInitialDelay != 2*time.Second {
		t.Errorf("Expected RetryInitialDelay default 2s, got %v", timeouts.RetryInitialDelay)
	}
}

func TestLoadTimeouts_EnvVars(t *testing.T) {
	clearTimeoutEnvVars(t)

	t.Setenv("NEBUCTL_TIMEOUT_CONNECT", "15s")
	t.Setenv("NEBUCTL_TIMEOUT_PORT_WAIT", "2m")
	t.Setenv("NEBUCTL_TIMEOUT_COMMAND", "10m")
	t.Setenv("NEBUCTL_TIMEOUT_LOCK", "1m")
	t.Setenv("NEBUCTL_RETRY_MAX_ATTEMPTS", "7")
	t.Setenv("NEBUCTL_RETRY_INITIAL_DELAY", "500ms")

	timeouts := LoadTimeouts()

	if timeouts.Connect != 15*time.Second {
		t.Errorf("Expected Connect 15s, got %v", timeouts.Connect)
	}
	if timeouts.PortWait != 2*time.Minute {
		t.Errorf("Expected PortWait 2m, got %v", timeouts.PortWait)
	}
	if timeouts.Command != 10*time.Minute {
		t.Errorf("Expected Command 10m, got %v", timeouts.Command)
	}
	if timeouts.Lock != time.Minute {
		t.Errorf("Expected Lock 1m, got %v", timeouts.Lock)
	}
	if timeouts.RetryMaxAttempts != 7 {
		t.Errorf("Expected RetryMaxAttempts 7, got %d", timeouts.RetryMaxAttempts)
	}
	if timeouts.RetryInitialDelay != 500*time.Millisecond {
		t.Errorf("Expected RetryInitialDelay 500ms, got %v", timeouts.RetryInitialDelay)
	}
}

func TestLoadTimeouts_InvalidEnvVars(t *testing.T) {
	clearTimeoutEnvVars(t)

	t.Setenv("NEBUCTL_TIMEOUT_CONNECT", "invalid")
	t.Setenv("NEBUCTL_TIMEOUT_COMMAND", "not-a-duration")
	t.Setenv("NEBUCTL_RETRY_MAX_ATTEMPTS", "not-a-number")

	timeouts := LoadTimeouts()

	if timeouts.Connect != 10*time.Second {
		t.Errorf("Expected Connect default 10s (invalid env var), got %v", timeouts.Connect)
	}
	if timeouts.Command != 5*time.Minute {
		t.Errorf("Expected Command default 5m (invalid env var), got %v", timeouts.Command)
	}
	if timeouts.RetryMaxAttempts != 3 {
		t.Errorf("Expected RetryMaxAttempts default 3 (invalid env var), got %d", timeouts.RetryMaxAttempts)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal time.Duration
		expected   time.Duration
	}{
		{name: "Valid duration", envValue: "5m", defaultVal: time.Minute, expected: 5 * time.Minute},
		{name: "Empty value", envValue: "", defaultVal: time.Minute, expected: time.Minute},
		{name: "Invalid value", envValue: "invalid", defaultVal: time.Minute, expected: time.Minute},
		{name: "Complex duration", envValue: "1h30m45s", defaultVal: time.Minute, expected: time.Hour + 30*time.Minute + 45*time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)

			result := parseDuration("TEST_DURATION", tt.defaultVal)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		expected   int
	}{
		{name: "Valid integer", envValue: "42", defaultVal: 10, expected: 42},
		{name: "Empty value", envValue: "", defaultVal: 10, expected: 10},
		{name: "Invalid value", envValue: "not-a-number", defaultVal: 10, expected: 10},
		{name: "Zero value", envValue: "0", defaultVal: 10, expected: 0},
		{name: "Negative value", envValue: "-5", defaultVal: 10, expected: -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)

			result := parseInt("TEST_INT", tt.defaultVal)
			if result != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestTestTimeouts(t *testing.T) {
	timeouts := TestTimeouts()

	if timeouts.Lock != 100*time.Millisecond {
		t.Errorf("Expected Lock 100ms, got %v", timeouts.Lock)
	}
	if timeouts.RetryMaxAttempts != 1 {
		t.Errorf("Expected RetryMaxAttempts 1, got %d", timeouts.RetryMaxAttempts)
	}
	if timeouts.RetryInitialDelay != 10*time.Millisecond {
		t.Errorf("Expected RetryInitialDelay 10ms, got %v", timeouts.RetryInitialDelay)
	}
}

// clearTimeoutEnvVars clears all timeout-related environment variables
// for the duration of the test.
func clearTimeoutEnvVars(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"NEBUCTL_TIMEOUT_CONNECT",
		"NEBUCTL_TIMEOUT_PORT_WAIT",
		"NEBUCTL_TIMEOUT_COMMAND",
		"NEBUCTL_TIMEOUT_LOCK",
		"NEBUCTL_RETRY_MAX_ATTEMPTS",
		"NEBUCTL_RETRY_INITIAL_DELAY",
	} {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
}
