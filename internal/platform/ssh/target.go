package ssh

import (
	"net"
	"net/netip"
	"strconv"
	"strings"
)

const (
	// DefaultUser is used when a target has no "user@" prefix.
	DefaultUser = "root"
	// DefaultPort is used when a target has no ":port" suffix.
	DefaultPort = 22
)

// Target is a parsed remote SSH destination.
type Target struct {
	Host string
	User string
	Port int
}

// ParseTarget parses "[user@]host[:port]".
//
// The port separator is the rightmost ':' and only counts when it comes after
// the rightmost '@' (and after a closing ']' of a bracketed literal). An
// unbracketed IPv6 literal such as "fd00::1" is taken as a host without a
// port; use "[fd00::1]:2222" to give one. Port 0 is rejected.
func ParseTarget(s string) (Target, error) {
	t := Target{User: DefaultUser, Port: DefaultPort}

	hostPart := s
	at := strings.LastIndex(s, "@")
	colon := strings.LastIndex(s, ":")
	if colon != -1 && colon > at && colon > strings.LastIndex(s, "]") {
		candidate := s[:colon]
		if !isBareIPv6(hostWithoutUser(candidate), s[at+1:]) {
			port, err := strconv.Atoi(s[colon+1:])
			if err != nil {
				return Target{}, &MalformedTargetError{Input: s, Reason: "cannot parse ssh port"}
			}
			if port < 1 || port > 65535 {
				return Target{}, &MalformedTargetError{Input: s, Reason: "ssh port out of range"}
			}
			t.Port = port
			hostPart = candidate
		}
	}

	if i := strings.Index(hostPart, "@"); i != -1 {
		t.User = hostPart[:i]
		hostPart = hostPart[i+1:]
		if t.User == "" {
			return Target{}, &MalformedTargetError{Input: s, Reason: "user required before '@'"}
		}
	}

	if strings.TrimSpace(hostPart) == "" {
		return Target{}, &MalformedTargetError{Input: s, Reason: "host required"}
	}
	t.Host = hostPart

	return t, nil
}

// hostWithoutUser strips a leading "user@" from a host candidate.
func hostWithoutUser(s string) string {
	if i := strings.Index(s, "@"); i != -1 {
		return s[i+1:]
	}
	return s
}

// isBareIPv6 reports whether the port split would cut an unbracketed IPv6
// literal in half.
func isBareIPv6(candidateHost, full string) bool {
	if !strings.Contains(candidateHost, ":") || strings.HasPrefix(candidateHost, "[") {
		return false
	}
	addr, err := netip.ParseAddr(full)
	return err == nil && addr.Is6()
}

// Hostname returns the host without IPv6 brackets.
func (t Target) Hostname() string {
	return strings.TrimSuffix(strings.TrimPrefix(t.Host, "["), "]")
}

// Address returns the dialable "host:port" form of the target.
func (t Target) Address() string {
	return net.JoinHostPort(t.Hostname(), strconv.Itoa(t.Port))
}

// String renders the target back in "user@host:port" form.
func (t Target) String() string {
	return t.User + "@" + t.Address()
}
