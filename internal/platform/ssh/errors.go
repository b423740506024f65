package ssh

import (
	"fmt"
	"strings"
)

// MalformedTargetError is returned by ParseTarget for unusable input.
type MalformedTargetError struct {
	Input  string
	Reason string
}

func (e *MalformedTargetError) Error() string {
	return fmt.Sprintf("malformed target %q: %s", e.Input, e.Reason)
}

// ConnectionError reports a failure to reach the remote host, or a session
// that dropped mid-run.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RemoteExecutionError reports a remote command that exited non-zero.
type RemoteExecutionError struct {
	Host       string
	Command    string
	ExitStatus int
	Output     string
}

func (e *RemoteExecutionError) Error() string {
	msg := fmt.Sprintf("command failed on %s with exit status %d\nCommand: %s", e.Host, e.ExitStatus, e.Command)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\nOutput: " + out
	}
	return msg
}
