package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/imamik/nebuctl/internal/util/retry"
)

const (
	defaultDialTimeout    = 10 * time.Second
	defaultCommandTimeout = 5 * time.Minute
	defaultMaxRetries     = 3
	defaultRetryDelay     = 2 * time.Second
	defaultMaxDelay       = 10 * time.Second
)

var errNotConnected = errors.New("ssh client is not connected")

// Config holds SSH client configuration.
type Config struct {
	Target     Target
	PrivateKey []byte

	// DialTimeout bounds the TCP dial plus the SSH handshake.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// CommandTimeout bounds every remote command. A command still running
	// when it expires is killed. If zero, defaultCommandTimeout is used.
	CommandTimeout time.Duration

	// MaxRetries is the number of connection retries after the first attempt.
	// Negative disables retries; zero uses defaultMaxRetries.
	MaxRetries int

	// RetryDelay is the initial delay between connection attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used: hosts are provisioned
	// freshly and their keys are not known in advance.
	HostKeyCallback ssh.HostKeyCallback

	// OnRetry is called before each connection retry.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Result is the outcome of a remote command that ran to completion.
type Result struct {
	ExitStatus int
	Stdout     string
	Stderr     string
}

// Output returns stderr followed by stdout.
func (r *Result) Output() string {
	return strings.TrimSpace(r.Stderr + "\n" + r.Stdout)
}

// Client is a single SSH connection to a remote host with an SFTP
// subsystem on top. It must be connected before use and closed afterwards.
type Client struct {
	config *Config
	signer ssh.Signer

	conn *ssh.Client
	sftp *sftp.Client
}

// NewClient validates the configuration and parses the private key.
// It does not connect.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Target.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.Target.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg
	if configCopy.Target.Port == 0 {
		configCopy.Target.Port = DefaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.CommandTimeout == 0 {
		configCopy.CommandTimeout = defaultCommandTimeout
	}
	switch {
	case configCopy.MaxRetries == 0:
		configCopy.MaxRetries = defaultMaxRetries
	case configCopy.MaxRetries < 0:
		configCopy.MaxRetries = 0
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // hosts are not known before provisioning
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Host returns the remote host name as given in the target.
func (c *Client) Host() string {
	return c.config.Target.Host
}

// Connect dials the remote host, retrying transient failures, and opens the
// SFTP subsystem. Authentication failures are not retried.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	addr := c.config.Target.Address()
	clientConfig := &ssh.ClientConfig{
		User:            c.config.Target.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(c.signer)},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	var conn *ssh.Client
	err := retry.Do(ctx, func(ctx context.Context) error {
		var dialErr error
		conn, dialErr = dial(ctx, addr, clientConfig)
		if dialErr != nil && strings.Contains(dialErr.Error(), "unable to authenticate") {
			return retry.Permanent(dialErr)
		}
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
		retry.WithOnRetry(c.config.OnRetry),
	)
	if err != nil {
		return &ConnectionError{Addr: addr, Err: err}
	}

	sftpClient, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return &ConnectionError{Addr: addr, Err: fmt.Errorf("failed to start sftp subsystem: %w", err)}
	}

	c.conn = conn
	c.sftp = sftpClient
	return nil
}

// dial opens the TCP connection with ctx and runs the SSH handshake under
// the configured timeout.
func dial(ctx context.Context, addr string, cfg *ssh.ClientConfig) (*ssh.Client, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	netConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	if cfg.Timeout > 0 {
		_ = netConn.SetDeadline(time.Now().Add(cfg.Timeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, cfg)
	if err != nil {
		_ = netConn.Close()
		return nil, err
	}
	_ = netConn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// Close releases the SFTP subsystem and the SSH connection. It is safe to
// call on a client that never connected.
func (c *Client) Close() error {
	var errs []error
	if c.sftp != nil {
		if err := c.sftp.Close(); err != nil {
			errs = append(errs, err)
		}
		c.sftp = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
		c.conn = nil
	}
	return errors.Join(errs...)
}

// Exec runs command in a new session and waits for it to finish. A non-zero
// exit status is reported in the Result, not as an error; errors are
// transport failures or the command timeout.
func (c *Client) Exec(ctx context.Context, command string) (*Result, error) {
	if c.conn == nil {
		return nil, errNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.CommandTimeout)
	defer cancel()

	session, err := c.conn.NewSession()
	if err != nil {
		return nil, &ConnectionError{Addr: c.config.Target.Address(), Err: fmt.Errorf("failed to create session: %w", err)}
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		return nil, fmt.Errorf("command on %s did not finish: %w\nCommand: %s", c.Host(), ctx.Err(), command)
	case err = <-done:
	}

	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			result.ExitStatus = exitErr.ExitStatus()
			return result, nil
		}
		return nil, &ConnectionError{Addr: c.config.Target.Address(), Err: err}
	}
	return result, nil
}
