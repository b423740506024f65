// Package handlers implements the business logic behind the nebuctl commands.
//
// Handlers parse user input, read and write the local state directory,
// render the nebula artifacts for a host and hand them to the provisioning
// orchestrator. External dependencies are reached through package-level
// factory variables so tests can replace them.
package handlers

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/imamik/nebuctl/internal/config"
	"github.com/imamik/nebuctl/internal/nebula"
	"github.com/imamik/nebuctl/internal/pki"
	"github.com/imamik/nebuctl/internal/platform/ssh"
	"github.com/imamik/nebuctl/internal/provisioning"
	"github.com/imamik/nebuctl/internal/state"
	"github.com/imamik/nebuctl/internal/util/prerequisites"
)

// Options are the settings shared by every setup command.
type Options struct {
	// StateDir holds the CA, issued certificates and the network files.
	StateDir string
	// Identity is the SSH private key used to reach the target.
	Identity      string
	NebulaVersion string
	Port          int
	Device        string
}

// Runner provisions one host. It matches provisioning.Orchestrator.
type Runner interface {
	Run(ctx context.Context, target ssh.Target, remote provisioning.Session, deployment *provisioning.Deployment) (*provisioning.State, error)
}

// Factory function variables - can be replaced in tests.
var (
	loadTimeouts = config.LoadTimeouts

	newStore = state.NewStore

	newIssuer = func(dir string) *pki.Issuer {
		return pki.NewIssuer(dir, nil)
	}

	newSession = newSSHSession

	newOrchestrator = func(timeouts *config.Timeouts) Runner {
		o := provisioning.NewOrchestrator()
		o.Timeouts = timeouts
		return o
	}

	checkPrerequisites = prerequisites.CheckNode
)

// newSSHSession reads the identity key and builds an unconnected client.
func newSSHSession(target ssh.Target, identity string, timeouts *config.Timeouts) (provisioning.Session, error) {
	keyPath, err := expandHome(identity)
	if err != nil {
		return nil, err
	}
	key, err := os.ReadFile(keyPath) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh identity: %w", err)
	}

	client, err := ssh.NewClient(sshConfig(target, key, timeouts))
	if err != nil {
		return nil, fmt.Errorf("failed to create ssh client for %s: %w", target, err)
	}
	return client, nil
}

// sshConfig maps the timeouts onto a client configuration. The client reads
// zero retries as "use the default", so a configured zero becomes -1.
func sshConfig(target ssh.Target, key []byte, timeouts *config.Timeouts) *ssh.Config {
	retries := timeouts.RetryMaxAttempts
	if retries <= 0 {
		retries = -1
	}
	return &ssh.Config{
		Target:         target,
		PrivateKey:     key,
		DialTimeout:    timeouts.Connect,
		CommandTimeout: timeouts.Command,
		MaxRetries:     retries,
		RetryDelay:     timeouts.RetryInitialDelay,
	}
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func (o Options) network(block netip.Prefix, gateway netip.Addr) (nebula.Network, error) {
	network := nebula.Network{
		Device:  o.Device,
		Block:   block,
		Gateway: gateway,
		Port:    o.Port,
	}
	if err := network.Validate(); err != nil {
		return nebula.Network{}, err
	}
	return network, nil
}

func (o Options) release() provisioning.Release {
	release := provisioning.DefaultRelease()
	if o.NebulaVersion != "" {
		release.Version = o.NebulaVersion
	}
	return release
}

// render builds the config file and unit for a deployment.
func render(cfg *nebula.Config, layout nebula.Layout) (configData, unit []byte, err error) {
	configData, err = cfg.Marshal()
	if err != nil {
		return nil, nil, err
	}
	unit, err = nebula.Unit(layout)
	if err != nil {
		return nil, nil, err
	}
	return configData, unit, nil
}
