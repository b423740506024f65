package provisioning

import (
	"context"
	"fmt"

	"github.com/imamik/nebuctl/internal/config"
	"github.com/imamik/nebuctl/internal/nebula"
	"github.com/imamik/nebuctl/internal/platform/ssh"
)

// Role is the part a host plays in the mesh.
type Role string

const (
	RoleLighthouse Role = "lighthouse"
	RoleNode       Role = "node"
)

// DefaultReleaseBase is where nebula release archives are published.
const DefaultReleaseBase = "https://github.com/slackhq/nebula/releases"

// Release identifies the nebula binaries to install.
type Release struct {
	Version string
	Base    string
}

// DefaultRelease is the nebula version installed when none is chosen.
func DefaultRelease() Release {
	return Release{Version: "v1.9.5", Base: DefaultReleaseBase}
}

// ArchiveName is the release archive for a platform such as "linux-amd64".
func (r Release) ArchiveName(platform string) string {
	return fmt.Sprintf("nebula-%s.tar.gz", platform)
}

// URL is the download location of the archive for platform.
func (r Release) URL(platform string) string {
	return fmt.Sprintf("%s/download/%s/%s", r.Base, r.Version, r.ArchiveName(platform))
}

// Deployment is everything a run puts on the host.
type Deployment struct {
	Name        string
	Role        Role
	Layout      nebula.Layout
	Credentials Credentials
	// Config is the rendered nebula configuration.
	Config []byte
	// Unit is the rendered systemd unit, written only on first install.
	Unit    []byte
	Release Release
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Target     ssh.Target
	Remote     Session
	Deployment *Deployment
	State      *State
	Observer   Observer
	Timeouts   *config.Timeouts
}

// NewContext creates a new provisioning context.
func NewContext(ctx context.Context, target ssh.Target, remote Session, deployment *Deployment) *Context {
	return &Context{
		Context:    ctx,
		Target:     target,
		Remote:     remote,
		Deployment: deployment,
		State:      NewState(),
		Observer:   NewConsoleObserver(),
		Timeouts:   config.LoadTimeouts(),
	}
}
