package provisioning

import (
	"context"
	"io/fs"

	"github.com/imamik/nebuctl/internal/pki"
	"github.com/imamik/nebuctl/internal/platform/ssh"
)

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Executor runs commands on the remote host. A non-zero exit status is
// reported in the result, not as an error.
type Executor interface {
	Exec(ctx context.Context, command string) (*ssh.Result, error)
}

// FileTransfer reads and writes files on the remote host.
type FileTransfer interface {
	Exists(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
	// WriteFile removes any existing file before writing.
	WriteFile(path string, data []byte, perm fs.FileMode) error
	// Remove succeeds if the file does not exist.
	Remove(path string) error
	BinaryExists(name string) (bool, error)
}

// Session is one connection to a remote host offering both capabilities.
// Implemented by *ssh.Client.
type Session interface {
	Executor
	FileTransfer
	Host() string
	Connect(ctx context.Context) error
	Close() error
}

// Credentials produces the CA and host certificate deployed to the host.
type Credentials interface {
	Bundle(ctx context.Context) (*pki.Bundle, error)
}

var _ Session = (*ssh.Client)(nil)
