// Package pki issues host certificates from the network CA kept in the
// local state directory, using the nebula-cert tool.
package pki

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/imamik/nebuctl/internal/state"
	"github.com/imamik/nebuctl/internal/util/netutil"
)

const (
	// Tool is the certificate tool shipped with nebula.
	Tool = "nebula-cert"

	// CACert and CAKey are the CA files in the state directory.
	CACert = "ca.crt"
	CAKey  = "ca.key"

	// LighthouseName is the name of the pre-issued lighthouse certificate.
	LighthouseName = "lighthouse"
)

// Runner runs a local command in dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	// #nosec G204 - name is the fixed Tool, args are validated names and addresses
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Bundle is what a host needs to join the network.
type Bundle struct {
	CA   []byte
	Cert []byte
	Key  []byte
}

// Issuer signs and loads host certificates in a state directory.
type Issuer struct {
	dir    string
	runner Runner
}

// NewIssuer returns an Issuer working in dir. A nil runner uses ExecRunner.
func NewIssuer(dir string, runner Runner) *Issuer {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Issuer{dir: dir, runner: runner}
}

// Sign issues a certificate named name for addr, replacing any certificate
// and key left over from a previous attempt, and returns the new bundle.
func (i *Issuer) Sign(ctx context.Context, name string, addr netutil.NodeAddress) (*Bundle, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	for _, f := range []string{CACert, CAKey} {
		if err := i.require(f); err != nil {
			return nil, err
		}
	}

	for _, f := range []string{name + ".crt", name + ".key"} {
		if err := os.Remove(filepath.Join(i.dir, f)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale %s: %w", f, err)
		}
	}

	args := []string{"sign", "-name", name, "-ip", addr.String()}
	output, err := i.runner.Run(ctx, i.dir, Tool, args...)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w\nOutput: %s", Tool, strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}

	return i.Load(name)
}

// Load reads the CA certificate and the certificate and key named name.
func (i *Issuer) Load(name string) (*Bundle, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	ca, err := i.read(CACert)
	if err != nil {
		return nil, err
	}
	cert, err := i.read(name + ".crt")
	if err != nil {
		return nil, err
	}
	key, err := i.read(name + ".key")
	if err != nil {
		return nil, err
	}
	return &Bundle{CA: ca, Cert: cert, Key: key}, nil
}

func (i *Issuer) require(name string) error {
	path := filepath.Join(i.dir, name)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &state.LocalStateNotFoundError{Name: name, Path: path}
	} else if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return nil
}

func (i *Issuer) read(name string) ([]byte, error) {
	path := filepath.Join(i.dir, name)
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the state directory
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &state.LocalStateNotFoundError{Name: name, Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("certificate name cannot be empty")
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return fmt.Errorf("certificate name %q must not contain path elements", name)
	case name == "ca":
		return fmt.Errorf("certificate name %q is reserved", name)
	}
	return nil
}
