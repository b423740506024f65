package state

import (
	"errors"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// NetworkFile holds the network block, e.g. "10.42.0.0/16".
	NetworkFile = ".cidr"
	// GatewayFile holds the lighthouse's public address.
	GatewayFile = ".gateway"
	// CounterFile holds the next machine id to hand out.
	CounterFile = ".next_hid"

	lockFile = ".next_hid.lock"
	filePerm = 0o600
)

// FirstNodeID is the first machine id given to a node. Offset 1 is the
// lighthouse.
const FirstNodeID uint64 = 2

// Store reads and writes state files in a single directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the path of a file in the state directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// ReadNetwork returns the persisted network block.
func (s *Store) ReadNetwork() (netip.Prefix, error) {
	raw, err := s.read(NetworkFile)
	if err != nil {
		return netip.Prefix{}, err
	}
	block, err := netip.ParsePrefix(raw)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid network block in %s: %w", s.Path(NetworkFile), err)
	}
	return block.Masked(), nil
}

// WriteNetwork persists the network block.
func (s *Store) WriteNetwork(block netip.Prefix) error {
	return s.write(NetworkFile, block.Masked().String())
}

// ReadGateway returns the persisted public address of the lighthouse.
func (s *Store) ReadGateway() (netip.Addr, error) {
	raw, err := s.read(GatewayFile)
	if err != nil {
		return netip.Addr{}, err
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid gateway address in %s: %w", s.Path(GatewayFile), err)
	}
	return addr, nil
}

// WriteGateway persists the public address of the lighthouse.
func (s *Store) WriteGateway(addr netip.Addr) error {
	return s.write(GatewayFile, addr.String())
}

// InitCounter creates the machine-id counter at FirstNodeID unless it
// already exists. It reports whether the file was created.
func (s *Store) InitCounter() (bool, error) {
	path := s.Path(CounterFile)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.WriteString(strconv.FormatUint(FirstNodeID, 10)); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("failed to close %s: %w", path, err)
	}
	return true, nil
}

func (s *Store) readCounter() (uint64, error) {
	raw, err := s.read(CounterFile)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid machine id in %s: %w", s.Path(CounterFile), err)
	}
	return id, nil
}

func (s *Store) read(name string) (string, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the state directory
	if errors.Is(err, fs.ErrNotExist) {
		return "", &LocalStateNotFoundError{Name: name, Path: path}
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// write replaces a state file by renaming a temporary file over it.
func (s *Store) write(name, value string) error {
	path := s.Path(name)
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", s.dir, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), filePerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
