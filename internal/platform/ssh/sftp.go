package ssh

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
)

// BinaryDirs are searched in order by BinaryExists.
var BinaryDirs = []string{"/usr/bin", "/bin", "/usr/local/bin"}

// Exists reports whether path exists on the remote host.
func (c *Client) Exists(path string) (bool, error) {
	if c.sftp == nil {
		return false, errNotConnected
	}
	_, err := c.sftp.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s on %s: %w", path, c.Host(), err)
}

// ReadFile returns the contents of a remote file.
func (c *Client) ReadFile(path string) ([]byte, error) {
	if c.sftp == nil {
		return nil, errNotConnected
	}
	f, err := c.sftp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s on %s: %w", path, c.Host(), err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s on %s: %w", path, c.Host(), err)
	}
	return data, nil
}

// WriteFile replaces a remote file: any existing file is removed first, so
// neither contents nor metadata of the old file survive. The mode is set on
// the new file before any data is written to it.
func (c *Client) WriteFile(path string, data []byte, perm fs.FileMode) error {
	if c.sftp == nil {
		return errNotConnected
	}
	if err := c.Remove(path); err != nil {
		return err
	}

	f, err := c.sftp.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL)
	if err != nil {
		return fmt.Errorf("failed to create %s on %s: %w", path, c.Host(), err)
	}
	if err := f.Chmod(perm); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to chmod %s on %s: %w", path, c.Host(), err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s on %s: %w", path, c.Host(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s on %s: %w", path, c.Host(), err)
	}
	return nil
}

// Remove deletes a remote file. A missing file is not an error.
func (c *Client) Remove(path string) error {
	if c.sftp == nil {
		return errNotConnected
	}
	exists, err := c.Exists(path)
	if err != nil || !exists {
		return err
	}
	if err := c.sftp.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s on %s: %w", path, c.Host(), err)
	}
	return nil
}

// BinaryExists reports whether an executable called name is present in one
// of BinaryDirs.
func (c *Client) BinaryExists(name string) (bool, error) {
	for _, dir := range BinaryDirs {
		found, err := c.Exists(path.Join(dir, name))
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}
