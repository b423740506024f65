package provisioning

import (
	"context"
	"io/fs"
	"path"
	"strings"

	"github.com/imamik/nebuctl/internal/pki"
	"github.com/imamik/nebuctl/internal/platform/ssh"
)

type remoteFile struct {
	data []byte
	perm fs.FileMode
}

// fakeRemote is an in-memory host. Installing a package or extracting the
// nebula archive makes the binaries appear, and rm -rf removes files, so
// repeated runs see the effects of earlier ones.
type fakeRemote struct {
	files    map[string]remoteFile
	binaries map[string]bool
	machine  string
	commands []string

	// fail maps a command to the exit status it returns.
	fail       map[string]int
	connectErr error
	execErr    error

	connects int
	closes   int
}

func newFakeRemote(osRelease string) *fakeRemote {
	r := &fakeRemote{
		files:    make(map[string]remoteFile),
		binaries: make(map[string]bool),
		machine:  "x86_64",
		fail:     make(map[string]int),
	}
	if osRelease != "" {
		r.files["/etc/os-release"] = remoteFile{data: []byte(osRelease), perm: 0o644}
	}
	return r
}

func (r *fakeRemote) withBinaries(names ...string) *fakeRemote {
	for _, name := range names {
		r.binaries[name] = true
	}
	return r
}

func (r *fakeRemote) Host() string { return "203.0.113.20" }

func (r *fakeRemote) Connect(context.Context) error {
	r.connects++
	return r.connectErr
}

func (r *fakeRemote) Close() error {
	r.closes++
	return nil
}

func (r *fakeRemote) Exec(_ context.Context, command string) (*ssh.Result, error) {
	r.commands = append(r.commands, command)
	if r.execErr != nil {
		return nil, r.execErr
	}
	if status, ok := r.fail[command]; ok {
		return &ssh.Result{ExitStatus: status, Stderr: "simulated failure"}, nil
	}

	fields := strings.Fields(command)
	switch {
	case command == "uname -m":
		return &ssh.Result{Stdout: r.machine + "\n"}, nil
	case len(fields) == 4 && fields[1] == "-y" && fields[2] == "install":
		r.binaries[fields[3]] = true
	case fields[0] == "tar":
		r.binaries["nebula"] = true
		r.binaries["nebula-cert"] = true
	case fields[0] == "rm" && fields[1] == "-rf":
		for p := range r.files {
			if p == fields[2] || strings.HasPrefix(p, fields[2]+"/") {
				delete(r.files, p)
			}
		}
	}
	return &ssh.Result{}, nil
}

func (r *fakeRemote) Exists(p string) (bool, error) {
	_, ok := r.files[p]
	return ok, nil
}

func (r *fakeRemote) ReadFile(p string) ([]byte, error) {
	f, ok := r.files[p]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return f.data, nil
}

func (r *fakeRemote) WriteFile(p string, data []byte, perm fs.FileMode) error {
	r.files[p] = remoteFile{data: append([]byte(nil), data...), perm: perm}
	return nil
}

func (r *fakeRemote) Remove(p string) error {
	delete(r.files, p)
	return nil
}

func (r *fakeRemote) BinaryExists(name string) (bool, error) {
	if r.binaries[name] {
		return true, nil
	}
	for _, dir := range ssh.BinaryDirs {
		if _, ok := r.files[path.Join(dir, name)]; ok {
			return true, nil
		}
	}
	return false, nil
}

// countPrefix counts commands starting with prefix.
func (r *fakeRemote) countPrefix(prefix string) int {
	n := 0
	for _, c := range r.commands {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type fakeCredentials struct {
	bundle *pki.Bundle
	err    error
	calls  int
}

func (c *fakeCredentials) Bundle(context.Context) (*pki.Bundle, error) {
	c.calls++
	return c.bundle, c.err
}

func testBundle() *pki.Bundle {
	return &pki.Bundle{CA: []byte("ca"), Cert: []byte("cert"), Key: []byte("key")}
}
