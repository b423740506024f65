package ssh

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/imamik/nebuctl/internal/util/keygen"
)

// execHandler answers an exec request with stdout, stderr and exit status.
type execHandler func(command string) (stdout, stderr string, status uint32)

// testServer is an in-process SSH server with exec and an in-memory SFTP
// subsystem.
type testServer struct {
	ln       net.Listener
	port     int
	handler  execHandler
	sftpFS   sftp.Handlers
	mu       sync.Mutex
	commands []string
	fileOps  []string
}

func startTestServer(t *testing.T, authorized ssh.PublicKey, handler execHandler) *testServer {
	t.Helper()

	hostKey, err := keygen.GenerateEd25519KeyPair()
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return nil, nil
			}
			return nil, errors.New("unknown public key")
		},
	}
	cfg.AddHostKey(hostKey.Signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	s := &testServer{ln: ln, port: port, handler: handler}
	mem := sftp.InMemHandler()
	s.sftpFS = sftp.Handlers{
		FileGet:  mem.FileGet,
		FilePut:  recordingWriter{server: s, next: mem.FilePut},
		FileCmd:  recordingCmder{server: s, next: mem.FileCmd},
		FileList: mem.FileList,
	}
	go s.serve(cfg)
	return s
}

func (s *testServer) serve(cfg *ssh.ServerConfig) {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn, cfg)
	}
}

func (s *testServer) handleConn(conn net.Conn, cfg *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		_ = conn.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(ch, chReqs)
	}
}

func (s *testServer) handleSession(ch ssh.Channel, reqs <-chan *ssh.Request) {
	defer func() { _ = ch.Close() }()

	for req := range reqs {
		switch req.Type {
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)

			s.mu.Lock()
			s.commands = append(s.commands, payload.Command)
			s.mu.Unlock()

			stdout, stderr, status := s.handler(payload.Command)
			_, _ = ch.Write([]byte(stdout))
			_, _ = ch.Stderr().Write([]byte(stderr))
			_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
			return
		case "subsystem":
			var payload struct{ Name string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil || payload.Name != "sftp" {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)

			server := sftp.NewRequestServer(ch, s.sftpFS)
			_ = server.Serve()
			_ = server.Close()
			return
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

func (s *testServer) recordFileOp(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileOps = append(s.fileOps, op)
}

// fileOperations lists writes and file commands in the order the server
// handled them, e.g. "write /host.key" or "Setstat /host.key 600".
func (s *testServer) fileOperations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fileOps...)
}

type recordingCmder struct {
	server *testServer
	next   sftp.FileCmder
}

func (c recordingCmder) Filecmd(r *sftp.Request) error {
	op := r.Method + " " + r.Filepath
	if r.Method == "Setstat" && r.AttrFlags().Permissions {
		op += fmt.Sprintf(" %o", r.Attributes().FileMode().Perm())
	}
	c.server.recordFileOp(op)
	return c.next.Filecmd(r)
}

type recordingWriter struct {
	server *testServer
	next   sftp.FileWriter
}

func (w recordingWriter) Filewrite(r *sftp.Request) (io.WriterAt, error) {
	wa, err := w.next.Filewrite(r)
	if err != nil {
		return nil, err
	}
	return recordingWriterAt{WriterAt: wa, server: w.server, path: r.Filepath}, nil
}

type recordingWriterAt struct {
	io.WriterAt
	server *testServer
	path   string
}

func (w recordingWriterAt) WriteAt(p []byte, off int64) (int, error) {
	w.server.recordFileOp("write " + w.path)
	return w.WriterAt.WriteAt(p, off)
}

func (s *testServer) executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *testServer) target() Target {
	return Target{Host: "127.0.0.1", User: "root", Port: s.port}
}
