package provisioning

import (
	"fmt"
	"io/fs"

	"github.com/imamik/nebuctl/internal/platform/ssh"
)

// run executes command on the host and treats a non-zero exit status as a
// RemoteExecutionError. It returns stdout.
func run(ctx *Context, phase, command string) (string, error) {
	result, err := ctx.Remote.Exec(ctx, command)
	if err != nil {
		return "", err
	}
	LogCommand(ctx.Observer, phase, command, result.ExitStatus)
	if result.ExitStatus != 0 {
		return result.Stdout, &ssh.RemoteExecutionError{
			Host:       ctx.Remote.Host(),
			Command:    command,
			ExitStatus: result.ExitStatus,
			Output:     result.Output(),
		}
	}
	return result.Stdout, nil
}

// transfer replaces a remote file.
func transfer(ctx *Context, phase, path string, data []byte, perm fs.FileMode) error {
	if err := ctx.Remote.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to transfer %s: %w", path, err)
	}
	LogTransfer(ctx.Observer, phase, path, len(data))
	return nil
}
