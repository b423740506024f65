package provisioning

import (
	"github.com/imamik/nebuctl/internal/platform/ssh"
	"github.com/imamik/nebuctl/internal/util/netutil"
)

// ConnectPhase waits for the SSH port and opens the session.
type ConnectPhase struct{}

// Name implements the Phase interface.
func (ConnectPhase) Name() string {
	return "connect"
}

// Provision implements the Phase interface. A zero PortWait timeout skips
// the reachability check.
func (p ConnectPhase) Provision(ctx *Context) error {
	if ctx.Timeouts != nil && ctx.Timeouts.PortWait > 0 {
		ctx.Observer.Printf("[%s] Waiting for %s...", p.Name(), ctx.Target.Address())
		if err := netutil.WaitForPort(ctx, ctx.Target.Hostname(), ctx.Target.Port, ctx.Timeouts.PortWait); err != nil {
			return &ssh.ConnectionError{Addr: ctx.Target.Address(), Err: err}
		}
	}

	if err := ctx.Remote.Connect(ctx); err != nil {
		return err
	}

	ctx.Observer.Printf("[%s] Connected to %s", p.Name(), ctx.Target)
	ctx.State.Stage = StageConnected
	return nil
}
