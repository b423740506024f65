package provisioning

import (
	"fmt"

	"github.com/imamik/nebuctl/internal/nebula"
)

// ServicePhase installs and starts the systemd unit on first run, and
// restarts it on every later run so the new configuration is picked up.
type ServicePhase struct{}

// Name implements the Phase interface.
func (ServicePhase) Name() string {
	return "service"
}

// Provision implements the Phase interface.
func (p ServicePhase) Provision(ctx *Context) error {
	installed, err := ctx.Remote.Exists(nebula.UnitPath)
	if err != nil {
		return fmt.Errorf("failed to check for %s: %w", nebula.UnitPath, err)
	}

	var commands []string
	if installed {
		LogResourceExists(ctx.Observer, p.Name(), "unit", nebula.UnitPath)
		commands = []string{systemctl("restart")}
		ctx.State.Service = ServiceRestarted
	} else {
		if err := transfer(ctx, p.Name(), nebula.UnitPath, ctx.Deployment.Unit, publicFileMode); err != nil {
			return err
		}
		commands = []string{
			"systemctl daemon-reload",
			systemctl("enable"),
			systemctl("start"),
		}
		ctx.State.Service = ServiceInstalled
	}
	commands = append(commands, systemctl("is-active"))

	for _, command := range commands {
		if _, err := run(ctx, p.Name(), command); err != nil {
			return err
		}
	}

	ctx.Observer.Printf("[%s] %s is active (%s)", p.Name(), nebula.ServiceName, ctx.State.Service)
	ctx.State.Stage = StageServiceActive
	return nil
}

func systemctl(verb string) string {
	return fmt.Sprintf("systemctl %s %s", verb, nebula.ServiceName)
}
