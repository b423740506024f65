package provisioning

import "github.com/imamik/nebuctl/internal/distro"

// DistroPhase classifies the host. An unknown distribution is not an error
// here; it only fails the run if a package has to be installed.
type DistroPhase struct{}

// Name implements the Phase interface.
func (DistroPhase) Name() string {
	return "distro"
}

// Provision implements the Phase interface.
func (p DistroPhase) Provision(ctx *Context) error {
	family := distro.Detect(ctx.Remote)
	ctx.State.Distro = family

	if manager := family.PackageManager(); manager != "" {
		ctx.Observer.Printf("[%s] Detected %s distribution (%s)", p.Name(), family, manager)
	} else {
		ctx.Observer.Printf("[%s] Detected %s distribution, no package manager available", p.Name(), family)
	}
	ctx.State.Stage = StageDistroKnown
	return nil
}
