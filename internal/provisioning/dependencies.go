package provisioning

import (
	"fmt"
	"path"
	"strings"

	"github.com/imamik/nebuctl/internal/nebula"
)

// Packages are installed with the host's package manager when missing.
var Packages = []string{"jq", "tar", "curl"}

// nebulaBinaries are extracted from the release archive.
var nebulaBinaries = []string{"nebula", "nebula-cert"}

// DependenciesPhase makes sure the tools and nebula binaries are on the
// host. Anything already present is left alone.
type DependenciesPhase struct{}

// Name implements the Phase interface.
func (DependenciesPhase) Name() string {
	return "dependencies"
}

// Provision implements the Phase interface.
func (p DependenciesPhase) Provision(ctx *Context) error {
	for _, pkg := range Packages {
		if err := p.ensurePackage(ctx, pkg); err != nil {
			return err
		}
	}
	if err := p.ensureNebula(ctx); err != nil {
		return err
	}

	ctx.State.Stage = StageDependenciesEnsured
	return nil
}

func (p DependenciesPhase) ensurePackage(ctx *Context, name string) error {
	found, err := ctx.Remote.BinaryExists(name)
	if err != nil {
		return fmt.Errorf("failed to look for %s: %w", name, err)
	}
	if found {
		LogResourceExists(ctx.Observer, p.Name(), "binary", name)
		return nil
	}

	manager := ctx.State.Distro.PackageManager()
	if manager == "" {
		return &UnsupportedDistroError{Family: ctx.State.Distro, Binary: name}
	}

	LogResourceCreating(ctx.Observer, p.Name(), "binary", name)
	if _, err := run(ctx, p.Name(), fmt.Sprintf("%s -y install %s", manager, name)); err != nil {
		return fmt.Errorf("failed to install %s: %w", name, err)
	}
	ctx.State.Installed = append(ctx.State.Installed, name)
	LogResourceCreated(ctx.Observer, p.Name(), "binary", name)
	return nil
}

func (p DependenciesPhase) ensureNebula(ctx *Context) error {
	present := true
	for _, name := range nebulaBinaries {
		found, err := ctx.Remote.BinaryExists(name)
		if err != nil {
			return fmt.Errorf("failed to look for %s: %w", name, err)
		}
		present = present && found
	}
	if present {
		for _, name := range nebulaBinaries {
			LogResourceExists(ctx.Observer, p.Name(), "binary", name)
		}
		return nil
	}

	machine, err := run(ctx, p.Name(), "uname -m")
	if err != nil {
		return fmt.Errorf("failed to determine architecture: %w", err)
	}
	platform, err := releasePlatform(strings.TrimSpace(machine))
	if err != nil {
		return err
	}
	ctx.State.Platform = platform

	release := ctx.Deployment.Release
	archive := path.Join(nebula.BinaryDir, release.ArchiveName(platform))
	binaries := make([]string, 0, len(nebulaBinaries))
	for _, name := range nebulaBinaries {
		binaries = append(binaries, path.Join(nebula.BinaryDir, name))
	}

	LogResourceCreating(ctx.Observer, p.Name(), "release", release.Version)
	commands := []string{
		fmt.Sprintf("curl -fsSL -o %s %s", archive, release.URL(platform)),
		fmt.Sprintf("tar -xzf %s -C %s %s", archive, nebula.BinaryDir, strings.Join(nebulaBinaries, " ")),
		fmt.Sprintf("chmod +x %s", strings.Join(binaries, " ")),
		fmt.Sprintf("rm -f %s", archive),
	}
	for _, command := range commands {
		if _, err := run(ctx, p.Name(), command); err != nil {
			return fmt.Errorf("failed to install nebula %s: %w", release.Version, err)
		}
	}

	ctx.State.Installed = append(ctx.State.Installed, nebulaBinaries...)
	LogResourceCreated(ctx.Observer, p.Name(), "release", release.Version)
	return nil
}

// releasePlatform maps `uname -m` output to a release platform name.
func releasePlatform(machine string) (string, error) {
	switch machine {
	case "x86_64", "amd64":
		return "linux-amd64", nil
	case "aarch64", "arm64":
		return "linux-arm64", nil
	default:
		return "", fmt.Errorf("unsupported architecture %q", machine)
	}
}
