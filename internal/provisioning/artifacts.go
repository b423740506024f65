package provisioning

import (
	"fmt"
	"io/fs"
)

const (
	publicFileMode  fs.FileMode = 0o644
	privateFileMode fs.FileMode = 0o600
	// configDirMode keeps the key unreachable for other users while it is
	// being written.
	configDirMode fs.FileMode = 0o700
)

// ArtifactsPhase recreates the config directory and deploys the CA, the
// host certificate and key, and the rendered configuration.
type ArtifactsPhase struct{}

// Name implements the Phase interface.
func (ArtifactsPhase) Name() string {
	return "artifacts"
}

// Provision implements the Phase interface.
func (p ArtifactsPhase) Provision(ctx *Context) error {
	d := ctx.Deployment

	// Certificates come first so a signing failure leaves the host untouched.
	bundle, err := d.Credentials.Bundle(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain certificates for %s: %w", d.Name, err)
	}

	if _, err := run(ctx, p.Name(), fmt.Sprintf("rm -rf %s", d.Layout.Dir)); err != nil {
		return err
	}
	LogResourceDeleted(ctx.Observer, p.Name(), "directory", d.Layout.Dir)
	if _, err := run(ctx, p.Name(), fmt.Sprintf("mkdir -p -m %o %s", configDirMode, d.Layout.Dir)); err != nil {
		return err
	}

	files := []struct {
		path string
		data []byte
		perm fs.FileMode
	}{
		{d.Layout.CA, bundle.CA, publicFileMode},
		{d.Layout.Cert, bundle.Cert, publicFileMode},
		{d.Layout.Key, bundle.Key, privateFileMode},
		{d.Layout.Config, d.Config, publicFileMode},
	}
	for _, f := range files {
		if err := transfer(ctx, p.Name(), f.path, f.data, f.perm); err != nil {
			return err
		}
	}

	ctx.State.Stage = StageArtifactsDeployed
	return nil
}
