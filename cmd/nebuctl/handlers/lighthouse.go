package handlers

import (
	"context"
	"fmt"
	"log"
	"net/netip"

	"github.com/imamik/nebuctl/internal/nebula"
	"github.com/imamik/nebuctl/internal/pki"
	"github.com/imamik/nebuctl/internal/platform/ssh"
	"github.com/imamik/nebuctl/internal/provisioning"
	"github.com/imamik/nebuctl/internal/util/netutil"
)

// SetupLighthouse provisions the lighthouse of a new mesh.
//
// It records the network block and the lighthouse's public address in the
// state directory, starts the machine id counter if it does not exist yet,
// and deploys the pre-issued lighthouse certificate with a lighthouse config.
func SetupLighthouse(ctx context.Context, opts Options, rawTarget, cidr, gateway string) error {
	target, err := ssh.ParseTarget(rawTarget)
	if err != nil {
		return err
	}
	block, err := netutil.ParseBlock(cidr)
	if err != nil {
		return err
	}
	gw, err := netip.ParseAddr(gateway)
	if err != nil {
		return fmt.Errorf("invalid gateway address %q: %w", gateway, err)
	}
	network, err := opts.network(block, gw)
	if err != nil {
		return err
	}

	layout := nebula.DefaultLayout()
	cfg, err := nebula.LighthouseConfig(layout, network)
	if err != nil {
		return err
	}
	configData, unit, err := render(cfg, layout)
	if err != nil {
		return err
	}
	addr, err := network.LighthouseAddress()
	if err != nil {
		return err
	}

	store := newStore(opts.StateDir)
	if err := store.WriteNetwork(network.Block); err != nil {
		return err
	}
	if err := store.WriteGateway(network.Gateway); err != nil {
		return err
	}
	created, err := store.InitCounter()
	if err != nil {
		return err
	}
	if created {
		log.Printf("Initialized machine id counter in %s", store.Dir())
	}

	deployment := &provisioning.Deployment{
		Name:   pki.LighthouseName,
		Role:   provisioning.RoleLighthouse,
		Layout: layout,
		Credentials: provisioning.StoredCredentials{
			Issuer: newIssuer(opts.StateDir),
			Name:   pki.LighthouseName,
		},
		Config:  configData,
		Unit:    unit,
		Release: opts.release(),
	}

	timeouts := loadTimeouts()
	session, err := newSession(target, opts.Identity, timeouts)
	if err != nil {
		return err
	}

	log.Printf("Setting up lighthouse on %s", target)
	st, err := newOrchestrator(timeouts).Run(ctx, target, session, deployment)
	if err != nil {
		return fmt.Errorf("lighthouse setup on %s failed: %w", target, err)
	}

	fmt.Print(renderSummary(summary{
		Role:     provisioning.RoleLighthouse,
		Name:     pki.LighthouseName,
		Target:   target,
		Address:  addr,
		Endpoint: network.GatewayEndpoint(),
		State:    st,
	}))
	return nil
}
