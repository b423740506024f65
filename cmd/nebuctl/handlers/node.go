package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/imamik/nebuctl/internal/nebula"
	"github.com/imamik/nebuctl/internal/platform/ssh"
	"github.com/imamik/nebuctl/internal/provisioning"
	"github.com/imamik/nebuctl/internal/util/netutil"
)

// SetupNode provisions a node and joins it to the mesh recorded in the
// state directory.
//
// The node's overlay address comes from the machine id counter. The id is
// held under a lease for the whole run and consumed only when the run ends
// with the service active; a failed run leaves it for the next attempt.
func SetupNode(ctx context.Context, opts Options, rawTarget, machine string) (err error) {
	target, err := ssh.ParseTarget(rawTarget)
	if err != nil {
		return err
	}
	if results := checkPrerequisites(); results.HasErrors() {
		return results.Error()
	}
	name, err := resolveMachineName(ctx, machine)
	if err != nil {
		return err
	}

	store := newStore(opts.StateDir)
	block, err := store.ReadNetwork()
	if err != nil {
		return err
	}
	gateway, err := store.ReadGateway()
	if err != nil {
		return err
	}
	network, err := opts.network(block, gateway)
	if err != nil {
		return err
	}

	timeouts := loadTimeouts()
	lease, err := store.Acquire(ctx, timeouts.Lock)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := lease.Release(); releaseErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to release machine id lease: %w", releaseErr))
		}
	}()

	addr, err := netutil.DeriveAddress(network.Block, lease.ID())
	if err != nil {
		return fmt.Errorf("cannot assign machine id %d in %s: %w", lease.ID(), network.Block, err)
	}

	layout := nebula.DefaultLayout()
	cfg, err := nebula.NodeConfig(layout, network, addr)
	if err != nil {
		return err
	}
	configData, unit, err := render(cfg, layout)
	if err != nil {
		return err
	}

	deployment := &provisioning.Deployment{
		Name:   name,
		Role:   provisioning.RoleNode,
		Layout: layout,
		Credentials: provisioning.IssuedCredentials{
			Issuer:  newIssuer(opts.StateDir),
			Name:    name,
			Address: addr,
		},
		Config:  configData,
		Unit:    unit,
		Release: opts.release(),
	}

	session, err := newSession(target, opts.Identity, timeouts)
	if err != nil {
		return err
	}

	log.Printf("Setting up node %s (%s) on %s", name, addr, target)
	st, err := newOrchestrator(timeouts).Run(ctx, target, session, deployment)
	if err != nil {
		return fmt.Errorf("node setup on %s failed: %w", target, err)
	}
	if err := lease.Commit(); err != nil {
		return fmt.Errorf("node %s is running but the machine id counter was not advanced: %w", name, err)
	}

	fmt.Print(renderSummary(summary{
		Role:     provisioning.RoleNode,
		Name:     name,
		Target:   target,
		Address:  addr,
		Endpoint: network.GatewayEndpoint(),
		State:    st,
	}))
	return nil
}
