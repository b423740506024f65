// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nebuctl/cmd/nebuctl/handlers"
	"github.com/imamik/nebuctl/internal/nebula"
	"github.com/imamik/nebuctl/internal/provisioning"
)

// Root returns the root command for the nebuctl CLI.
func Root() *cobra.Command {
	opts := &handlers.Options{}

	cmd := &cobra.Command{
		Use:           "nebuctl",
		Short:         "Provision Nebula mesh networks over SSH",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.StateDir, "state-dir", ".", "Directory holding the CA, certificates and network state")
	flags.StringVarP(&opts.Identity, "identity", "i", "~/.ssh/id_rsa", "SSH private key used to log in to the target")
	flags.StringVar(&opts.NebulaVersion, "nebula-version", provisioning.DefaultRelease().Version, "Nebula release to install on the target")
	flags.IntVar(&opts.Port, "port", nebula.DefaultPort, "UDP port nebula listens on")
	flags.StringVar(&opts.Device, "dev", nebula.DefaultDevice, "Name of the nebula tun device")

	cmd.AddCommand(Setup(opts))
	cmd.AddCommand(Version())

	return cmd
}
