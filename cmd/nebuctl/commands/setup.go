package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/nebuctl/cmd/nebuctl/handlers"
)

// Setup returns the setup command group.
func Setup(opts *handlers.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install and start nebula on a remote host",
	}

	cmd.AddCommand(SetupLighthouse(opts))
	cmd.AddCommand(SetupNode(opts))

	return cmd
}

// SetupLighthouse returns the setup lighthouse command.
func SetupLighthouse(opts *handlers.Options) *cobra.Command {
	var cidr, gateway string

	cmd := &cobra.Command{
		Use:   "lighthouse <[user@]host[:port]>",
		Short: "Set up the lighthouse of a new mesh",
		Long: `Set up the lighthouse of a new mesh.

The network block and the lighthouse's public address are stored in the
state directory and used by every later "setup node". The lighthouse takes
the first address of the block. Its certificate must already exist as
lighthouse.crt and lighthouse.key next to ca.crt in the state directory.

Example:
  nebuctl setup lighthouse root@203.0.113.10 --cidr 10.42.0.0/24 --gateway 203.0.113.10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SetupLighthouse(cmd.Context(), *opts, args[0], cidr, gateway)
		},
	}

	cmd.Flags().StringVar(&cidr, "cidr", "", "Overlay network block, e.g. 10.42.0.0/24 (required)")
	cmd.Flags().StringVar(&gateway, "gateway", "", "Public address nodes use to reach the lighthouse (required)")
	_ = cmd.MarkFlagRequired("cidr")
	_ = cmd.MarkFlagRequired("gateway")

	return cmd
}

// SetupNode returns the setup node command.
func SetupNode(opts *handlers.Options) *cobra.Command {
	var machine string

	cmd := &cobra.Command{
		Use:   "node <[user@]host[:port]>",
		Short: "Join a host to the mesh as an ordinary node",
		Long: `Join a host to the mesh as an ordinary node.

The node gets the next free address of the network block. A certificate
for it is signed locally with nebula-cert and the CA in the state directory.
The address is only consumed once nebula is running on the host, so a
failed run can simply be repeated.

Without --machine the name is asked for interactively.

Example:
  nebuctl setup node deploy@10.0.0.7:2222 --machine web-1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.SetupNode(cmd.Context(), *opts, args[0], machine)
		},
	}

	cmd.Flags().StringVarP(&machine, "machine", "m", "", "Certificate name of the node")

	return cmd
}
