package nebula

import (
	"fmt"
	"net/netip"
	"path"
	"strconv"

	"github.com/imamik/nebuctl/internal/util/netutil"
	"github.com/imamik/nebuctl/internal/util/ptr"
)

const (
	// DefaultPort is the UDP port nebula listens on.
	DefaultPort = 4242
	// DefaultDevice is the name of the tun device.
	DefaultDevice = "nebula1"
	// DefaultInterval is the lighthouse update interval in seconds.
	DefaultInterval = 60
	// DNSPort is where the lighthouse DNS responder listens.
	DNSPort = 53

	listenAnyHost = "0.0.0.0"
)

// Layout is where the deployed files live on the remote host.
type Layout struct {
	Dir    string
	CA     string
	Cert   string
	Key    string
	Config string
}

// DefaultLayout returns the remote layout rooted at /etc/nebula.
func DefaultLayout() Layout {
	dir := "/etc/nebula"
	return Layout{
		Dir:    dir,
		CA:     path.Join(dir, "ca.crt"),
		Cert:   path.Join(dir, "host.crt"),
		Key:    path.Join(dir, "host.key"),
		Config: path.Join(dir, "config.yml"),
	}
}

// Network describes the mesh every node joins.
type Network struct {
	// Device is the tun device name.
	Device string
	// Block is the overlay network block.
	Block netip.Prefix
	// Gateway is the lighthouse's public underlay address.
	Gateway netip.Addr
	// Port is the UDP port of every node, the lighthouse included.
	Port int
}

// LighthouseAddress is the overlay address of the lighthouse.
func (n Network) LighthouseAddress() (netutil.NodeAddress, error) {
	return netutil.FirstUsable(n.Block)
}

// GatewayEndpoint is the public "host:port" of the lighthouse.
func (n Network) GatewayEndpoint() string {
	return netip.AddrPortFrom(n.Gateway, uint16(n.Port)).String() //nolint:gosec // port validated by Validate
}

// Validate checks the network for values that cannot be rendered.
func (n Network) Validate() error {
	if n.Device == "" {
		return fmt.Errorf("tun device name is required")
	}
	if !n.Block.IsValid() {
		return fmt.Errorf("network block is required")
	}
	if !n.Gateway.IsValid() {
		return fmt.Errorf("gateway address is required")
	}
	if n.Port <= 0 || n.Port > 65535 {
		return fmt.Errorf("invalid listen port %s", strconv.Itoa(n.Port))
	}
	return nil
}

func pki(layout Layout) *PKI {
	return &PKI{CA: layout.CA, Cert: layout.Cert, Key: layout.Key}
}

func allowAllFirewall() *Firewall {
	return &Firewall{
		Conntrack: true,
		Outbound:  []FirewallRule{AllowAll()},
		Inbound:   []FirewallRule{AllowAll()},
	}
}

// LighthouseConfig renders the configuration of the lighthouse. It serves
// DNS and has no static hosts.
func LighthouseConfig(layout Layout, network Network) (*Config, error) {
	if err := network.Validate(); err != nil {
		return nil, err
	}
	addr, err := network.LighthouseAddress()
	if err != nil {
		return nil, err
	}

	return &Config{
		PKI: pki(layout),
		Lighthouse: &Lighthouse{
			AmLighthouse: true,
			ServeDNS:     ptr.Bool(true),
			Interval:     DefaultInterval,
			DNS:          &DNS{Host: listenAnyHost, Port: DNSPort},
		},
		Listen:   &Listen{Host: listenAnyHost, Port: network.Port},
		Tun:      &Tun{Dev: network.Device, CIDR: addr.String()},
		Firewall: allowAllFirewall(),
	}, nil
}

// NodeConfig renders the configuration of an ordinary node at addr. The
// node knows the lighthouse through a single static host entry.
func NodeConfig(layout Layout, network Network, addr netutil.NodeAddress) (*Config, error) {
	if err := network.Validate(); err != nil {
		return nil, err
	}
	lighthouse, err := network.LighthouseAddress()
	if err != nil {
		return nil, err
	}
	if addr.Addr == network.Block.Masked().Addr() {
		return nil, fmt.Errorf("node address %s is the network address of %s", addr, network.Block)
	}
	if addr.Addr == lighthouse.Addr {
		return nil, fmt.Errorf("node address %s is reserved for the lighthouse", addr)
	}

	anchor := lighthouse.Addr.String()
	return &Config{
		PKI: pki(layout),
		StaticHostMap: StaticHostMap{
			anchor: {network.GatewayEndpoint()},
		},
		Lighthouse: &Lighthouse{
			AmLighthouse: false,
			Interval:     DefaultInterval,
			Hosts:        []string{anchor},
		},
		Listen:   &Listen{Host: listenAnyHost, Port: network.Port},
		Tun:      &Tun{Dev: network.Device, CIDR: addr.String()},
		Firewall: allowAllFirewall(),
	}, nil
}
