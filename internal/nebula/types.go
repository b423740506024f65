package nebula

import (
	"net/netip"
	"sort"

	"gopkg.in/yaml.v3"
)

// Any matches every port, proto, host or group in a firewall rule.
const Any = "any"

// Config is the root of a nebula configuration file.
type Config struct {
	PKI           *PKI          `yaml:"pki,omitempty"`
	StaticHostMap StaticHostMap `yaml:"static_host_map,omitempty"`
	Lighthouse    *Lighthouse   `yaml:"lighthouse,omitempty"`
	Listen        *Listen       `yaml:"listen,omitempty"`
	Punchy        *Punchy       `yaml:"punchy,omitempty"`
	Relay         *Relay        `yaml:"relay,omitempty"`
	Tun           *Tun          `yaml:"tun,omitempty"`
	Logging       *Logging      `yaml:"logging,omitempty"`
	Firewall      *Firewall     `yaml:"firewall,omitempty"`
}

// PKI points at the CA and this host's certificate and key.
type PKI struct {
	CA                string   `yaml:"ca,omitempty"`
	Cert              string   `yaml:"cert,omitempty"`
	Key               string   `yaml:"key,omitempty"`
	Blocklist         []string `yaml:"blocklist,omitempty"`
	DisconnectInvalid *bool    `yaml:"disconnect_invalid,omitempty"`
	InitiatingVersion *int     `yaml:"initiating_version,omitempty"`
}

// StaticHostMap maps a mesh address to the public "host:port" endpoints it
// is reachable on.
type StaticHostMap map[string][]string

// MarshalYAML renders the map with double-quoted keys and flow-style lists of
// double-quoted endpoints, keys in sorted order.
func (m StaticHostMap) MarshalYAML() (interface{}, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		list := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, endpoint := range m[k] {
			list.Content = append(list.Content, quoted(endpoint))
		}
		node.Content = append(node.Content, quoted(k), list)
	}
	return node, nil
}

func quoted(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

// Lighthouse configures discovery. Lighthouses answer queries, other nodes
// list the lighthouses they report to in Hosts.
type Lighthouse struct {
	AmLighthouse      bool                          `yaml:"am_lighthouse"`
	ServeDNS          *bool                         `yaml:"serve_dns,omitempty"`
	Interval          int                           `yaml:"interval"`
	Hosts             []string                      `yaml:"hosts,omitempty"`
	RemoteAllowList   map[string]bool               `yaml:"remote_allow_list,omitempty"`
	RemoteAllowRanges map[string]map[string]bool    `yaml:"remote_allow_ranges,omitempty"`
	LocalAllowList    *LocalAllowList               `yaml:"local_allow_list,omitempty"`
	AdvertiseAddrs    []string                      `yaml:"advertise_addrs,omitempty"`
	CalculatedRemotes map[string][]CalculatedRemote `yaml:"calculated_remotes,omitempty"`
	DNS               *DNS                          `yaml:"dns,omitempty"`
}

// DNS is the listener of the lighthouse DNS responder.
type DNS struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port"`
}

// LocalAllowList restricts which local interfaces and ranges are reported.
type LocalAllowList struct {
	Interfaces map[string]bool `yaml:"interfaces,omitempty"`
	CIDR       map[string]bool `yaml:"cidr,omitempty"`
}

// CalculatedRemote derives an underlay address from the overlay address.
type CalculatedRemote struct {
	Mask string `yaml:"mask,omitempty"`
	Port int    `yaml:"port"`
}

// Listen is the UDP underlay listener.
type Listen struct {
	Host          string `yaml:"host,omitempty"`
	Port          int    `yaml:"port"`
	Batch         *int   `yaml:"batch,omitempty"`
	ReadBuffer    *int   `yaml:"read_buffer,omitempty"`
	WriteBuffer   *int   `yaml:"write_buffer,omitempty"`
	SendRecvError string `yaml:"send_recv_error,omitempty"`
	SoMark        *int   `yaml:"so_mark,omitempty"`
}

// Punchy controls NAT hole punching.
type Punchy struct {
	Punch        bool   `yaml:"punch"`
	Respond      *bool  `yaml:"respond,omitempty"`
	Delay        string `yaml:"delay,omitempty"`
	RespondDelay string `yaml:"respond_delay,omitempty"`
}

// Relay configures relaying through other nodes.
type Relay struct {
	Relays    []string `yaml:"relays,omitempty"`
	AmRelay   bool     `yaml:"am_relay"`
	UseRelays bool     `yaml:"use_relays"`
}

// Tun is the overlay network device.
type Tun struct {
	Disabled           bool          `yaml:"disabled"`
	Dev                string        `yaml:"dev,omitempty"`
	CIDR               string        `yaml:"cidr,omitempty"`
	DropLocalBroadcast *bool         `yaml:"drop_local_broadcast,omitempty"`
	DropMulticast      *bool         `yaml:"drop_multicast,omitempty"`
	TxQueue            *int          `yaml:"tx_queue,omitempty"`
	MTU                *int          `yaml:"mtu,omitempty"`
	Routes             []RouteMTU    `yaml:"routes,omitempty"`
	UnsafeRoutes       []UnsafeRoute `yaml:"unsafe_routes,omitempty"`
}

// RouteMTU overrides the MTU for a route inside the overlay.
type RouteMTU struct {
	MTU   int    `yaml:"mtu"`
	Route string `yaml:"route,omitempty"`
}

// UnsafeRoute routes a non-overlay network through a mesh node.
type UnsafeRoute struct {
	Route   string `yaml:"route,omitempty"`
	Via     Via    `yaml:"via,omitempty"`
	MTU     *int   `yaml:"mtu,omitempty"`
	Metric  *int   `yaml:"metric,omitempty"`
	Install *bool  `yaml:"install,omitempty"`
}

// Via is the next hop of an unsafe route: either a ViaGateway or a
// ViaWeighted set of gateways.
type Via interface {
	isVia()
}

// ViaGateway is a single next-hop overlay address, written as a scalar.
type ViaGateway netip.Addr

func (ViaGateway) isVia() {}

// MarshalYAML writes the address as a plain string.
func (v ViaGateway) MarshalYAML() (interface{}, error) {
	return netip.Addr(v).String(), nil
}

// ViaWeighted balances traffic across several gateways, written as a list.
type ViaWeighted []WeightedGateway

func (ViaWeighted) isVia() {}

// WeightedGateway is one member of a ViaWeighted set.
type WeightedGateway struct {
	Gateway netip.Addr `yaml:"gateway"`
	Weight  int        `yaml:"weight"`
}

// Logging configures the daemon's own log output.
type Logging struct {
	Level            string `yaml:"level,omitempty"`
	Format           string `yaml:"format,omitempty"`
	DisableTimestamp *bool  `yaml:"disable_timestamp,omitempty"`
	TimestampFormat  string `yaml:"timestamp_format,omitempty"`
}

// Firewall holds the overlay firewall rules.
type Firewall struct {
	OutboundAction string         `yaml:"outbound_action,omitempty"`
	InboundAction  string         `yaml:"inbound_action,omitempty"`
	Conntrack      bool           `yaml:"conntrack"`
	Outbound       []FirewallRule `yaml:"outbound,omitempty"`
	Inbound        []FirewallRule `yaml:"inbound,omitempty"`
}

// FirewallRule matches traffic by port, protocol and peer identity.
type FirewallRule struct {
	Port      string   `yaml:"port,omitempty"`
	Proto     string   `yaml:"proto,omitempty"`
	Host      string   `yaml:"host,omitempty"`
	Group     string   `yaml:"group,omitempty"`
	Groups    []string `yaml:"groups,omitempty"`
	LocalCIDR string   `yaml:"local_cidr,omitempty"`
}

// AllowAll is a rule matching every packet.
func AllowAll() FirewallRule {
	return FirewallRule{Port: Any, Proto: Any, Host: Any}
}
