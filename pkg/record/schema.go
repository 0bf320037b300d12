// Package record decodes workbook rows into typed records using an explicit
// per-table schema.
package record

// Kind is the value type a column is coerced to before decoding
type Kind int

const (
	String Kind = iota
	Int
	Bool
	Prefix        // network in CIDR notation, host bits cleared
	IPv4Interface // interface address in CIDR notation, host bits kept
	LagMode
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "integer"
	case Bool:
		return "boolean"
	case Prefix:
		return "IPv4 network"
	case IPv4Interface:
		return "IPv4 interface address"
	case LagMode:
		return "LAG mode"
	}
	return "unknown"
}

// Field is one known column of a table
type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// Schema lists the fields of a table. Columns not in Fields are dropped
// during decoding.
type Schema struct {
	Table  string
	Rename map[string]string // source header -> field name
	Fields []Field
}

// Field returns the field with the given name
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the field names in schema order
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// With returns a copy of the schema with extra fields appended
func (s Schema) With(fields ...Field) Schema {
	out := s
	out.Fields = append(append([]Field(nil), s.Fields...), fields...)
	return out
}

func req(name string, kind Kind) Field { return Field{Name: name, Kind: kind, Required: true} }
func opt(name string, kind Kind) Field { return Field{Name: name, Kind: kind} }

var sessionFields = []Field{
	opt("asn", Int),
	opt("description", String),
	opt("source_interface", String),
	opt("ebgp_multihop", Int),
	opt("password", String),
	opt("next_hop_self", Bool),
	opt("route_reflector_client", Bool),
	opt("send_community", String),
	opt("keepalive", Int),
	opt("hold", Int),
}

// Table schemas
var (
	VLANDefinitions = Schema{
		Table:  "vlan_definitions",
		Rename: map[string]string{"Use": "use", "ID": "vlan_id", "Name": "name"},
		Fields: []Field{req("vlan_id", Int), opt("name", String)},
	}

	PhysicalLinks = Schema{
		Table: "physical_links",
		Fields: []Field{
			req("a_host", String), req("a_interface", String), opt("a_description", String),
			opt("a_lag_group", Int), opt("a_lag_mode", LagMode),
			req("z_host", String), req("z_interface", String), opt("z_description", String),
			opt("z_lag_group", Int), opt("z_lag_mode", LagMode),
			opt("cdp_enabled", Bool),
		},
	}

	OspfTemplates = Schema{
		Table: "templates_ospf",
		Fields: []Field{
			req("template_name", String),
			opt("process_id", Int), opt("area", Int), opt("network_type", String),
			opt("cost", Int), opt("priority", Int),
		},
	}

	L3Links = Schema{
		Table: "l3_links",
		Fields: []Field{
			req("a_host", String), req("a_interface", String), opt("a_description", String),
			opt("a_vrf", String), opt("a_ipv4_address", IPv4Interface),
			req("z_host", String), req("z_interface", String), opt("z_description", String),
			opt("z_vrf", String), opt("z_ipv4_address", IPv4Interface),
			opt("ipv4_network", Prefix), opt("ospf_template", String), opt("bfd_template", String),
		},
	}

	L3Ports = Schema{
		Table: "l3_ports",
		Fields: []Field{
			req("host", String), req("interface", String), opt("description", String),
			opt("vrf", String), opt("ipv4_address", IPv4Interface), opt("ip_mtu", Int),
		},
	}

	BgpRouters = Schema{
		Table:  "bgp_routers",
		Fields: []Field{req("host", String), req("asn", Int), opt("router_id", String)},
	}

	BgpPeerGroups = Schema{
		Table:  "bgp_peer_groups",
		Fields: append([]Field{req("name", String)}, sessionFields...),
	}

	BgpNeighbors = Schema{
		Table: "bgp_neighbors",
		Fields: append([]Field{
			req("host", String), req("address", String), opt("peer_group", String), opt("shutdown", Bool),
		}, sessionFields...),
	}
)
