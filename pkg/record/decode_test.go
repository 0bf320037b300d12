package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/table"
	"github.com/newtron-network/topobuild/pkg/util"
)

func row(index int, kv ...any) table.Row {
	r := table.NewRow(index)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

func TestDecodeRow_DropsUnknownAndNull(t *testing.T) {
	r := row(1, "use", 1, "vlan_id", 20, "name", nil, "comment", "ignored")
	got, err := DecodeRow[model.VLANDefinition](r, VLANDefinitions)
	if err != nil {
		t.Fatalf("DecodeRow() error = %v", err)
	}
	if got.VlanID != 20 || got.Name != "" {
		t.Errorf("got %+v", got)
	}
}

func TestDecodeRow_Coercion(t *testing.T) {
	tests := []struct {
		name string
		row  table.Row
		want int
	}{
		{"int", row(1, "vlan_id", 10), 10},
		{"float from spreadsheet", row(1, "vlan_id", 10.0), 10},
		{"string", row(1, "vlan_id", "10"), 10},
		{"string float", row(1, "vlan_id", "10.0"), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRow[model.VLANDefinition](tt.row, VLANDefinitions)
			if err != nil {
				t.Fatalf("DecodeRow() error = %v", err)
			}
			if got.VlanID != tt.want {
				t.Errorf("VlanID = %d, want %d", got.VlanID, tt.want)
			}
		})
	}
}

func TestDecodeRow_Malformed(t *testing.T) {
	tests := []struct {
		name      string
		schema    Schema
		row       table.Row
		wantField string
	}{
		{
			name:      "missing required",
			schema:    PhysicalLinks,
			row:       row(3, "a_host", "R1", "a_interface", "Gi0/0", "z_host", "R2"),
			wantField: "z_interface",
		},
		{
			name:      "whitespace is missing",
			schema:    L3Ports,
			row:       row(2, "host", "  ", "interface", "Gi0/0"),
			wantField: "host",
		},
		{
			name:      "bad integer",
			schema:    PhysicalLinks,
			row:       row(1, "a_host", "R1", "a_interface", "Gi0/0", "z_host", "R2", "z_interface", "Gi0/0", "a_lag_group", "one"),
			wantField: "a_lag_group",
		},
		{
			name:      "bad lag mode",
			schema:    PhysicalLinks,
			row:       row(1, "a_host", "R1", "a_interface", "Gi0/0", "z_host", "R2", "z_interface", "Gi0/0", "a_lag_mode", "lacp"),
			wantField: "a_lag_mode",
		},
		{
			name:      "bad network",
			schema:    L3Links,
			row:       row(1, "a_host", "R1", "a_interface", "Gi0/0", "z_host", "R2", "z_interface", "Gi0/0", "ipv4_network", "10.0.0.0"),
			wantField: "ipv4_network",
		},
		{
			name:      "network with host bits",
			schema:    L3Links,
			row:       row(4, "a_host", "R1", "a_interface", "Gi0/0", "z_host", "R2", "z_interface", "Gi0/0", "ipv4_network", "10.0.0.5/30"),
			wantField: "ipv4_network",
		},
		{
			name:      "float beyond int64",
			schema:    PhysicalLinks,
			row:       row(1, "a_host", "R1", "a_interface", "Gi0/0", "z_host", "R2", "z_interface", "Gi0/0", "a_lag_group", 1e19),
			wantField: "a_lag_group",
		},
		{
			name:      "string float beyond int64",
			schema:    PhysicalLinks,
			row:       row(1, "a_host", "R1", "a_interface", "Gi0/0", "z_host", "R2", "z_interface", "Gi0/0", "z_lag_group", "-1e19"),
			wantField: "z_lag_group",
		},
		{
			name:      "vlan out of range",
			schema:    VLANDefinitions,
			row:       row(5, "vlan_id", 5000),
			wantField: "vlan_id",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			switch tt.schema.Table {
			case PhysicalLinks.Table:
				_, err = DecodeRow[PhysicalLink](tt.row, tt.schema)
			case L3Links.Table:
				_, err = DecodeRow[L3Link](tt.row, tt.schema)
			case L3Ports.Table:
				_, err = DecodeRow[L3Port](tt.row, tt.schema)
			case VLANDefinitions.Table:
				_, err = DecodeRow[model.VLANDefinition](tt.row, tt.schema)
			}
			if !errors.Is(err, util.ErrMalformedRecord) {
				t.Fatalf("error = %v, want ErrMalformedRecord", err)
			}
			var recErr *util.RecordError
			if !errors.As(err, &recErr) {
				t.Fatal("expected *RecordError")
			}
			if recErr.Field != tt.wantField || recErr.Row != tt.row.Index || recErr.Table != tt.schema.Table {
				t.Errorf("RecordError = %+v, want field %s row %d", recErr, tt.wantField, tt.row.Index)
			}
		})
	}
}

func TestDecodeRow_IntegerOutOfRange(t *testing.T) {
	for _, v := range []any{1e19, -1e19, "9.3e18", uint64(1 << 63)} {
		r := row(2, "a_host", "R1", "a_interface", "Gi0/0", "z_host", "R2", "z_interface", "Gi0/0", "a_lag_group", v)
		_, err := DecodeRow[PhysicalLink](r, PhysicalLinks)
		var recErr *util.RecordError
		if !errors.As(err, &recErr) {
			t.Fatalf("%v: error = %v, want *RecordError", v, err)
		}
		if !strings.Contains(recErr.Detail, "out of range") {
			t.Errorf("%v: Detail = %q, want out of range", v, recErr.Detail)
		}
	}
}

func TestDecodeRow_PhysicalLink(t *testing.T) {
	r := row(1,
		"use", 1, "a_host", "R1", "a_interface", "Gi0/0", "a_lag_group", 1.0, "a_lag_mode", "Passive",
		"z_host", "R2", "z_interface", "Gi0/1", "cdp_enabled", "false")
	link, err := DecodeRow[PhysicalLink](r, PhysicalLinks)
	if err != nil {
		t.Fatalf("DecodeRow() error = %v", err)
	}
	if link.ALagGroup == nil || *link.ALagGroup != 1 {
		t.Errorf("ALagGroup = %v", link.ALagGroup)
	}
	if link.ALagMode == nil || *link.ALagMode != model.LagModePassive {
		t.Errorf("ALagMode = %v", link.ALagMode)
	}
	if link.ZLagGroup != nil || link.ZLagMode != nil {
		t.Error("absent z lag fields should stay nil")
	}
	if link.CdpEnabled == nil || *link.CdpEnabled {
		t.Errorf("CdpEnabled = %v", link.CdpEnabled)
	}
}

func TestDecodeRow_L3Link(t *testing.T) {
	r := row(1, "a_host", "R1", "a_interface", "Gi0/0", "a_vrf", "global", "a_ipv4_address", "10.1.1.1/31",
		"z_host", "R2", "z_interface", "Gi0/0", "ipv4_network", "10.0.0.0/30", "ospf_template", "CORE")
	link, err := DecodeRow[L3Link](r, L3Links)
	if err != nil {
		t.Fatalf("DecodeRow() error = %v", err)
	}
	if link.IPv4Network.String() != "10.0.0.0/30" {
		t.Errorf("IPv4Network = %s, want 10.0.0.0/30", link.IPv4Network)
	}
	if link.AIPv4Address.String() != "10.1.1.1/31" {
		t.Errorf("AIPv4Address = %s", link.AIPv4Address)
	}
	if link.HasExplicitAddresses() || !link.HasAddressing() {
		t.Error("only one explicit address; network provides addressing")
	}
	if *link.AVrf != "global" || link.ZVrf != nil {
		t.Errorf("vrf = %v / %v", link.AVrf, link.ZVrf)
	}
}

func TestDecodeRow_BgpNeighbor(t *testing.T) {
	r := row(1, "host", "R1", "address", "10.0.0.2", "asn", "65001", "peer_group", "RR-CLIENT",
		"next_hop_self", 1, "send_community", "both", "remarks", "x")
	n, err := DecodeRow[BgpNeighbor](r, BgpNeighbors)
	if err != nil {
		t.Fatalf("DecodeRow() error = %v", err)
	}
	if n.Host != "R1" || n.Address != "10.0.0.2" || *n.PeerGroup != "RR-CLIENT" {
		t.Errorf("got %+v", n)
	}
	if *n.ASN != 65001 || !*n.NextHopSelf || *n.SendCommunity != "both" {
		t.Errorf("session params = %+v", n.BgpSessionParams)
	}

	bad := row(2, "host", "R1", "address", "not-an-ip")
	if _, err := DecodeRow[BgpNeighbor](bad, BgpNeighbors); !errors.Is(err, util.ErrMalformedRecord) {
		t.Errorf("error = %v, want ErrMalformedRecord", err)
	}
}

func TestDecodeRow_BgpRouterASNRange(t *testing.T) {
	if _, err := DecodeRow[BgpRouter](row(1, "host", "R1", "asn", 0), BgpRouters); err == nil {
		t.Error("ASN 0 should be rejected")
	}
	if _, err := DecodeRow[BgpRouter](row(1, "host", "R1", "asn", 4294967296), BgpRouters); err == nil {
		t.Error("ASN above 4294967295 should be rejected")
	}
	r, err := DecodeRow[BgpRouter](row(1, "host", "R1", "asn", 4200000000, "router_id", "1.1.1.1"), BgpRouters)
	if err != nil || r.ASN != 4200000000 {
		t.Errorf("4-byte ASN = %+v, %v", r, err)
	}
}

func TestDecode_Policy(t *testing.T) {
	rows := []table.Row{
		row(1, "vlan_id", 10),
		row(2, "name", "no id"),
		row(3, "vlan_id", 30),
	}

	_, err := Decode[model.VLANDefinition](rows, VLANDefinitions, AbortOnMalformed)
	var recErr *util.RecordError
	if !errors.As(err, &recErr) || recErr.Row != 2 {
		t.Fatalf("abort policy error = %v", err)
	}

	res, err := Decode[model.VLANDefinition](rows, VLANDefinitions, SkipMalformed)
	if err != nil {
		t.Fatalf("skip policy error = %v", err)
	}
	if len(res.Records) != 2 || len(res.Skipped) != 1 {
		t.Fatalf("records = %d, skipped = %d", len(res.Records), len(res.Skipped))
	}
	if res.Records[1].Row != 3 || res.Records[1].Record.VlanID != 30 {
		t.Errorf("second record = %+v", res.Records[1])
	}
}

func TestOspfTemplate_Config(t *testing.T) {
	r := row(1, "template_name", "CORE", "process_id", 1, "area", 0, "network_type", "point-to-point", "cost", 10)
	tmpl, err := DecodeRow[OspfTemplate](r, OspfTemplates)
	if err != nil {
		t.Fatalf("DecodeRow() error = %v", err)
	}
	cfg, err := tmpl.Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if *cfg.ProcessID != 1 || *cfg.Area != 0 || *cfg.NetworkType != model.OspfNetworkPointToPoint {
		t.Errorf("cfg = %+v", cfg)
	}

	half := row(2, "template_name", "BAD", "process_id", 1)
	tmpl, err = DecodeRow[OspfTemplate](half, OspfTemplates)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmpl.Config(); !errors.Is(err, util.ErrIncompleteOspfConfig) {
		t.Errorf("Config() error = %v, want ErrIncompleteOspfConfig", err)
	}
}

func TestSchema_With(t *testing.T) {
	s := L3Ports.With(Field{Name: "extra", Kind: String})
	if _, ok := s.Field("extra"); !ok {
		t.Error("With() should add field")
	}
	if _, ok := L3Ports.Field("extra"); ok {
		t.Error("With() must not modify the original schema")
	}
}

func TestEach_StopsAtCallbackError(t *testing.T) {
	rows := []table.Row{row(1, "vlan_id", 10), row(2, "vlan_id", 20), row(3, "vlan_id", 30)}
	var seen []int
	stop := errors.New("stop")
	_, err := Each[model.VLANDefinition](rows, VLANDefinitions, AbortOnMalformed, func(d Decoded[model.VLANDefinition]) error {
		seen = append(seen, d.Record.VlanID)
		if d.Row == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("error = %v, want stop", err)
	}
	if len(seen) != 2 {
		t.Errorf("seen = %v, want rows 1 and 2 only", seen)
	}
}

func TestEach_MalformedAfterApplied(t *testing.T) {
	rows := []table.Row{row(1, "vlan_id", 10), row(2, "vlan_id", "ten"), row(3, "vlan_id", 30)}
	var seen []int
	_, err := Each[model.VLANDefinition](rows, VLANDefinitions, AbortOnMalformed, func(d Decoded[model.VLANDefinition]) error {
		seen = append(seen, d.Record.VlanID)
		return nil
	})
	if !errors.Is(err, util.ErrMalformedRecord) {
		t.Fatalf("error = %v", err)
	}
	if len(seen) != 1 || seen[0] != 10 {
		t.Errorf("rows before the malformed one should be applied, seen = %v", seen)
	}
}
