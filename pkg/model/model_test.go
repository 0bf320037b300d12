package model

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/newtron-network/topobuild/pkg/util"
)

func addr(s string) IPv4Address {
	return IPv4Address{Address: netip.MustParsePrefix(s)}
}

func secondary(s string) IPv4Address {
	a := addr(s)
	a.Secondary = util.Ptr(true)
	return a
}

// ===================== IPv4 Container Tests =====================

func TestNewIPv4Container(t *testing.T) {
	tests := []struct {
		name    string
		addrs   []IPv4Address
		wantErr error
	}{
		{"empty", nil, nil},
		{"single primary", []IPv4Address{addr("10.0.0.1/30")}, nil},
		{"primary and secondary", []IPv4Address{addr("10.0.0.1/30"), secondary("10.0.1.1/24")}, nil},
		{"explicit secondary false is primary", []IPv4Address{
			{Address: netip.MustParsePrefix("10.0.0.1/30"), Secondary: util.Ptr(false)},
			addr("10.0.1.1/24"),
		}, util.ErrMultiplePrimaryAddress},
		{"two primaries", []IPv4Address{addr("10.0.0.1/30"), addr("10.0.1.1/24")}, util.ErrMultiplePrimaryAddress},
		{"overlap same subnet", []IPv4Address{addr("10.0.0.1/30"), secondary("10.0.0.2/30")}, util.ErrAddressConflict},
		{"overlap wider network", []IPv4Address{addr("10.0.0.1/24"), secondary("10.0.0.130/30")}, util.ErrAddressConflict},
		{"all secondaries", []IPv4Address{secondary("10.0.0.1/30"), secondary("10.0.1.1/30")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewIPv4Container(tt.addrs...)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewIPv4Container() error = %v", err)
				}
				if len(c.Addresses) != len(tt.addrs) {
					t.Errorf("got %d addresses, want %d", len(c.Addresses), len(tt.addrs))
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewIPv4Container() error = %v, want %v", err, tt.wantErr)
			}
			if c != nil {
				t.Error("invalid container must not be returned")
			}
		})
	}
}

func TestIPv4Container_OverlapReportsPair(t *testing.T) {
	_, err := NewIPv4Container(addr("10.0.0.1/24"), secondary("10.0.0.9/30"))
	var conflict *util.AddressConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected AddressConflictError, got %v", err)
	}
	if conflict.Address != "10.0.0.1/24" || conflict.Other != "10.0.0.9/30" {
		t.Errorf("conflict pair = (%s, %s)", conflict.Address, conflict.Other)
	}
}

func TestIPv4Container_AddLeavesContainerUnchangedOnFailure(t *testing.T) {
	c, err := NewIPv4Container(addr("10.0.0.1/30"))
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Add(addr("192.168.0.1/24")); !errors.Is(err, util.ErrMultiplePrimaryAddress) {
		t.Errorf("second primary: error = %v", err)
	}
	if err := c.Add(secondary("10.0.0.2/30")); !errors.Is(err, util.ErrAddressConflict) {
		t.Errorf("overlap: error = %v", err)
	}
	if len(c.Addresses) != 1 || c.Addresses[0].Address.String() != "10.0.0.1/30" {
		t.Errorf("container changed after failed adds: %+v", c.Addresses)
	}

	if err := c.Add(secondary("192.168.0.1/24")); err != nil {
		t.Errorf("secondary add failed: %v", err)
	}
	if len(c.Addresses) != 2 {
		t.Errorf("got %d addresses, want 2", len(c.Addresses))
	}
}

func TestIPv4Address_Validate(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"10.0.0.1/30", false},
		{"10.0.0.0/30", true},
		{"10.0.0.3/30", true},
		{"10.0.0.0/31", false},
		{"10.255.255.1/32", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseIPv4Address(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIPv4Address(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, util.ErrInvalidAddressing) {
				t.Errorf("error should wrap ErrInvalidAddressing: %v", err)
			}
		})
	}
}

func TestIPv4Container_Primary(t *testing.T) {
	c, _ := NewIPv4Container(secondary("10.0.1.1/24"), addr("10.0.0.1/30"))
	p, ok := c.Primary()
	if !ok || p.Address.String() != "10.0.0.1/30" {
		t.Errorf("Primary() = %v, %v", p, ok)
	}
}

func TestIPv4Container_Clone(t *testing.T) {
	c, _ := NewIPv4Container(addr("10.0.0.1/30"), secondary("10.0.1.1/24"))
	cp := c.Clone()
	*cp.Addresses[1].Secondary = false
	cp.Addresses = append(cp.Addresses, secondary("10.0.2.1/24"))

	if !*c.Addresses[1].Secondary || len(c.Addresses) != 2 {
		t.Error("clone shares state with original")
	}
}

// ===================== Routed Port Tests =====================

func TestRouteportModel_AddIPv4Address(t *testing.T) {
	r := &RouteportModel{}
	if err := r.AddIPv4Address(addr("10.0.0.1/30")); err != nil {
		t.Fatal(err)
	}
	if r.IPv4 == nil || len(r.IPv4.Addresses) != 1 {
		t.Fatalf("container not created: %+v", r.IPv4)
	}
	if err := r.AddIPv4Address(addr("10.0.0.2/30")); !errors.Is(err, util.ErrAddressConflict) {
		t.Errorf("error = %v, want ErrAddressConflict", err)
	}
}

func TestRouteportModel_AddInvalidToFreshPort(t *testing.T) {
	r := &RouteportModel{}
	if err := r.AddIPv4Address(addr("10.0.0.0/30")); err == nil {
		t.Fatal("expected error for network address")
	}
	if r.IPv4 != nil {
		t.Error("failed add must not leave an empty container behind")
	}
}

func TestRouteportModel_SetVRF(t *testing.T) {
	tests := []struct {
		name string
		vrf  *string
		want bool
	}{
		{"nil", nil, false},
		{"empty", util.Ptr(""), false},
		{"global", util.Ptr("global"), false},
		{"named", util.Ptr("MGMT"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RouteportModel{}
			got := r.SetVRF(tt.vrf)
			if got != tt.want {
				t.Errorf("SetVRF() = %v, want %v", got, tt.want)
			}
			if (r.VRF != nil) != tt.want {
				t.Errorf("VRF attached = %v, want %v", r.VRF != nil, tt.want)
			}
		})
	}
}

func TestRouteportModel_SetOSPF(t *testing.T) {
	r := &RouteportModel{}
	if err := r.SetOSPF(&OspfConfig{ProcessID: util.Ptr(1)}); !errors.Is(err, util.ErrIncompleteOspfConfig) {
		t.Errorf("error = %v, want ErrIncompleteOspfConfig", err)
	}
	if r.OSPF != nil {
		t.Error("invalid OSPF config attached")
	}
	if err := r.SetOSPF(&OspfConfig{ProcessID: util.Ptr(1), Area: util.Ptr(0)}); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestRouteportModel_SetIPMTU(t *testing.T) {
	r := &RouteportModel{}
	if err := r.SetIPMTU(9000); err != nil || *r.IPMTU != 9000 {
		t.Errorf("SetIPMTU(9000) = %v", err)
	}
	if err := r.SetIPMTU(20); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("SetIPMTU(20) error = %v", err)
	}
}

// ===================== OSPF Tests =====================

func TestNewOspfConfig(t *testing.T) {
	tests := []struct {
		name      string
		processID *int
		area      *int
		wantErr   bool
	}{
		{"both set", util.Ptr(1), util.Ptr(0), false},
		{"both absent", nil, nil, false},
		{"process only", util.Ptr(1), nil, true},
		{"area only", nil, util.Ptr(0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOspfConfig(tt.processID, tt.area)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewOspfConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, util.ErrIncompleteOspfConfig) {
				t.Errorf("error should wrap ErrIncompleteOspfConfig: %v", err)
			}
		})
	}
}

func TestOspfConfig_SetArea(t *testing.T) {
	c, _ := NewOspfConfig(util.Ptr(1), util.Ptr(0))
	if err := c.SetArea(nil, util.Ptr(5)); err == nil {
		t.Fatal("expected error when clearing process_id only")
	}
	if *c.ProcessID != 1 || *c.Area != 0 {
		t.Error("failed SetArea modified config")
	}
	if err := c.SetArea(nil, nil); err != nil {
		t.Errorf("clearing both should succeed: %v", err)
	}
}

func TestOspfConfig_ValidateNested(t *testing.T) {
	nt := OspfNetworkType("nbma")
	if err := (&OspfConfig{NetworkType: &nt}).Validate(); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("bad network type error = %v", err)
	}
	bfd := OspfBfdMode("sometimes")
	if err := (&OspfConfig{BFD: &bfd}).Validate(); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("bad bfd mode error = %v", err)
	}
	timers := &OspfTimers{Hello: util.Ptr(0)}
	if err := (&OspfConfig{Timers: timers}).Validate(); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("bad timer error = %v", err)
	}
	timers = &OspfTimers{Dead: util.Ptr(40), DeadMinimal: true}
	if err := timers.Validate(); err == nil {
		t.Error("dead minimal with explicit dead should fail")
	}
}

func TestOspfConfig_Clone(t *testing.T) {
	pt := OspfNetworkPointToPoint
	orig := &OspfConfig{
		ProcessID:   util.Ptr(1),
		Area:        util.Ptr(0),
		NetworkType: &pt,
		Cost:        util.Ptr(10),
		Timers:      &OspfTimers{Hello: util.Ptr(1)},
		Authentication: &OspfAuthentication{
			Method: util.Ptr(OspfAuthMessageDigest),
			Key:    NewOspfKey("secret"),
		},
	}

	cp := orig.Clone()
	*cp.Cost = 100
	*cp.Timers.Hello = 10
	cp.Authentication.Key.Value = "changed"
	*cp.NetworkType = OspfNetworkBroadcast

	if *orig.Cost != 10 || *orig.Timers.Hello != 1 || orig.Authentication.Key.Value != "secret" || *orig.NetworkType != OspfNetworkPointToPoint {
		t.Error("Clone shares state with original")
	}
}

func TestOspfAuthentication(t *testing.T) {
	md5 := util.Ptr(OspfAuthMessageDigest)
	kc := util.Ptr(OspfAuthKeyChain)
	null := util.Ptr(OspfAuthNull)

	tests := []struct {
		name     string
		method   *OspfAuthMethod
		keychain *string
		key      *OspfKey
		wantErr  bool
	}{
		{"empty", nil, nil, nil, false},
		{"key-chain with keychain", kc, util.Ptr("KC1"), nil, false},
		{"key-chain without keychain", kc, nil, nil, true},
		{"keychain without key-chain method", md5, util.Ptr("KC1"), nil, true},
		{"keychain with no method", nil, util.Ptr("KC1"), nil, true},
		{"message-digest with key", md5, nil, NewOspfKey("abc"), false},
		{"no method with key", nil, nil, NewOspfKey("abc"), false},
		{"null method with key", null, nil, NewOspfKey("abc"), true},
		{"key-chain with key", kc, util.Ptr("KC1"), NewOspfKey("abc"), true},
		{"unknown method", util.Ptr(OspfAuthMethod("md5")), nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOspfAuthentication(tt.method, tt.keychain, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewOspfAuthentication() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, util.ErrInvalidAuthConfig) {
				t.Errorf("error should wrap ErrInvalidAuthConfig: %v", err)
			}
		})
	}
}

func TestOspfConfig_SetAuthentication(t *testing.T) {
	c := &OspfConfig{}
	bad := &OspfAuthentication{Method: util.Ptr(OspfAuthKeyChain)}
	if err := c.SetAuthentication(bad); !errors.Is(err, util.ErrInvalidAuthConfig) {
		t.Errorf("error = %v", err)
	}
	if c.Authentication != nil {
		t.Error("invalid authentication attached")
	}
}

func TestNewOspfKey_Truncates(t *testing.T) {
	if k := NewOspfKey("0123456789"); k.Value != "01234567" {
		t.Errorf("Value = %q, want 8 characters", k.Value)
	}
	if k := NewOspfKey("short"); k.Value != "short" {
		t.Errorf("Value = %q", k.Value)
	}
}

func TestOspfNetworkType_Valid(t *testing.T) {
	for _, nt := range []OspfNetworkType{OspfNetworkBroadcast, OspfNetworkNonBroadcast, OspfNetworkPointToMultipoint, OspfNetworkPointToPoint} {
		if !nt.Valid() {
			t.Errorf("%s should be valid", nt)
		}
	}
	if OspfNetworkType("loopback").Valid() {
		t.Error("loopback should not be valid")
	}
}

// ===================== Interface / Host Tests =====================

func TestConnect(t *testing.T) {
	a := NewInterface("Gi0/0")
	z := NewInterface("Gi0/1")
	Connect("R1", a, "R2", z)

	if *a.Neighbor != (InterfaceNeighbor{Host: "R2", Interface: "Gi0/1"}) {
		t.Errorf("a.Neighbor = %+v", a.Neighbor)
	}
	if *z.Neighbor != (InterfaceNeighbor{Host: "R1", Interface: "Gi0/0"}) {
		t.Errorf("z.Neighbor = %+v", z.Neighbor)
	}
}

func TestInterface_SetDescriptionIfAbsent(t *testing.T) {
	i := NewInterface("Gi0/0")
	if !i.SetDescriptionIfAbsent("to R2") {
		t.Fatal("first description should be set")
	}
	if i.SetDescriptionIfAbsent("to R3") {
		t.Error("second description should be ignored")
	}
	if i.SetDescriptionIfAbsent("") {
		t.Error("empty description should be ignored")
	}
	if *i.Description != "to R2" {
		t.Errorf("Description = %q", *i.Description)
	}
}

func TestInterface_IsLAG(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Port-channel1", true},
		{"port-channel10", true},
		{"GigabitEthernet0/0", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (&Interface{Name: tt.name}).IsLAG(); got != tt.want {
			t.Errorf("IsLAG(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPortChannelName(t *testing.T) {
	if got := PortChannelName(12); got != "Port-channel12" {
		t.Errorf("PortChannelName(12) = %s", got)
	}
}

func TestLagMode_Valid(t *testing.T) {
	if !LagModeActive.Valid() || !LagModeOn.Valid() {
		t.Error("active/on should be valid")
	}
	if LagMode("lacp").Valid() {
		t.Error("lacp should not be valid")
	}
}

func TestHost_EnsureBGP(t *testing.T) {
	h := &Host{Name: "R1"}
	bgp, created := h.EnsureBGP(65001)
	if !created || bgp.ASN != 65001 {
		t.Fatalf("EnsureBGP = %+v, %v", bgp, created)
	}
	again, created := h.EnsureBGP(65002)
	if created || again != bgp || again.ASN != 65001 {
		t.Errorf("second EnsureBGP should keep first ASN: %+v, %v", again, created)
	}
	if h.BGP() != bgp {
		t.Error("BGP() should return the process")
	}
}

func TestHost_InterfaceNames(t *testing.T) {
	h := NewHost("R1")
	h.Config.Interfaces["Gi0/1"] = NewInterface("Gi0/1")
	h.Config.Interfaces["Gi0/0"] = NewInterface("Gi0/0")
	names := h.InterfaceNames()
	if len(names) != 2 || names[0] != "Gi0/0" {
		t.Errorf("InterfaceNames() = %v", names)
	}
	if h.Interface("Gi0/1") == nil || h.Interface("Gi9/9") != nil {
		t.Error("Interface lookup mismatch")
	}
}

func TestSortVLANDefinitions(t *testing.T) {
	defs := []VLANDefinition{{VlanID: 30, Name: "c"}, {VlanID: 10, Name: "a"}, {VlanID: 20, Name: "b"}, {VlanID: 10, Name: "a2"}}
	SortVLANDefinitions(defs)
	want := []string{"a", "a2", "b", "c"}
	for i, d := range defs {
		if d.Name != want[i] {
			t.Errorf("defs[%d] = %s, want %s", i, d.Name, want[i])
		}
	}
}

// ===================== BGP Tests =====================

func TestBgpProcess_AttachPeerGroupAppendsDuplicates(t *testing.T) {
	b := &BgpProcess{ASN: 65000}
	pg := &BgpPeerGroup{Name: "RR-CLIENT"}
	b.AttachPeerGroup(pg)
	b.AttachPeerGroup(pg)
	if len(b.PeerGroups) != 2 {
		t.Errorf("got %d peer groups, want 2", len(b.PeerGroups))
	}
	if b.PeerGroup("RR-CLIENT") != pg || b.PeerGroup("missing") != nil {
		t.Error("PeerGroup lookup mismatch")
	}
}

func TestBgpProcess_Neighbors(t *testing.T) {
	b := &BgpProcess{ASN: 65000}
	asn := int64(65000)
	b.AddNeighbor(&BgpNeighbor{Address: "10.0.0.2", BgpSessionParams: BgpSessionParams{ASN: &asn}})
	n := b.Neighbor("10.0.0.2")
	if n == nil || !n.IsIBGP(65000) {
		t.Errorf("Neighbor = %+v", n)
	}
}

func TestBgpPeerGroup_Clone(t *testing.T) {
	pg := &BgpPeerGroup{Name: "SPINES", BgpSessionParams: BgpSessionParams{
		ASN:         util.Ptr(int64(65100)),
		NextHopSelf: util.Ptr(true),
	}}
	cp := pg.Clone()
	*cp.ASN = 1
	*cp.NextHopSelf = false
	if *pg.ASN != 65100 || !*pg.NextHopSelf {
		t.Error("Clone shares state with original")
	}
}

func TestFindPeerGroup_FirstMatch(t *testing.T) {
	first := &BgpPeerGroup{Name: "A", BgpSessionParams: BgpSessionParams{Description: util.Ptr("first")}}
	groups := []*BgpPeerGroup{first, {Name: "A"}, {Name: "B"}}
	if FindPeerGroup(groups, "A") != first {
		t.Error("FindPeerGroup should return the first match")
	}
	if FindPeerGroup(groups, "C") != nil {
		t.Error("FindPeerGroup should return nil on miss")
	}
}
