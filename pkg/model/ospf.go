package model

import (
	"fmt"

	"github.com/newtron-network/topobuild/pkg/util"
)

// OspfNetworkType is the OSPF network type of an interface
type OspfNetworkType string

const (
	OspfNetworkBroadcast         OspfNetworkType = "broadcast"
	OspfNetworkNonBroadcast      OspfNetworkType = "non-broadcast"
	OspfNetworkPointToMultipoint OspfNetworkType = "point-to-multipoint"
	OspfNetworkPointToPoint      OspfNetworkType = "point-to-point"
)

// Valid returns true for a known network type
func (n OspfNetworkType) Valid() bool {
	switch n {
	case OspfNetworkBroadcast, OspfNetworkNonBroadcast, OspfNetworkPointToMultipoint, OspfNetworkPointToPoint:
		return true
	}
	return false
}

// OspfAuthMethod is the OSPF interface authentication method
type OspfAuthMethod string

const (
	OspfAuthMessageDigest OspfAuthMethod = "message-digest"
	OspfAuthKeyChain      OspfAuthMethod = "key-chain"
	OspfAuthNull          OspfAuthMethod = "null"
)

// OspfBfdMode is the per-interface OSPF BFD setting
type OspfBfdMode string

const (
	OspfBfdEnabled  OspfBfdMode = "enabled"
	OspfBfdDisabled OspfBfdMode = "disabled"
	OspfBfdStrict   OspfBfdMode = "strict-mode"
)

// ospfKeyMaxLen is the longest OSPF authentication key accepted by devices
const ospfKeyMaxLen = 8

// OspfKey is an OSPF authentication key
type OspfKey struct {
	Value          string `json:"value" yaml:"value"`
	EncryptionType *int   `json:"encryption_type,omitempty" yaml:"encryption_type,omitempty"`
}

// NewOspfKey creates a key, truncating the value to 8 characters
func NewOspfKey(value string) *OspfKey {
	if len(value) > ospfKeyMaxLen {
		value = value[:ospfKeyMaxLen]
	}
	return &OspfKey{Value: value}
}

// OspfAuthentication configures OSPF interface authentication.
// keychain is set if and only if method is key-chain, and a key is only
// allowed with no method or message-digest.
type OspfAuthentication struct {
	Method   *OspfAuthMethod `json:"method,omitempty" yaml:"method,omitempty"`
	Keychain *string         `json:"keychain,omitempty" yaml:"keychain,omitempty"`
	Key      *OspfKey        `json:"key,omitempty" yaml:"key,omitempty"`
}

// NewOspfAuthentication builds and validates an authentication config
func NewOspfAuthentication(method *OspfAuthMethod, keychain *string, key *OspfKey) (*OspfAuthentication, error) {
	a := &OspfAuthentication{Method: method, Keychain: keychain, Key: key}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the method/keychain/key coupling
func (a *OspfAuthentication) Validate() error {
	var method OspfAuthMethod
	if a.Method != nil {
		method = *a.Method
		switch method {
		case OspfAuthMessageDigest, OspfAuthKeyChain, OspfAuthNull:
		default:
			return fmt.Errorf("%w: unknown method %q", util.ErrInvalidAuthConfig, method)
		}
	}
	if method == OspfAuthKeyChain && a.Keychain == nil {
		return fmt.Errorf("%w: when method is 'key-chain', keychain cannot be empty", util.ErrInvalidAuthConfig)
	}
	if method != OspfAuthKeyChain && a.Keychain != nil {
		return fmt.Errorf("%w: keychain can only be set if method is 'key-chain'", util.ErrInvalidAuthConfig)
	}
	if a.Key != nil && method != "" && method != OspfAuthMessageDigest {
		return fmt.Errorf("%w: key can only be set if method is unset or 'message-digest'", util.ErrInvalidAuthConfig)
	}
	if a.Key != nil && len(a.Key.Value) > ospfKeyMaxLen {
		return fmt.Errorf("%w: key longer than %d characters", util.ErrInvalidAuthConfig, ospfKeyMaxLen)
	}
	return nil
}

func (a *OspfAuthentication) clone() *OspfAuthentication {
	if a == nil {
		return nil
	}
	out := &OspfAuthentication{}
	if a.Method != nil {
		out.Method = util.Ptr(*a.Method)
	}
	if a.Keychain != nil {
		out.Keychain = util.Ptr(*a.Keychain)
	}
	if a.Key != nil {
		k := *a.Key
		if k.EncryptionType != nil {
			k.EncryptionType = util.Ptr(*k.EncryptionType)
		}
		out.Key = &k
	}
	return out
}

// OspfTimers are per-interface OSPF timers in seconds
type OspfTimers struct {
	Hello       *int `json:"hello,omitempty" yaml:"hello,omitempty"`
	Dead        *int `json:"dead,omitempty" yaml:"dead,omitempty"`
	DeadMinimal bool `json:"dead_minimal,omitempty" yaml:"dead_minimal,omitempty"` // sub-second hellos
	Retransmit  *int `json:"retransmit,omitempty" yaml:"retransmit,omitempty"`
}

// Validate checks every timer is within 1..65535
func (t *OspfTimers) Validate() error {
	v := &util.ValidationBuilder{}
	for _, timer := range []struct {
		name string
		val  *int
	}{{"hello", t.Hello}, {"dead", t.Dead}, {"retransmit", t.Retransmit}} {
		if timer.val != nil && (*timer.val < 1 || *timer.val > 65535) {
			v.AddErrorf("ospf timer %s must be between 1 and 65535, got %d", timer.name, *timer.val)
		}
	}
	v.Add(!(t.DeadMinimal && t.Dead != nil), "ospf dead timer cannot be both minimal and explicit")
	if err := v.Build(); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}
	return nil
}

// OspfConfig is the OSPF configuration of a routed port. process_id and
// area are either both set or both absent.
type OspfConfig struct {
	ProcessID      *int                `json:"process_id,omitempty" yaml:"process_id,omitempty"`
	Area           *int                `json:"area,omitempty" yaml:"area,omitempty"`
	NetworkType    *OspfNetworkType    `json:"network_type,omitempty" yaml:"network_type,omitempty"`
	Cost           *int                `json:"cost,omitempty" yaml:"cost,omitempty"`
	Priority       *int                `json:"priority,omitempty" yaml:"priority,omitempty"`
	Authentication *OspfAuthentication `json:"authentication,omitempty" yaml:"authentication,omitempty"`
	Timers         *OspfTimers         `json:"timers,omitempty" yaml:"timers,omitempty"`
	BFD            *OspfBfdMode        `json:"bfd,omitempty" yaml:"bfd,omitempty"`
}

// NewOspfConfig creates an OSPF config bound to a process and area
func NewOspfConfig(processID, area *int) (*OspfConfig, error) {
	c := &OspfConfig{ProcessID: processID, Area: area}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the process/area coupling and nested values
func (c *OspfConfig) Validate() error {
	if c.ProcessID != nil && c.Area == nil {
		return fmt.Errorf("%w: when 'process_id' is set, 'area' is required", util.ErrIncompleteOspfConfig)
	}
	if c.ProcessID == nil && c.Area != nil {
		return fmt.Errorf("%w: when 'area' is set, 'process_id' is required", util.ErrIncompleteOspfConfig)
	}
	if c.NetworkType != nil && !c.NetworkType.Valid() {
		return fmt.Errorf("%w: unknown OSPF network type %q", util.ErrInvalidConfig, *c.NetworkType)
	}
	if c.BFD != nil {
		switch *c.BFD {
		case OspfBfdEnabled, OspfBfdDisabled, OspfBfdStrict:
		default:
			return fmt.Errorf("%w: unknown OSPF BFD mode %q", util.ErrInvalidConfig, *c.BFD)
		}
	}
	if c.Authentication != nil {
		if err := c.Authentication.Validate(); err != nil {
			return err
		}
	}
	if c.Timers != nil {
		if err := c.Timers.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// SetAuthentication validates and attaches authentication
func (c *OspfConfig) SetAuthentication(a *OspfAuthentication) error {
	if a != nil {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	c.Authentication = a
	return nil
}

// SetArea rebinds the config to a process and area as a pair
func (c *OspfConfig) SetArea(processID, area *int) error {
	next := *c
	next.ProcessID, next.Area = processID, area
	if err := next.Validate(); err != nil {
		return err
	}
	c.ProcessID, c.Area = processID, area
	return nil
}

// Clone returns a deep copy; edits to the copy never reach the original
func (c *OspfConfig) Clone() *OspfConfig {
	if c == nil {
		return nil
	}
	out := &OspfConfig{Authentication: c.Authentication.clone()}
	if c.ProcessID != nil {
		out.ProcessID = util.Ptr(*c.ProcessID)
	}
	if c.Area != nil {
		out.Area = util.Ptr(*c.Area)
	}
	if c.NetworkType != nil {
		out.NetworkType = util.Ptr(*c.NetworkType)
	}
	if c.Cost != nil {
		out.Cost = util.Ptr(*c.Cost)
	}
	if c.Priority != nil {
		out.Priority = util.Ptr(*c.Priority)
	}
	if c.BFD != nil {
		out.BFD = util.Ptr(*c.BFD)
	}
	if c.Timers != nil {
		t := OspfTimers{DeadMinimal: c.Timers.DeadMinimal}
		if c.Timers.Hello != nil {
			t.Hello = util.Ptr(*c.Timers.Hello)
		}
		if c.Timers.Dead != nil {
			t.Dead = util.Ptr(*c.Timers.Dead)
		}
		if c.Timers.Retransmit != nil {
			t.Retransmit = util.Ptr(*c.Timers.Retransmit)
		}
		out.Timers = &t
	}
	return out
}
