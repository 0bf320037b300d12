package model

// GlobalVRF is the name used in tables for the default routing table
const GlobalVRF = "global"

// IsGlobalVRF returns true when a VRF value means "no VRF": absent, empty,
// or the "global" sentinel.
func IsGlobalVRF(vrf *string) bool {
	return vrf == nil || *vrf == "" || *vrf == GlobalVRF
}
