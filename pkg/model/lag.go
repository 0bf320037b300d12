package model

import "fmt"

// LagMode represents the LAG negotiation mode of a member link
type LagMode string

const (
	LagModeActive    LagMode = "active"    // LACP, actively sends PDUs
	LagModePassive   LagMode = "passive"   // LACP, only responds
	LagModeOn        LagMode = "on"        // static, no negotiation
	LagModeAuto      LagMode = "auto"      // PAgP
	LagModeDesirable LagMode = "desirable" // PAgP
)

// Valid returns true for a known LAG mode
func (m LagMode) Valid() bool {
	switch m {
	case LagModeActive, LagModePassive, LagModeOn, LagModeAuto, LagModeDesirable:
		return true
	}
	return false
}

// LagMemberConfig attaches a physical interface to a Port-channel
type LagMemberConfig struct {
	Group int     `json:"group" yaml:"group"`
	Mode  LagMode `json:"mode" yaml:"mode"`
}

// PortChannelName returns the logical interface name for a LAG group
func PortChannelName(group int) string {
	return fmt.Sprintf("Port-channel%d", group)
}
