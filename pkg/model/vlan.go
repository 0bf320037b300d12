package model

import "sort"

// VLANDefinition is a VLAN declared for a group of switches
type VLANDefinition struct {
	VlanID int    `json:"vlan_id" yaml:"vlan_id" validate:"required,min=1,max=4094"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// SortVLANDefinitions sorts definitions by VLAN ID, keeping the table order
// of equal IDs.
func SortVLANDefinitions(defs []VLANDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].VlanID < defs[j].VlanID
	})
}
