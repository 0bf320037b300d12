package inventory

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/topobuild/pkg/util"
)

// File is the on-disk inventory format
//
//	groups: [switches, routers]
//	hosts:
//	  R1:
//	    groups: [routers]
//	    interfaces: [GigabitEthernet0/0, Port-channel1, Loopback0]
type File struct {
	Groups []string            `yaml:"groups"`
	Hosts  map[string]HostFile `yaml:"hosts"`
}

// HostFile is one host entry of an inventory file
type HostFile struct {
	Groups     []string `yaml:"groups"`
	Interfaces []string `yaml:"interfaces"`
}

// LoadFile reads a YAML inventory file
func LoadFile(path string) (*Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory: %w", err)
	}
	defer f.Close()

	inv, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading inventory %s: %w", path, err)
	}
	return inv, nil
}

// Parse reads a YAML inventory from r
func Parse(r io.Reader) (*Inventory, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing inventory: %w", err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return file.Build(), nil
}

// Validate checks the file for empty and duplicate names
func (f *File) Validate() error {
	v := &util.ValidationBuilder{}
	for name, h := range f.Hosts {
		v.Add(name != "", "host with empty name")
		seen := make(map[string]bool, len(h.Interfaces))
		for _, intf := range h.Interfaces {
			if intf == "" {
				v.AddErrorf("host %s: interface with empty name", name)
				continue
			}
			if seen[intf] {
				v.AddErrorf("host %s: duplicate interface %s", name, intf)
			}
			seen[intf] = true
		}
		for _, g := range h.Groups {
			v.Add(g != "", fmt.Sprintf("host %s: group with empty name", name))
		}
	}
	for _, g := range f.Groups {
		v.Add(g != "", "group with empty name")
	}
	return v.Build()
}

// Build creates an inventory from the file
func (f *File) Build() *Inventory {
	inv := New()
	for _, g := range f.Groups {
		inv.AddGroup(g)
	}
	for name, h := range f.Hosts {
		inv.AddHost(name, h.Groups...)
		for _, intf := range h.Interfaces {
			// host was just added, lookup cannot fail
			_, _ = inv.AddInterface(name, intf)
		}
	}
	return inv
}
