// Package inventory stores hosts, their interfaces and groups, and looks
// them up by name.
package inventory

import (
	"sort"
	"sync"

	"github.com/newtron-network/topobuild/pkg/model"
	"github.com/newtron-network/topobuild/pkg/util"
)

// Accessor looks up inventory entities by name. Misses return a
// *util.LookupError wrapping util.ErrUnknownEntity.
type Accessor interface {
	GetHost(name string) (*model.Host, error)
	GetInterface(host, name string) (*model.Interface, error)
	GetGroup(name string) (*model.Group, error)
}

// Inventory is an in-memory Accessor. Entities are only ever added; the
// objects it returns are the live model and are mutated in place by the
// builder.
type Inventory struct {
	mu     sync.RWMutex
	hosts  map[string]*model.Host
	groups map[string]*model.Group
}

var _ Accessor = (*Inventory)(nil)

// New creates an empty inventory
func New() *Inventory {
	return &Inventory{
		hosts:  make(map[string]*model.Host),
		groups: make(map[string]*model.Group),
	}
}

// AddGroup registers a group, returning the existing one if present
func (inv *Inventory) AddGroup(name string) *model.Group {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.addGroupLocked(name)
}

func (inv *Inventory) addGroupLocked(name string) *model.Group {
	if g, ok := inv.groups[name]; ok {
		return g
	}
	g := &model.Group{Name: name, Config: &model.GroupConfig{}}
	inv.groups[name] = g
	return g
}

// AddHost registers a host and adds it to the given groups, creating the
// groups as needed. Adding an existing host only extends its group list.
func (inv *Inventory) AddHost(name string, groups ...string) *model.Host {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	h, ok := inv.hosts[name]
	if !ok {
		h = model.NewHost(name)
		inv.hosts[name] = h
	}
	for _, g := range groups {
		inv.addGroupLocked(g)
		if !h.InGroup(g) {
			h.Groups = append(h.Groups, g)
		}
	}
	return h
}

// AddInterface registers an interface on an existing host. An interface
// that already exists is returned unchanged.
func (inv *Inventory) AddInterface(host, name string) (*model.Interface, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	h, ok := inv.hosts[host]
	if !ok {
		return nil, util.NewLookupError("host", host)
	}
	cfg := h.EnsureConfig()
	if intf, ok := cfg.Interfaces[name]; ok {
		return intf, nil
	}
	intf := model.NewInterface(name)
	cfg.Interfaces[name] = intf
	return intf, nil
}

// GetHost implements Accessor
func (inv *Inventory) GetHost(name string) (*model.Host, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	h, ok := inv.hosts[name]
	if !ok {
		return nil, util.NewLookupError("host", name)
	}
	return h, nil
}

// GetInterface implements Accessor. Interfaces are never created on lookup.
func (inv *Inventory) GetInterface(host, name string) (*model.Interface, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	h, ok := inv.hosts[host]
	if !ok {
		return nil, util.NewLookupError("host", host)
	}
	intf := h.Interface(name)
	if intf == nil {
		return nil, util.NewInterfaceLookupError(host, name)
	}
	return intf, nil
}

// GetGroup implements Accessor
func (inv *Inventory) GetGroup(name string) (*model.Group, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	g, ok := inv.groups[name]
	if !ok {
		return nil, util.NewLookupError("group", name)
	}
	return g, nil
}

// Hosts returns all hosts sorted by name
func (inv *Inventory) Hosts() []*model.Host {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	hosts := make([]*model.Host, 0, len(inv.hosts))
	for _, h := range inv.hosts {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].Name < hosts[j].Name })
	return hosts
}

// Groups returns all groups sorted by name
func (inv *Inventory) Groups() []*model.Group {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	groups := make([]*model.Group, 0, len(inv.groups))
	for _, g := range inv.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups
}

// Snapshot is the serializable form of an inventory
type Snapshot struct {
	Groups []*model.Group `json:"groups,omitempty" yaml:"groups,omitempty"`
	Hosts  []*model.Host  `json:"hosts" yaml:"hosts"`
}

// Snapshot returns the hosts and groups for output
func (inv *Inventory) Snapshot() *Snapshot {
	return &Snapshot{Groups: inv.Groups(), Hosts: inv.Hosts()}
}
