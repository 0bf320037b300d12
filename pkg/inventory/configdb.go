package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/topobuild/pkg/util"
)

// ConfigDBIndex is the Redis database number of SONiC CONFIG_DB
const ConfigDBIndex = 4

// DefaultRedisAddr is where Redis listens on a SONiC device
const DefaultRedisAddr = "127.0.0.1:6379"

// CONFIG_DB tables whose keys name interfaces
var configDBInterfaceTables = []string{"PORT", "PORTCHANNEL", "LOOPBACK_INTERFACE"}

// ConfigDBOptions configures a CONFIG_DB connection. When SSHHost is set the
// connection goes through an SSH tunnel to the device's loopback Redis.
type ConfigDBOptions struct {
	Addr    string
	SSHHost string
	SSHUser string
	SSHPass string
}

// ConfigDB is a connection to a device's CONFIG_DB
type ConfigDB struct {
	client *redis.Client
	tunnel *SSHTunnel
}

// DialConfigDB connects to CONFIG_DB and verifies the connection
func DialConfigDB(ctx context.Context, opts ConfigDBOptions) (*ConfigDB, error) {
	addr := opts.Addr
	if addr == "" {
		addr = DefaultRedisAddr
	}

	db := &ConfigDB{}
	if opts.SSHHost != "" {
		tun, err := NewSSHTunnel(opts.SSHHost, opts.SSHUser, opts.SSHPass, addr)
		if err != nil {
			return nil, err
		}
		db.tunnel = tun
		addr = tun.LocalAddr()
	}

	db.client = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   ConfigDBIndex,
	})
	if err := db.client.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to CONFIG_DB at %s: %w", addr, err)
	}
	return db, nil
}

// Client returns the underlying Redis client
func (c *ConfigDB) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection and the tunnel, if any
func (c *ConfigDB) Close() error {
	var err error
	if c.client != nil {
		err = c.client.Close()
	}
	if c.tunnel != nil {
		if terr := c.tunnel.Close(); err == nil {
			err = terr
		}
	}
	return err
}

// SeedFromConfigDB registers the interfaces found in a device's CONFIG_DB on
// host, creating the host if needed. It returns the interface names added,
// sorted.
func (inv *Inventory) SeedFromConfigDB(ctx context.Context, client redis.Cmdable, host string, groups ...string) ([]string, error) {
	names, err := ConfigDBInterfaces(ctx, client)
	if err != nil {
		return nil, err
	}

	inv.AddHost(host, groups...)
	for _, name := range names {
		if _, err := inv.AddInterface(host, name); err != nil {
			return nil, err
		}
	}
	util.WithHost(host).Infof("Seeded %d interfaces from CONFIG_DB", len(names))
	return names, nil
}

// ConfigDBInterfaces lists interface names from CONFIG_DB, translated to the
// names used in design tables
func ConfigDBInterfaces(ctx context.Context, client redis.Cmdable) ([]string, error) {
	seen := make(map[string]bool)
	for _, table := range configDBInterfaceTables {
		keys, err := client.Keys(ctx, table+"|*").Result()
		if err != nil {
			return nil, fmt.Errorf("reading %s keys: %w", table, err)
		}
		for _, key := range keys {
			if name, ok := InterfaceFromKey(key); ok {
				seen[name] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// InterfaceFromKey extracts the interface name from a CONFIG_DB key.
// Address sub-keys such as "LOOPBACK_INTERFACE|Loopback0|10.0.0.1/32" name
// the same interface. SONiC "PortChannelN" becomes "Port-channelN".
func InterfaceFromKey(key string) (string, bool) {
	parts := strings.Split(key, "|")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	name := parts[1]
	if n, ok := strings.CutPrefix(name, "PortChannel"); ok {
		name = "Port-channel" + n
	}
	return name, true
}
