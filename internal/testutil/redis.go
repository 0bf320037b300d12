//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
)

// configDBIndex matches inventory.ConfigDBIndex. It is repeated here since
// the inventory tests import this package.
const configDBIndex = 4

// ConfigDB returns a client on the test CONFIG_DB, flushed and loaded from
// testlab/seed/configdb.json.
func ConfigDB(t *testing.T) *redis.Client {
	t.Helper()

	client := RedisClient(t, configDBIndex)
	ctx := Context(t)
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flushing CONFIG_DB: %v", err)
	}
	seedConfigDB(t, ctx, client, SeedPath("configdb.json"))
	return client
}

// AddConfigDBEntry writes one more CONFIG_DB entry, as a device would after
// a port or port channel is created.
func AddConfigDBEntry(t *testing.T, client *redis.Client, table, key string, fields map[string]string) {
	t.Helper()

	if err := client.HSet(Context(t), table+"|"+key, hashArgs(fields)...).Err(); err != nil {
		t.Fatalf("writing %s|%s: %v", table, key, err)
	}
}

// seedConfigDB loads a seed file of the form {"TABLE": {"key": {fields}}}.
// Each entry becomes the hash "TABLE|key", written in one pipeline.
func seedConfigDB(t *testing.T, ctx context.Context, client *redis.Client, seedFile string) {
	t.Helper()

	data, err := os.ReadFile(seedFile)
	if err != nil {
		t.Fatalf("reading seed file: %v", err)
	}
	var tables map[string]map[string]map[string]string
	if err := json.Unmarshal(data, &tables); err != nil {
		t.Fatalf("parsing seed file %s: %v", seedFile, err)
	}

	pipe := client.Pipeline()
	for table, entries := range tables {
		for key, fields := range entries {
			pipe.HSet(ctx, table+"|"+key, hashArgs(fields)...)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		t.Fatalf("seeding CONFIG_DB from %s: %v", seedFile, err)
	}
}

// hashArgs flattens fields for HSET. Field-less entries, such as a loopback
// or a port channel member, carry SONiC's NULL placeholder.
func hashArgs(fields map[string]string) []interface{} {
	if len(fields) == 0 {
		return []interface{}{"NULL", "NULL"}
	}
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
