package valkey

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress() string {
	if v := os.Getenv("VALKEY_TEST_ADDRESS"); v != "" {
		return v
	}
	return "localhost:6379"
}

func TestKeyPrefixing(t *testing.T) {
	c := &Client{keyPrefix: "azplant:"}
	assert.Equal(t, "azplant:state", c.Key("state"))
	assert.Equal(t, "azplant:readings:latest", c.Key("readings", "latest"))
	assert.Equal(t, "azplant", c.Key())

	bare := &Client{}
	assert.Equal(t, "state", bare.Key("state"))
}

func TestHashRoundTrip(t *testing.T) {
	c, err := NewClient(Config{Address: testAddress(), KeyPrefix: "azplant-test"})
	if err != nil {
		t.Skip("No valkey")
	}
	defer c.Close()

	ctx := context.Background()
	key := c.Key("hash_roundtrip")
	c.Inner().Do(ctx, c.Inner().B().Del().Key(key).Build())

	missing, err := c.GetHash(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, missing)

	require.NoError(t, c.SetHash(ctx, key, map[string]string{"pump": "ON", "uv": "OFF"}))
	got, err := c.GetHash(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"pump": "ON", "uv": "OFF"}, got)
}
