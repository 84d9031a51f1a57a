package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyart/eth-fee-crawler/feehistory"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	filename := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))

	return filename
}

func TestFrom_Defaults(t *testing.T) {
	filename := writeConfigFile(t, `
label: test
node_url: http://localhost:8545
redis_url: localhost:6379
from_block: 1000
`)

	conf, err := From(filename)
	require.NoError(t, err)

	assert.Equal(t, uint64(1100), conf.ToBlock)
	assert.Equal(t, uint64(25), conf.BatchSize)
	assert.Equal(t, feehistory.EncodingHex, conf.Encoding)
	assert.False(t, conf.Rolling)
}

func TestFrom_Encoding(t *testing.T) {
	filename := writeConfigFile(t, `
label: test
node_url: http://localhost:8545
redis_url: localhost:6379
block_count_encoding: number
reward_percentiles: [25.0, 50.0, 75.0]
`)

	conf, err := From(filename)
	require.NoError(t, err)
	assert.Equal(t, feehistory.EncodingNumber, conf.Encoding)
	assert.Equal(t, []float64{25.0, 50.0, 75.0}, conf.RewardPercentiles)

	t.Setenv("BLOCK_COUNT_ENCODING", "hex")

	conf, err = From(filename)
	require.NoError(t, err)
	assert.Equal(t, feehistory.EncodingHex, conf.Encoding)
}

func TestFrom_BatchSizeLimit(t *testing.T) {
	filename := writeConfigFile(t, `
node_url: http://localhost:8545
redis_url: localhost:6379
batch_size: 2048
`)

	_, err := From(filename)
	assert.Error(t, err)

	// The limit itself is a usable batch size: the crawl loop requests
	// exactly batch_size blocks per window.
	filename = writeConfigFile(t, `
node_url: http://localhost:8545
redis_url: localhost:6379
batch_size: 1024
`)

	conf, err := From(filename)
	require.NoError(t, err)
	assert.Equal(t, uint64(feehistory.MaxBlockCount), conf.BatchSize)
}

func TestFrom_EnvOverrides(t *testing.T) {
	filename := writeConfigFile(t, `
node_url: http://localhost:8545
redis_url: localhost:6379
`)

	t.Setenv("NODE_URL", "http://example.com:8545")
	t.Setenv("REDIS_URL", "redis://redis.example.com:6379")
	t.Setenv("ROLLING", "yes")

	conf, err := From(filename)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com:8545", conf.NodeUrl)
	assert.Equal(t, "redis.example.com:6379", conf.RedisUrl)
	assert.True(t, conf.Rolling)
}

func TestFrom_BadRolling(t *testing.T) {
	filename := writeConfigFile(t, `
node_url: http://localhost:8545
redis_url: localhost:6379
`)

	t.Setenv("ROLLING", "maybe")

	_, err := From(filename)
	assert.Error(t, err)
}

func TestChooseEncoding(t *testing.T) {
	assert.Equal(t, feehistory.EncodingNumber, chooseEncoding("number"))
	assert.Equal(t, feehistory.EncodingNumber, chooseEncoding("numeric"))
	assert.Equal(t, feehistory.EncodingHex, chooseEncoding("hex"))
	assert.Equal(t, feehistory.EncodingHex, chooseEncoding(""))
}
