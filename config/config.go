package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/soyart/gsl/soyutils"

	"github.com/soyart/eth-fee-crawler/feehistory"
)

type Config struct {
	Label          string                        `yaml:"label" json:"label"`
	EncodingConfig string                        `yaml:"block_count_encoding" json:"-"`
	Encoding       feehistory.BlockCountEncoding `yaml:"-" json:"blockCountEncoding"` // Will be parsed based on EncodingConfig
	Rolling        bool                          `yaml:"rolling" json:"rolling"`

	NodeUrl  string `yaml:"node_url" json:"nodeUrl"`
	RedisUrl string `yaml:"redis_url" json:"redisUrl"`

	RewardPercentiles []float64 `yaml:"reward_percentiles" json:"rewardPercentiles"`

	FromBlock uint64 `yaml:"from_block" json:"fromBlock"`
	ToBlock   uint64 `yaml:"to_block" json:"toBlock"`
	BatchSize uint64 `yaml:"batch_size" json:"batchSize"`
}

func From(filename string) (*Config, error) {
	if envFilename, found := os.LookupEnv("CONF_FILE"); found {
		filename = envFilename
	}

	conf, err := soyutils.ReadFileYAMLPointer[Config](filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", filename)
	}

	// Defaults to 100 blocks
	if conf.ToBlock == 0 {
		conf.ToBlock = conf.FromBlock + 100
	}

	// Defaults to 25 blocks per eth_feeHistory window
	if conf.BatchSize == 0 {
		conf.BatchSize = 25
	}

	if conf.BatchSize > feehistory.MaxBlockCount {
		return nil, fmt.Errorf("batch_size %d exceeds eth_feeHistory block count limit %d", conf.BatchSize, feehistory.MaxBlockCount)
	}

	// Allow env override for NodeUrl
	if nodeUrl, found := os.LookupEnv("NODE_URL"); found {
		conf.NodeUrl = nodeUrl
	}

	if conf.NodeUrl == "" {
		return nil, errors.New("empty ethereum node url")
	}

	// Allow env override for RedisUrl
	if redisUrl, found := os.LookupEnv("REDIS_URL"); found {
		// Strip protocol string
		if strings.Contains(redisUrl, "redis://") {
			urlParts := strings.Split(redisUrl, "redis://")
			if len(urlParts) < 2 {
				return nil, fmt.Errorf("bad REDIS_URL env %s", redisUrl)
			}

			redisUrl = urlParts[1]
		}

		conf.RedisUrl = redisUrl
	}

	if conf.RedisUrl == "" {
		return nil, errors.New("empty redis url")
	}

	conf.Encoding = chooseEncoding(conf.EncodingConfig)

	if encoding, found := os.LookupEnv("BLOCK_COUNT_ENCODING"); found {
		conf.Encoding = chooseEncoding(encoding)
	}

	if label, found := os.LookupEnv("LABEL"); found {
		conf.Label = label
	}

	if rolling, found := os.LookupEnv("ROLLING"); found {
		switch strings.ToLower(rolling) {
		case "1", "true", "yes":
			conf.Rolling = true
		case "0", "false", "no":
			conf.Rolling = false

		default:
			return nil, fmt.Errorf("illegal ROLLING flag: %s", rolling)
		}
	}

	return conf, nil
}

func chooseEncoding(encodingConfig string) feehistory.BlockCountEncoding {
	switch strings.ToLower(encodingConfig) {
	case "number", "numeric", "native", "int":
		return feehistory.EncodingNumber
	default:
		return feehistory.EncodingHex
	}
}
