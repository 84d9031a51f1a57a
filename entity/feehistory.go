package entity

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// FeeHistory is the result of eth_feeHistory. Reward holds one row per block
// in the requested range, each row keyed to the requested percentiles; it is
// absent when no percentiles were requested.
type FeeHistory struct {
	OldestBlock   *hexutil.Big     `json:"oldestBlock"`
	BaseFeePerGas []*hexutil.Big   `json:"baseFeePerGas"`
	GasUsedRatio  []float64        `json:"gasUsedRatio"`
	Reward        [][]*hexutil.Big `json:"reward,omitempty"`
}

// Maps newest block of a queried window to its FeeHistory
type FeeHistoriesByBlockNumber map[uint64]*FeeHistory
