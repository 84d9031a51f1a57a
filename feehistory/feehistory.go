// Package feehistory builds and sends eth_feeHistory calls.
package feehistory

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/soyart/eth-fee-crawler/entity"
	"github.com/soyart/eth-fee-crawler/jsonrpc"
)

const methodFeeHistory = "eth_feeHistory"

// Block count bounds accepted by eth_feeHistory.
const (
	MinBlockCount = 1
	MaxBlockCount = 1024
)

var (
	ErrOutOfRange      = errors.New("value out of range")
	ErrMissingArgument = errors.New("missing argument")
)

// BlockCountEncoding selects the wire form of the blockCount param. Most
// nodes take a hex-quantity string; some older or non-standard nodes want a
// native JSON number.
type BlockCountEncoding int

const (
	EncodingHex BlockCountEncoding = iota
	EncodingNumber
)

func (e BlockCountEncoding) String() string {
	switch e {
	case EncodingHex:
		return "hex"
	case EncodingNumber:
		return "number"
	default:
		panic(fmt.Sprintf("bad encoding: %d", int(e)))
	}
}

// Caller sends a named method with positional params and decodes the typed
// result. Both *jsonrpc.Client and go-ethereum's *rpc.Client satisfy it.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

var _ Caller = (*jsonrpc.Client)(nil)
var _ Caller = (*gethrpc.Client)(nil)

// Builder shapes eth_feeHistory calls. It holds no per-call state and is
// safe for concurrent use; the block count encoding is fixed at
// construction.
type Builder struct {
	caller   Caller
	encoding BlockCountEncoding
}

func New(caller Caller, encoding BlockCountEncoding) (*Builder, error) {
	if caller == nil {
		return nil, errors.New("got nil rpc caller")
	}

	return &Builder{
		caller:   caller,
		encoding: encoding,
	}, nil
}

// Validate checks the call arguments without building anything. Checks run
// in order: block count bounds, missing newest block, then each percentile
// in sequence order; the first violation is returned.
//
// Reward percentiles are documented as monotonically non-decreasing, but
// ordering is not validated here; nodes accept and the protocol leaves it to
// the caller.
func (b *Builder) Validate(blockCount int, newestBlock *gethrpc.BlockNumber, rewardPercentiles []float64) error {
	if blockCount < MinBlockCount || blockCount > MaxBlockCount {
		return errors.Wrapf(ErrOutOfRange, "blockCount %d outside [%d, %d]", blockCount, MinBlockCount, MaxBlockCount)
	}

	if newestBlock == nil {
		return errors.Wrap(ErrMissingArgument, "newestBlock is nil")
	}

	for _, p := range rewardPercentiles {
		if p < 0 || p > 100 {
			return errors.Wrapf(ErrOutOfRange, "rewardPercentile %g outside [0, 100]", p)
		}
	}

	return nil
}

// BuildRequest validates the arguments and returns the request without
// sending it. An optional correlation id (at most one) is set on the request
// as-is; otherwise the transport assigns one at send time.
func (b *Builder) BuildRequest(blockCount int, newestBlock *gethrpc.BlockNumber, rewardPercentiles []float64, id ...uint64) (*jsonrpc.Request, error) {
	if err := b.Validate(blockCount, newestBlock, rewardPercentiles); err != nil {
		return nil, err
	}

	req := jsonrpc.NewRequest(methodFeeHistory, b.params(blockCount, newestBlock, rewardPercentiles)...)
	if len(id) > 0 {
		req.ID = id[0]
	}

	return req, nil
}

// FeeHistory validates and sends the call, returning the parsed result.
// Transport and node errors come back unchanged; nothing is retried at this
// layer. Request ids on this path are owned by the transport; use
// BuildRequest with jsonrpc.Client.Do to control the correlation id.
func (b *Builder) FeeHistory(ctx context.Context, blockCount int, newestBlock *gethrpc.BlockNumber, rewardPercentiles []float64) (*entity.FeeHistory, error) {
	if err := b.Validate(blockCount, newestBlock, rewardPercentiles); err != nil {
		return nil, err
	}

	result := new(entity.FeeHistory)
	if err := b.caller.CallContext(ctx, result, methodFeeHistory, b.params(blockCount, newestBlock, rewardPercentiles)...); err != nil {
		return nil, err
	}

	return result, nil
}

// params shapes the three positional params. The block reference's own JSON
// encoding is used as-is; nil percentiles become an empty sequence.
func (b *Builder) params(blockCount int, newestBlock *gethrpc.BlockNumber, rewardPercentiles []float64) []interface{} {
	if rewardPercentiles == nil {
		rewardPercentiles = []float64{}
	}

	return []interface{}{
		b.encodeBlockCount(blockCount),
		*newestBlock,
		rewardPercentiles,
	}
}

func (b *Builder) encodeBlockCount(blockCount int) interface{} {
	if b.encoding == EncodingNumber {
		return blockCount
	}

	return hexutil.EncodeUint64(uint64(blockCount))
}
