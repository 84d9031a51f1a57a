package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/soyart/eth-fee-crawler/config"
	"github.com/soyart/eth-fee-crawler/entity"
	"github.com/soyart/eth-fee-crawler/feehistory"
	"github.com/soyart/eth-fee-crawler/jsonrpc"
	"github.com/soyart/eth-fee-crawler/rdb"
)

func panicf(fmtString string, vars ...interface{}) {
	panic(fmt.Sprintf(fmtString, vars...))
}

func main() {
	configFile := "./config/config.yaml"

	conf, err := config.From(configFile)
	if err != nil {
		panicf("failed to read config %s: %s", configFile, err.Error())
	}

	logger, err := zap.NewProduction(zap.Fields(zap.String("serviceLabel", conf.Label), zap.String("blockCountEncoding", conf.Encoding.String())))
	if err != nil {
		panicf("failed to init logger: %s", err.Error())
	}

	confJson, err := json.Marshal(conf)
	if err != nil {
		panicf("failed to json marshal conf: %s", err.Error())
	}

	logger.Info("config", zap.String("values", string(confJson)))

	ctx := context.Background()
	client, err := jsonrpc.NewClient(conf.NodeUrl)
	if err != nil {
		panicf("failed to create json-rpc client on %s: %s", conf.NodeUrl, err.Error())
	}

	logger.Info("created new json-rpc client", zap.String("url", conf.NodeUrl))

	builder, err := feehistory.New(client, conf.Encoding)
	if err != nil {
		panicf("failed to create fee history builder: %s", err.Error())
	}

	rdw, err := rdb.New(conf.RedisUrl)
	if err != nil {
		panicf("failed to create new redis wrapper client on %s: %s", conf.RedisUrl, err.Error())
	}

	logger.Info("created new redis client wrapper", zap.String("url", conf.RedisUrl))

	logger.Info("starting main loop")

	if err := getAndSaveFeeHistories(
		ctx,
		logger,
		client,
		builder,
		rdw,
		conf.RewardPercentiles,
		conf.FromBlock,
		conf.ToBlock,
		conf.BatchSize,
		conf.Rolling,
		3*time.Second,
	); err != nil {
		logger.Error("got error in main loop", zap.String("error", err.Error()))

		panicf("main loop failed: %s", err.Error())
	}
}

func getAndSaveFeeHistories(
	ctx context.Context,
	logger *zap.Logger,
	caller feehistory.Caller,
	builder *feehistory.Builder,
	rdw rdb.RedisWrapper,
	rewardPercentiles []float64,
	fromBlock uint64,
	toBlock uint64,
	batchSize uint64,
	rolling bool,
	headPollInterval time.Duration,
) error {
	lastRecordedBlock, err := rdw.GetLastRecordedBlock(ctx)
	if err != nil {
		return errors.Wrap(err, "redis error")
	}

	// First run
	var firstRun bool
	if lastRecordedBlock == 0 {
		firstRun = true
		lastRecordedBlock = fromBlock
	}

	logger.Info("starting looping", zap.Uint64("lastRecordedBlock", lastRecordedBlock), zap.Uint64("toBlock", toBlock))

	for rolling || lastRecordedBlock < toBlock {
		var thisFromBlock uint64
		if firstRun {
			thisFromBlock = lastRecordedBlock
		} else {
			thisFromBlock = lastRecordedBlock + 1
		}

		// Window spans exactly batchSize blocks, so batchSize stays within
		// the eth_feeHistory block count limit.
		thisToBlock := thisFromBlock + batchSize - 1

		currentBlock, err := blockNumber(ctx, caller)
		if err != nil {
			return errors.Wrap(err, "failed to get current block number")
		}

		// Chop to most current block
		if thisToBlock > currentBlock {
			thisToBlock = currentBlock
		}

		if !rolling && thisToBlock > toBlock {
			thisToBlock = toBlock
		}

		// Head has not reached the window yet
		if thisToBlock < thisFromBlock {
			logger.Info("no new blocks", zap.Uint64("currentBlock", currentBlock), zap.Uint64("thisFromBlock", thisFromBlock))
			time.Sleep(headPollInterval)
			continue
		}

		numberOfBlocks := int(thisToBlock - thisFromBlock + 1)
		logger.Info("new loop", zap.Int("expected number of blocks", numberOfBlocks), zap.Uint64("lastRecordedBlock", lastRecordedBlock), zap.Uint64("thisFromBlock", thisFromBlock), zap.Uint64("thisToBlock", thisToBlock))

		newestBlock := gethrpc.BlockNumber(thisToBlock)
		history, err := builder.FeeHistory(ctx, numberOfBlocks, &newestBlock, rewardPercentiles)
		if err != nil {
			return errors.Wrapf(err, "failed to get fee history for window %d - %d", thisFromBlock, thisToBlock)
		}

		logger.Info("got fee history", zap.Uint64("newestBlock", thisToBlock), zap.Int("baseFees", len(history.BaseFeePerGas)), zap.Int("rewardRows", len(history.Reward)))

		historyByBlock := entity.FeeHistoriesByBlockNumber{
			thisToBlock: history,
		}

		logger.Info("saving to redis", zap.Int("len", len(historyByBlock)), zap.Uint64("thisFromBlock", thisFromBlock), zap.Uint64("thisToBlock", thisToBlock))

		if err := rdw.SaveFeeHistories(ctx, historyByBlock); err != nil {
			return errors.Wrap(err, "failed to save fee history data to redis")
		}

		if err := rdw.SetLastRecordedBlock(ctx, thisToBlock); err != nil {
			return errors.Wrap(err, "failed to save lastRecordedBlock")
		}

		lastRecordedBlock = thisToBlock
		firstRun = false
	}

	return nil
}

func blockNumber(ctx context.Context, caller feehistory.Caller) (uint64, error) {
	var head hexutil.Uint64
	if err := caller.CallContext(ctx, &head, "eth_blockNumber"); err != nil {
		return 0, err
	}

	return uint64(head), nil
}
