package rdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/soyart/gsl/concurrent"

	"github.com/soyart/eth-fee-crawler/entity"
)

type RedisWrapper interface {
	SaveFeeHistories(context.Context, entity.FeeHistoriesByBlockNumber) error

	SetLastRecordedBlock(context.Context, uint64) error
	GetLastRecordedBlock(context.Context) (uint64, error)
}

type redisWrapper struct {
	db *redis.Client
}

func New(redisUrl string) (RedisWrapper, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisUrl,
	})

	if rdb == nil {
		return nil, errors.New("got nil redis client")
	}

	return &redisWrapper{db: rdb}, nil
}

func feeHistoryKey() string {
	return "ethfeecrawler:feehistory"
}

func lastRecordedBlockKey() string {
	return "ethfeecrawler:lastRecordedBlock"
}

func (rdw *redisWrapper) SaveFeeHistories(ctx context.Context, historyByBlockNumber entity.FeeHistoriesByBlockNumber) error {
	var wg sync.WaitGroup
	wg.Add(len(historyByBlockNumber))
	errChan := make(chan error)

	key := feeHistoryKey()
	for newestBlock, history := range historyByBlockNumber {
		go func(number uint64, history *entity.FeeHistory) {
			defer wg.Done()

			historyJson, err := json.Marshal(history)
			if err != nil {
				errChan <- errors.Wrap(err, "failed to marshal to json")
			}

			if err := rdw.db.HSet(ctx, key, number, historyJson).Err(); err != nil {
				errChan <- errors.Wrapf(err, "failed to save fee history for window %d", number)
			}
		}(newestBlock, history)
	}

	return concurrent.WaitAndCollectErrors(&wg, errChan)
}

func (rdw *redisWrapper) SetLastRecordedBlock(ctx context.Context, block uint64) error {
	blockString := fmt.Sprintf("%d", block)
	if err := rdw.db.Set(ctx, lastRecordedBlockKey(), blockString, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to set lastRecordedBlock %d", block)
	}

	return nil
}

func (rdw *redisWrapper) GetLastRecordedBlock(ctx context.Context) (uint64, error) {
	blockString, err := rdw.db.Get(ctx, lastRecordedBlockKey()).Result()
	if err != nil {
		// First run
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to get lastRecordedBlock")
	}

	block, err := strconv.ParseUint(blockString, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "failed to parse redis string to block number")
	}

	return block, nil
}
