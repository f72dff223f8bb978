package resolver

import (
	"context"

	"github.com/NilFoundation/abigate/abigate/internal/types"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// FetchQueue is a Fetcher that bounds the number of concurrent requests to the indexing
// service and lets identical in-flight requests share one upstream call. It does not retry.
//
// Callers joining an in-flight request share its outcome, including a cancellation of the
// caller that started it.
type FetchQueue struct {
	fetcher Fetcher
	sem     *semaphore.Weighted
	group   singleflight.Group
}

var _ Fetcher = (*FetchQueue)(nil)

func NewFetchQueue(fetcher Fetcher, concurrency int) *FetchQueue {
	if concurrency < 1 {
		concurrency = 1
	}
	return &FetchQueue{
		fetcher: fetcher,
		sem:     semaphore.NewWeighted(int64(concurrency)),
	}
}

func (q *FetchQueue) FetchAbi(ctx context.Context, address types.Address) ([]byte, error) {
	res, err, _ := q.group.Do(address.Hex(), func() (any, error) {
		if err := q.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer q.sem.Release(1)
		return q.fetcher.FetchAbi(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}
