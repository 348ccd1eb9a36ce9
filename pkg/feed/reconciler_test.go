package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/weave/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	roundCalls  int32
	txnCalls    int32
	supplyCalls int32

	rounds func(ctx context.Context, call int32) (*models.Page[models.Block], error)
	supply func(ctx context.Context) (*models.Supply, error)
}

func (f *fakeSource) Rounds(ctx context.Context, page, limit int) (*models.Page[models.Block], error) {
	call := atomic.AddInt32(&f.roundCalls, 1)
	if f.rounds != nil {
		return f.rounds(ctx, call)
	}
	return &models.Page[models.Block]{Items: []models.Block{{Round: uint64(100 + call)}}, NumOfPages: 1}, nil
}

func (f *fakeSource) Transactions(ctx context.Context, page, limit int) (*models.Page[models.Transaction], error) {
	atomic.AddInt32(&f.txnCalls, 1)
	return &models.Page[models.Transaction]{Items: []models.Transaction{{ID: "TX", ConfirmedRound: 100}}}, nil
}

func (f *fakeSource) Supply(ctx context.Context) (*models.Supply, error) {
	atomic.AddInt32(&f.supplyCalls, 1)
	if f.supply != nil {
		return f.supply(ctx)
	}
	return &models.Supply{Round: 100, TotalMoney: models.NewAmount(1000)}, nil
}

type recordingSink struct {
	mu     sync.Mutex
	rounds []uint64
}

func (s *recordingSink) Publish(ctx context.Context, msg models.FeedMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds = append(s.rounds, msg.Block.Round)
	return nil
}

type failingSink struct{}

func (failingSink) Publish(context.Context, models.FeedMessage) error {
	return errors.Wrap(indexer.ErrUnavailable, "sink down")
}

func message(round uint64) models.FeedMessage {
	return models.FeedMessage{AvgBlockTxnSpeed: 4.4, Block: models.Block{Round: round}}
}

func TestHandleSameRoundIsIdempotent(t *testing.T) {
	src := &fakeSource{}
	sink := &recordingSink{}
	st := state.NewStore(3)
	r := NewReconciler(src, st, 10, zerolog.Nop(), sink)

	ctx := context.Background()
	r.Handle(ctx, message(100))
	r.wg.Wait()
	r.Handle(ctx, message(100))
	r.Handle(ctx, message(99))
	r.wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&src.roundCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.txnCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.supplyCalls))
	assert.Equal(t, []uint64{100}, sink.rounds)

	snap := st.Snapshot()
	assert.Equal(t, uint64(100), snap.Round)
	assert.Equal(t, 4.4, snap.AvgBlockTime)
	require.Len(t, snap.LatestTxns, 1)
	assert.Equal(t, "TX", snap.LatestTxns[0].ID)
	require.NotNil(t, snap.Supply)
}

func TestNewerRoundCancelsInFlightRefresh(t *testing.T) {
	started := make(chan struct{})
	var cancelled int32
	src := &fakeSource{
		rounds: func(ctx context.Context, call int32) (*models.Page[models.Block], error) {
			if call == 1 {
				close(started)
				<-ctx.Done()
				atomic.StoreInt32(&cancelled, 1)
				return nil, errors.Wrap(indexer.ErrUnavailable, ctx.Err().Error())
			}
			return &models.Page[models.Block]{Items: []models.Block{{Round: 201}}}, nil
		},
	}
	st := state.NewStore(3)
	r := NewReconciler(src, st, 10, zerolog.Nop())

	ctx := context.Background()
	r.Handle(ctx, message(200))
	<-started
	r.Handle(ctx, message(201))
	r.wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&cancelled))
	snap := st.Snapshot()
	require.Len(t, snap.LatestBlocks, 1)
	assert.Equal(t, uint64(201), snap.LatestBlocks[0].Round)
}

func TestFailedRequestKeepsLastKnownValue(t *testing.T) {
	var fail int32
	src := &fakeSource{
		supply: func(ctx context.Context) (*models.Supply, error) {
			if atomic.LoadInt32(&fail) == 1 {
				return nil, errors.Wrap(indexer.ErrFailedResponse, "status 500")
			}
			return &models.Supply{Round: 100, TotalMoney: models.NewAmount(7)}, nil
		},
	}
	st := state.NewStore(3)
	r := NewReconciler(src, st, 10, zerolog.Nop())

	require.NoError(t, r.Refresh(context.Background(), 100))

	atomic.StoreInt32(&fail, 1)
	err := r.Refresh(context.Background(), 101)
	require.Error(t, err)
	assert.True(t, indexer.ErrFailedResponse.Is(err))

	snap := st.Snapshot()
	require.NotNil(t, snap.Supply)
	assert.Equal(t, "7", snap.Supply.TotalMoney.String())
	// The other resources of the failed refresh still landed.
	require.Len(t, snap.LatestBlocks, 1)
	assert.Equal(t, uint64(102), snap.LatestBlocks[0].Round)
}

func TestConcurrentRefreshesAreCollapsed(t *testing.T) {
	release := make(chan struct{})
	src := &fakeSource{
		rounds: func(ctx context.Context, call int32) (*models.Page[models.Block], error) {
			<-release
			return &models.Page[models.Block]{Items: []models.Block{{Round: 5}}}, nil
		},
	}
	r := NewReconciler(src, state.NewStore(3), 10, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Refresh(context.Background(), 5))
		}()
	}
	// Give the callers time to join the in-flight refresh.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&src.roundCalls))
}

func TestSinkFailureDoesNotStopOthers(t *testing.T) {
	sink := &recordingSink{}
	r := NewReconciler(&fakeSource{}, state.NewStore(3), 10, zerolog.Nop(), failingSink{}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan models.FeedMessage, 3)
	in <- message(1)
	in <- message(2)
	in <- message(2)
	close(in)

	r.Run(ctx, in)
	cancel()

	assert.ElementsMatch(t, []uint64{1, 2}, sink.rounds)
}
