package feed

import (
	"context"
	"strconv"
	"sync"

	"github.com/iov-one/block-explorer/pkg/metrics"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/weave/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Source is the part of the indexer API a refresh needs.
type Source interface {
	Rounds(ctx context.Context, page, limit int) (*models.Page[models.Block], error)
	Transactions(ctx context.Context, page, limit int) (*models.Page[models.Transaction], error)
	Supply(ctx context.Context) (*models.Supply, error)
}

// Sink receives every push message whose round advanced the tip.
type Sink interface {
	Publish(ctx context.Context, msg models.FeedMessage) error
}

// Reconciler applies push messages to the state store and refreshes the
// latest blocks, transactions and supply over REST when the round advances.
type Reconciler struct {
	source Source
	store  *state.Store
	seq    *state.Sequencer
	sinks  []Sink
	limit  int
	logger zerolog.Logger

	flight singleflight.Group
	wg     sync.WaitGroup

	mu            sync.Mutex
	lastRefreshed uint64
	cancel        context.CancelFunc
}

// NewReconciler returns a reconciler fetching limit items of each latest
// list per refresh.
func NewReconciler(source Source, store *state.Store, limit int, logger zerolog.Logger, sinks ...Sink) *Reconciler {
	return &Reconciler{
		source: source,
		store:  store,
		seq:    state.NewSequencer(),
		sinks:  sinks,
		limit:  limit,
		logger: logger,
	}
}

// Run handles messages from in until ctx is done or in is closed. It waits for
// started refreshes and publications before returning.
func (r *Reconciler) Run(ctx context.Context, in <-chan models.FeedMessage) {
	defer r.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			r.Handle(ctx, msg)
		}
	}
}

// Handle dispatches the pushed round and, when it is newer than the last
// refreshed round, cancels any refresh still in flight and starts a new one.
// Pushing the same round again changes nothing.
func (r *Reconciler) Handle(ctx context.Context, msg models.FeedMessage) {
	round := msg.Block.Round
	r.store.Dispatch(state.RoundReceived{Round: round, AvgBlockTime: msg.AvgBlockTxnSpeed})
	metrics.CurrentRound.Set(float64(r.store.Snapshot().Round))

	r.mu.Lock()
	if round <= r.lastRefreshed {
		r.mu.Unlock()
		metrics.FeedRefreshes.WithLabelValues("skipped").Inc()
		return
	}
	r.lastRefreshed = round
	if r.cancel != nil {
		r.cancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	r.wg.Add(2)
	go func() {
		defer r.wg.Done()
		defer cancel()
		_ = r.Refresh(rctx, round)
	}()
	go func() {
		defer r.wg.Done()
		r.publish(ctx, msg)
	}()
}

// Refresh fetches the latest blocks, latest transactions and supply
// concurrently. Concurrent calls for the same round share one refresh. A
// failed request leaves its part of the state untouched, the error is
// returned after every request finished.
func (r *Reconciler) Refresh(ctx context.Context, round uint64) error {
	_, err, _ := r.flight.Do(strconv.FormatUint(round, 10), func() (interface{}, error) {
		return nil, r.refresh(ctx)
	})

	switch {
	case err == nil:
		metrics.FeedRefreshes.WithLabelValues("ok").Inc()
	case ctx.Err() != nil:
		metrics.FeedRefreshes.WithLabelValues("cancelled").Inc()
		r.logger.Debug().Uint64("round", round).Msg("refresh superseded")
	default:
		metrics.FeedRefreshes.WithLabelValues("failed").Inc()
		r.logger.Error().Err(err).Uint64("round", round).Msg("refresh failed")
	}
	return err
}

func (r *Reconciler) refresh(ctx context.Context) error {
	var g errgroup.Group

	blocksSeq := r.seq.Next(state.ResourceLatestBlocks)
	g.Go(func() error {
		page, err := r.source.Rounds(ctx, 1, r.limit)
		if err != nil {
			return errors.Wrap(err, "latest blocks")
		}
		r.store.DispatchLatest(r.seq, state.ResourceLatestBlocks, blocksSeq,
			state.LatestBlocksLoaded{Blocks: page.Items})
		return nil
	})

	txnsSeq := r.seq.Next(state.ResourceLatestTxns)
	g.Go(func() error {
		page, err := r.source.Transactions(ctx, 1, r.limit)
		if err != nil {
			return errors.Wrap(err, "latest transactions")
		}
		r.store.DispatchLatest(r.seq, state.ResourceLatestTxns, txnsSeq,
			state.LatestTxnsLoaded{Txns: page.Items})
		return nil
	})

	supplySeq := r.seq.Next(state.ResourceSupply)
	g.Go(func() error {
		supply, err := r.source.Supply(ctx)
		if err != nil {
			return errors.Wrap(err, "supply")
		}
		r.store.DispatchLatest(r.seq, state.ResourceSupply, supplySeq,
			state.SupplyLoaded{Supply: *supply})
		return nil
	})

	return g.Wait()
}

func (r *Reconciler) publish(ctx context.Context, msg models.FeedMessage) {
	for _, s := range r.sinks {
		if err := s.Publish(ctx, msg); err != nil {
			r.logger.Error().Err(err).
				Uint64("round", msg.Block.Round).
				Msgf("cannot publish to %T", s)
		}
	}
}
