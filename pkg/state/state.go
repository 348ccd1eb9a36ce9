// Package state holds the client side view of the chain tip. The state is an
// immutable value replaced on every reducer action. Store.Dispatch is the only
// way to change it.
package state

import (
	"github.com/iov-one/block-explorer/pkg/models"
)

// State is a snapshot of everything the live views render. Slices held by a
// State are never modified after the State is published.
type State struct {
	// Round is the latest round announced by the push channel.
	Round uint64 `json:"round"`
	// AvgBlockTime is the pushed average block time, in seconds.
	AvgBlockTime float64 `json:"avg_block_time"`
	// LocalRound is the newest round covered by data fetched over REST.
	LocalRound uint64 `json:"local_round"`
	// OutOfSync is set while Round is more than OutOfSyncThreshold rounds
	// ahead of LocalRound.
	OutOfSync          bool   `json:"out_of_sync"`
	OutOfSyncThreshold uint64 `json:"-"`

	LatestBlocks []models.Block       `json:"latest_blocks"`
	LatestTxns   []models.Transaction `json:"latest_txns"`
	Supply       *models.Supply       `json:"supply,omitempty"`
}

// Action is an event applied to State by Reduce.
type Action interface {
	action()
}

// RoundReceived is dispatched for every push channel message.
type RoundReceived struct {
	Round        uint64
	AvgBlockTime float64
}

// LatestBlocksLoaded carries a fresh list of the newest blocks.
type LatestBlocksLoaded struct {
	Blocks []models.Block
}

// LatestTxnsLoaded carries a fresh list of the newest transactions.
type LatestTxnsLoaded struct {
	Txns []models.Transaction
}

// SupplyLoaded carries the current ledger supply.
type SupplyLoaded struct {
	Supply models.Supply
}

func (RoundReceived) action()      {}
func (LatestBlocksLoaded) action() {}
func (LatestTxnsLoaded) action()   {}
func (SupplyLoaded) action()       {}

// Summary is the compact form of a State pushed to live subscribers.
type Summary struct {
	Round        uint64  `json:"round"`
	LocalRound   uint64  `json:"local_round"`
	AvgBlockTime float64 `json:"avg_block_time"`
	OutOfSync    bool    `json:"out_of_sync"`
	LatestBlock  uint64  `json:"latest_block"`
	LatestTxn    string  `json:"latest_txn,omitempty"`
}

func (s State) Summary() Summary {
	sum := Summary{
		Round:        s.Round,
		LocalRound:   s.LocalRound,
		AvgBlockTime: s.AvgBlockTime,
		OutOfSync:    s.OutOfSync,
	}
	if len(s.LatestBlocks) > 0 {
		sum.LatestBlock = s.LatestBlocks[0].Round
	}
	if len(s.LatestTxns) > 0 {
		sum.LatestTxn = s.LatestTxns[0].ID
	}
	return sum
}
