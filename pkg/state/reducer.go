package state

import (
	"github.com/iov-one/block-explorer/pkg/models"
)

// Reduce returns the state that results from applying a to s. It does not
// modify s and shares no mutable memory with the action.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case RoundReceived:
		if a.Round > s.Round {
			s.Round = a.Round
		}
		s.AvgBlockTime = a.AvgBlockTime
	case LatestBlocksLoaded:
		s.LatestBlocks = append([]models.Block(nil), a.Blocks...)
		for _, b := range a.Blocks {
			s.LocalRound = maxRound(s.LocalRound, b.Round)
		}
	case LatestTxnsLoaded:
		s.LatestTxns = append([]models.Transaction(nil), a.Txns...)
		for _, tx := range a.Txns {
			s.LocalRound = maxRound(s.LocalRound, tx.ConfirmedRound)
		}
	case SupplyLoaded:
		supply := a.Supply
		s.Supply = &supply
		s.LocalRound = maxRound(s.LocalRound, supply.Round)
	default:
		return s
	}
	s.OutOfSync = s.Round > s.LocalRound && s.Round-s.LocalRound > s.OutOfSyncThreshold
	return s
}

func maxRound(a, b uint64) uint64 {
	if b > a {
		return b
	}
	return a
}
