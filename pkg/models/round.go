package models

import (
	"time"
)

// ArchivedRound is the summary of a pushed round kept in the round archive.
type ArchivedRound struct {
	Round            uint64    `json:"round"`
	Proposer         string    `json:"proposer"`
	Hash             string    `json:"hash"`
	Time             time.Time `json:"time"`
	TxnCount         int       `json:"txn_count"`
	AvgBlockTxnSpeed float64   `json:"avg_block_txn_speed"`
	TransactionIDs   []string  `json:"transaction_ids"`
	AssetIDs         []int64   `json:"asset_ids"`
}

// NewArchivedRound summarises a push channel message.
func NewArchivedRound(msg FeedMessage) ArchivedRound {
	r := ArchivedRound{
		Round:            msg.Block.Round,
		Proposer:         msg.Block.Proposer,
		Hash:             msg.Block.Hash,
		Time:             msg.Block.Time(),
		TxnCount:         len(msg.TransactionIDs),
		AvgBlockTxnSpeed: msg.AvgBlockTxnSpeed,
		TransactionIDs:   append([]string{}, msg.TransactionIDs...),
		AssetIDs:         make([]int64, 0, len(msg.AssetIDs)),
	}
	if n := len(msg.Block.Transactions); n > r.TxnCount {
		r.TxnCount = n
	}
	for _, id := range msg.AssetIDs {
		r.AssetIDs = append(r.AssetIDs, int64(id))
	}
	return r
}
