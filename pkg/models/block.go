package models

import (
	"time"
)

type Block struct {
	Round             uint64        `json:"round"`
	Proposer          string        `json:"proposer"`
	Hash              string        `json:"block-hash"`
	PreviousBlockHash string        `json:"previous-block-hash"`
	Seed              string        `json:"seed"`
	Timestamp         int64         `json:"timestamp"`
	RewardsRate       uint64        `json:"rewards-rate"`
	RewardsLevel      uint64        `json:"rewards-level"`
	RewardsResidue    uint64        `json:"rewards-residue"`
	Transactions      []Transaction `json:"transactions,omitempty"`
}

// Time returns the block timestamp in UTC.
func (b Block) Time() time.Time {
	return time.Unix(b.Timestamp, 0).UTC()
}

// Page is a server side paged list as returned by the indexer.
type Page[T any] struct {
	Items      []T `json:"items"`
	NumOfPages int `json:"num_of_pages"`
}

// Supply represents the current supply of MicroAlgos in the system.
type Supply struct {
	Round       uint64 `json:"current_round"`
	TotalMoney  Amount `json:"total-money"`
	OnlineMoney Amount `json:"online-money"`
}

// FeedMessage is a single message delivered by the push channel.
type FeedMessage struct {
	AvgBlockTxnSpeed float64  `json:"avg_block_txn_speed"`
	Block            Block    `json:"block"`
	AccountIDs       []string `json:"account_ids"`
	AppIDs           []uint64 `json:"app_ids"`
	AssetIDs         []uint64 `json:"asset_ids"`
	TransactionIDs   []string `json:"transaction_ids"`
}
