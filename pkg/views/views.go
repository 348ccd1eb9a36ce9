package views

import (
	"github.com/iov-one/block-explorer/pkg/format"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/shopspring/decimal"
)

type BlockView struct {
	Round        uint64            `json:"round"`
	Proposer     string            `json:"proposer"`
	Hash         string            `json:"hash"`
	PreviousHash string            `json:"previous_hash"`
	Seed         string            `json:"seed"`
	Time         string            `json:"time"`
	TxnCount     int               `json:"txn_count"`
	Transactions []TransactionView `json:"transactions,omitempty"`
}

// NewBlockView renders b. Transactions are only included when withTxns is set.
func NewBlockView(b models.Block, assets Assets, withTxns bool) BlockView {
	v := BlockView{
		Round:        b.Round,
		Proposer:     orNA(b.Proposer),
		Hash:         orNA(b.Hash),
		PreviousHash: orNA(b.PreviousBlockHash),
		Seed:         orNA(b.Seed),
		Time:         unixTime(b.Timestamp),
		TxnCount:     len(b.Transactions),
	}
	if withTxns {
		v.Transactions = NewTransactionViews(b.Transactions, assets)
	}
	return v
}

func NewBlockViews(blocks []models.Block) []BlockView {
	views := make([]BlockView, 0, len(blocks))
	for _, b := range blocks {
		views = append(views, NewBlockView(b, nil, false))
	}
	return views
}

type AccountView struct {
	Address                     string        `json:"address"`
	Balance                     string        `json:"balance"`
	BalanceWithoutPendingReward string        `json:"balance_without_pending_rewards"`
	PendingRewards              string        `json:"pending_rewards"`
	Rewards                     string        `json:"rewards"`
	Status                      string        `json:"status"`
	Round                       uint64        `json:"round"`
	Assets                      []HoldingView `json:"assets"`
}

type HoldingView struct {
	AssetID  uint64 `json:"asset_id"`
	Name     string `json:"name"`
	UnitName string `json:"unit_name"`
	Amount   string `json:"amount"`
	Frozen   bool   `json:"frozen"`
}

// NewAccountView renders a. Holdings of assets missing from assets show
// "N/A" for every asset derived field.
func NewAccountView(a models.Account, assets Assets) AccountView {
	v := AccountView{
		Address:                     orNA(a.Address),
		Balance:                     microAlgos(a.Amount),
		BalanceWithoutPendingReward: microAlgos(a.AmountWithoutPendingRewards),
		PendingRewards:              microAlgos(a.PendingRewards),
		Rewards:                     microAlgos(a.Rewards),
		Status:                      orNA(a.Status),
		Round:                       a.Round,
		Assets:                      make([]HoldingView, 0, len(a.Assets)),
	}
	for _, h := range a.Assets {
		hv := HoldingView{
			AssetID:  h.AssetID,
			Name:     format.NotAvailable,
			UnitName: format.NotAvailable,
			Amount:   format.NotAvailable,
			Frozen:   h.IsFrozen,
		}
		if asset, ok := assets[h.AssetID]; ok {
			hv.Name = orNA(asset.Params.Name)
			hv.UnitName = orNA(asset.Params.UnitName)
			hv.Amount = format.FormatAsaAmountWithDecimal(h.Amount.Big(), asset.Params.Decimals)
		}
		v.Assets = append(v.Assets, hv)
	}
	return v
}

// HoldingIDs returns the asset ids held by a.
func HoldingIDs(a models.Account) []uint64 {
	ids := make([]uint64, 0, len(a.Assets))
	for _, h := range a.Assets {
		ids = append(ids, h.AssetID)
	}
	return ids
}

type AssetView struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	UnitName      string `json:"unit_name"`
	Creator       string `json:"creator"`
	Decimals      uint32 `json:"decimals"`
	Total         string `json:"total"`
	DefaultFrozen bool   `json:"default_frozen"`
	URL           string `json:"url"`
}

func NewAssetView(a models.Asset) AssetView {
	return AssetView{
		ID:            a.Index,
		Name:          orNA(a.Params.Name),
		UnitName:      orNA(a.Params.UnitName),
		Creator:       orNA(a.Params.Creator),
		Decimals:      a.Params.Decimals,
		Total:         format.FormatAsaAmountWithDecimal(a.Params.Total.Big(), a.Params.Decimals),
		DefaultFrozen: a.Params.DefaultFrozen,
		URL:           orNA(a.Params.URL),
	}
}

type StatsView struct {
	Round             uint64  `json:"round"`
	AvgBlockTime      float64 `json:"avg_block_time"`
	OutOfSync         bool    `json:"out_of_sync"`
	TotalSupply       string  `json:"total_supply"`
	OnlineMoney       string  `json:"online_money"`
	Price             string  `json:"price"`
	CirculatingSupply string  `json:"circulating_supply"`
	MarketCap         string  `json:"market_cap"`
}

// Market holds the optional third party figures. Empty strings mean the value
// could not be fetched.
type Market struct {
	Price             string
	CirculatingSupply string
}

// NewStatsView renders the chain statistics from a state snapshot. The
// circulating supply is expected in whole units and the market cap is given
// in USD with two decimals.
func NewStatsView(s state.State, m Market) StatsView {
	v := StatsView{
		Round:             s.Round,
		AvgBlockTime:      s.AvgBlockTime,
		OutOfSync:         s.OutOfSync,
		TotalSupply:       format.NotAvailable,
		OnlineMoney:       format.NotAvailable,
		Price:             orNA(m.Price),
		CirculatingSupply: orNA(m.CirculatingSupply),
		MarketCap:         format.NotAvailable,
	}
	if s.Supply != nil {
		v.TotalSupply = microAlgos(s.Supply.TotalMoney)
		v.OnlineMoney = microAlgos(s.Supply.OnlineMoney)
	}

	price, err := decimal.NewFromString(m.Price)
	if err != nil {
		return v
	}
	circulating, err := decimal.NewFromString(m.CirculatingSupply)
	if err != nil {
		return v
	}
	v.MarketCap = price.Mul(circulating).StringFixed(2)
	return v
}
