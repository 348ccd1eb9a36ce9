// Package views turns indexer responses into display ready values. Views never
// fail: missing or malformed data is rendered as "N/A".
package views

import (
	"sort"
	"time"

	"github.com/iov-one/block-explorer/pkg/format"
	"github.com/iov-one/block-explorer/pkg/models"
)

const UnitAlgo = "ALGO"

// Assets holds the asset definitions needed to format asset amounts.
type Assets map[uint64]models.Asset

type TransactionView struct {
	ID             string            `json:"id"`
	Type           models.TxType     `json:"type"`
	Label          string            `json:"label"`
	Sender         string            `json:"sender"`
	Receiver       string            `json:"receiver"`
	Amount         string            `json:"amount"`
	Unit           string            `json:"unit,omitempty"`
	AssetID        uint64            `json:"asset_id,omitempty"`
	ApplicationID  uint64            `json:"application_id,omitempty"`
	Fee            string            `json:"fee"`
	FirstValid     uint64            `json:"first_valid"`
	LastValid      uint64            `json:"last_valid"`
	ConfirmedRound uint64            `json:"confirmed_round"`
	Time           string            `json:"time"`
	Note           format.NoteViews  `json:"note"`
	Inner          []TransactionView `json:"inner,omitempty"`
}

// kind holds the parts of a view that depend on the transaction type.
type kind struct {
	Label         string
	Receiver      string
	Amount        string
	Unit          string
	AssetID       uint64
	ApplicationID uint64
}

type resolver func(tx models.Transaction, assets Assets) kind

var resolvers = map[models.TxType]resolver{
	models.TxPayment:       resolvePayment,
	models.TxAssetTransfer: resolveAssetTransfer,
	models.TxAssetFreeze:   resolveAssetFreeze,
	models.TxAssetConfig:   resolveAssetConfig,
	models.TxKeyReg:        resolveKeyReg,
	models.TxApplication:   resolveApplication,
}

func NewTransactionView(tx models.Transaction, assets Assets) TransactionView {
	resolve, ok := resolvers[tx.Type]
	if !ok {
		resolve = resolveUnknown
	}
	k := resolve(tx, assets)

	v := TransactionView{
		ID:             tx.ID,
		Type:           tx.Type,
		Label:          k.Label,
		Sender:         orNA(tx.Sender),
		Receiver:       orNA(k.Receiver),
		Amount:         orNA(k.Amount),
		Unit:           k.Unit,
		AssetID:        k.AssetID,
		ApplicationID:  k.ApplicationID,
		Fee:            format.MicroAlgosToAlgosUint(tx.Fee),
		FirstValid:     tx.FirstValid,
		LastValid:      tx.LastValid,
		ConfirmedRound: tx.ConfirmedRound,
		Time:           unixTime(tx.RoundTime),
		Note:           format.DecodeNoteBytes(tx.Note),
	}
	for _, inner := range tx.InnerTxns {
		v.Inner = append(v.Inner, NewTransactionView(inner, assets))
	}
	return v
}

func NewTransactionViews(txs []models.Transaction, assets Assets) []TransactionView {
	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, NewTransactionView(tx, assets))
	}
	return views
}

// AssetIDs returns the sorted, distinct asset ids referenced by txs and their
// inner transactions.
func AssetIDs(txs []models.Transaction) []uint64 {
	seen := make(map[uint64]struct{})
	var walk func([]models.Transaction)
	walk = func(txs []models.Transaction) {
		for _, tx := range txs {
			switch {
			case tx.AssetTransfer != nil:
				seen[tx.AssetTransfer.AssetID] = struct{}{}
			case tx.AssetConfig != nil && tx.AssetConfig.AssetID != 0 && tx.AssetConfig.Params == nil:
				seen[tx.AssetConfig.AssetID] = struct{}{}
			}
			walk(tx.InnerTxns)
		}
	}
	walk(txs)

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func resolvePayment(tx models.Transaction, _ Assets) kind {
	k := kind{Label: "Payment", Unit: UnitAlgo}
	if p := tx.Payment; p != nil {
		k.Receiver = p.Receiver
		k.Amount = format.MicroAlgosToAlgos(p.Amount.Big())
	}
	return k
}

func resolveAssetTransfer(tx models.Transaction, assets Assets) kind {
	k := kind{Label: "Asset Transfer"}
	p := tx.AssetTransfer
	if p == nil {
		return k
	}
	k.Receiver = p.Receiver
	k.AssetID = p.AssetID
	if asset, ok := assets[p.AssetID]; ok {
		k.Amount = format.FormatAsaAmountWithDecimal(p.Amount.Big(), asset.Params.Decimals)
		k.Unit = asset.Params.UnitName
	}
	return k
}

func resolveAssetFreeze(tx models.Transaction, _ Assets) kind {
	k := kind{Label: "Asset Freeze"}
	if p := tx.AssetFreeze; p != nil {
		k.Receiver = p.Address
		k.AssetID = p.AssetID
	}
	return k
}

func resolveAssetConfig(tx models.Transaction, assets Assets) kind {
	k := kind{Label: "Asset Config"}
	p := tx.AssetConfig
	if p == nil {
		return k
	}
	k.AssetID = p.AssetID

	params := p.Params
	if params == nil {
		if asset, ok := assets[p.AssetID]; ok {
			params = &asset.Params
		}
	}
	if params != nil {
		k.Amount = format.FormatAsaAmountWithDecimal(params.Total.Big(), params.Decimals)
		k.Unit = params.UnitName
	}
	return k
}

func resolveKeyReg(tx models.Transaction, _ Assets) kind {
	return kind{Label: "Key Registration"}
}

func resolveApplication(tx models.Transaction, _ Assets) kind {
	k := kind{Label: "Application Call"}
	if p := tx.Application; p != nil {
		k.ApplicationID = p.ApplicationID
	}
	return k
}

func resolveUnknown(tx models.Transaction, _ Assets) kind {
	return kind{Label: orNA(string(tx.Type))}
}

func orNA(s string) string {
	if s == "" {
		return format.NotAvailable
	}
	return s
}

func unixTime(ts int64) string {
	if ts <= 0 {
		return format.NotAvailable
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

func microAlgos(a models.Amount) string {
	return format.MicroAlgosToAlgos(a.Big())
}
