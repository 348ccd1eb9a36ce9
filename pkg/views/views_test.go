package views

import (
	"encoding/base64"
	"testing"

	"github.com/iov-one/block-explorer/pkg/format"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(t *testing.T, s string) models.Amount {
	t.Helper()
	a, err := models.ParseAmount(s)
	require.NoError(t, err)
	return a
}

func TestEveryTxTypeHasResolver(t *testing.T) {
	for _, typ := range models.TxTypes {
		_, ok := resolvers[typ]
		assert.True(t, ok, "no resolver for %q", typ)
	}
	assert.Len(t, resolvers, len(models.TxTypes))
}

func TestPaymentView(t *testing.T) {
	note, err := base64.StdEncoding.DecodeString("FszNghkCXmo=")
	require.NoError(t, err)

	tx := models.Transaction{
		ID:        "PAY",
		Type:      models.TxPayment,
		Sender:    "S",
		Fee:       1000,
		RoundTime: 1600000000,
		Note:      note,
		Payment:   &models.PaymentTransaction{Receiver: "R", Amount: models.NewAmount(1234567)},
	}

	v := NewTransactionView(tx, nil)
	assert.Equal(t, "Payment", v.Label)
	assert.Equal(t, "R", v.Receiver)
	assert.Equal(t, "1.234567", v.Amount)
	assert.Equal(t, UnitAlgo, v.Unit)
	assert.Equal(t, "0.001000", v.Fee)
	assert.Equal(t, "2020-09-13T12:26:40Z", v.Time)
	assert.Equal(t, "16cccd8219025e6a", v.Note.Hex)
	assert.Equal(t, "1642913922732416618", v.Note.Uint64)
}

func TestAssetTransferView(t *testing.T) {
	tx := models.Transaction{
		Type: models.TxAssetTransfer,
		AssetTransfer: &models.AssetTransferTransaction{
			AssetID:  31566704,
			Receiver: "R",
			Amount:   amount(t, "88616203378510000"),
		},
	}
	assets := Assets{31566704: {Index: 31566704, Params: models.AssetParams{Decimals: 6, UnitName: "USDC"}}}

	v := NewTransactionView(tx, assets)
	assert.Equal(t, "88616203378.510000", v.Amount)
	assert.Equal(t, "USDC", v.Unit)
	assert.Equal(t, uint64(31566704), v.AssetID)

	// Without the asset definition the amount cannot be scaled.
	v = NewTransactionView(tx, nil)
	assert.Equal(t, format.NotAvailable, v.Amount)
	assert.Equal(t, format.NotAvailable, v.Time)
	assert.False(t, v.Note.Present)
}

func TestAssetConfigView(t *testing.T) {
	tx := models.Transaction{
		Type: models.TxAssetConfig,
		AssetConfig: &models.AssetConfigTransaction{
			AssetID: 9,
			Params:  &models.AssetParams{Decimals: 2, Total: models.NewAmount(100050), UnitName: "GLD"},
		},
	}
	v := NewTransactionView(tx, nil)
	assert.Equal(t, "1000.50", v.Amount)
	assert.Equal(t, "GLD", v.Unit)
}

func TestOtherKindsFallBack(t *testing.T) {
	cases := map[models.TxType]models.Transaction{
		models.TxAssetFreeze: {Type: models.TxAssetFreeze, AssetFreeze: &models.AssetFreezeTransaction{AssetID: 3, Address: "F"}},
		models.TxKeyReg:      {Type: models.TxKeyReg, KeyReg: &models.KeyRegTransaction{}},
		models.TxApplication: {Type: models.TxApplication, Application: &models.ApplicationTransaction{ApplicationID: 77}},
		"newkind":            {Type: "newkind"},
	}
	for typ, tx := range cases {
		v := NewTransactionView(tx, nil)
		assert.Equal(t, format.NotAvailable, v.Amount, typ)
		assert.NotEmpty(t, v.Label, typ)
	}

	v := NewTransactionView(cases[models.TxAssetFreeze], nil)
	assert.Equal(t, "F", v.Receiver)
	v = NewTransactionView(cases[models.TxApplication], nil)
	assert.Equal(t, uint64(77), v.ApplicationID)
	assert.Equal(t, format.NotAvailable, v.Receiver)
}

func TestInnerTransactionsAreRendered(t *testing.T) {
	tx := models.Transaction{
		Type:        models.TxApplication,
		Application: &models.ApplicationTransaction{ApplicationID: 1},
		InnerTxns: []models.Transaction{{
			Type:    models.TxPayment,
			Payment: &models.PaymentTransaction{Receiver: "IR", Amount: models.NewAmount(5)},
			InnerTxns: []models.Transaction{{
				Type:          models.TxAssetTransfer,
				AssetTransfer: &models.AssetTransferTransaction{AssetID: 42},
			}},
		}},
	}

	v := NewTransactionView(tx, nil)
	require.Len(t, v.Inner, 1)
	assert.Equal(t, "0.000005", v.Inner[0].Amount)
	require.Len(t, v.Inner[0].Inner, 1)
	assert.Equal(t, uint64(42), v.Inner[0].Inner[0].AssetID)

	assert.Equal(t, []uint64{42}, AssetIDs([]models.Transaction{tx}))
}

func TestAccountView(t *testing.T) {
	acc := models.Account{
		Address: "ADDR",
		Amount:  models.NewAmount(2500000),
		Assets: []models.AssetHolding{
			{AssetID: 1, Amount: models.NewAmount(12345)},
			{AssetID: 2, Amount: models.NewAmount(1), IsFrozen: true},
		},
	}
	assets := Assets{1: {Index: 1, Params: models.AssetParams{Decimals: 3, Name: "Gold", UnitName: "GLD"}}}

	v := NewAccountView(acc, assets)
	assert.Equal(t, "2.500000", v.Balance)
	assert.Equal(t, "0.000000", v.PendingRewards)
	assert.Equal(t, format.NotAvailable, v.Status)
	require.Len(t, v.Assets, 2)
	assert.Equal(t, HoldingView{AssetID: 1, Name: "Gold", UnitName: "GLD", Amount: "12.345"}, v.Assets[0])
	assert.Equal(t, HoldingView{
		AssetID:  2,
		Name:     format.NotAvailable,
		UnitName: format.NotAvailable,
		Amount:   format.NotAvailable,
		Frozen:   true,
	}, v.Assets[1])
	assert.Equal(t, []uint64{1, 2}, HoldingIDs(acc))
}

func TestAssetView(t *testing.T) {
	v := NewAssetView(models.Asset{Index: 5, Params: models.AssetParams{Total: models.NewAmount(10), Decimals: 0}})
	assert.Equal(t, "10.", v.Total)
	assert.Equal(t, format.NotAvailable, v.Name)
}

func TestBlockView(t *testing.T) {
	b := models.Block{
		Round:        10,
		Proposer:     "P",
		Timestamp:    1600000000,
		Transactions: []models.Transaction{{Type: models.TxKeyReg}},
	}
	v := NewBlockView(b, nil, true)
	assert.Equal(t, 1, v.TxnCount)
	assert.Len(t, v.Transactions, 1)
	assert.Equal(t, format.NotAvailable, v.Hash)

	list := NewBlockViews([]models.Block{b})
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Transactions)
}

func TestStatsView(t *testing.T) {
	s := state.State{Round: 50, AvgBlockTime: 4.3, Supply: &models.Supply{TotalMoney: models.NewAmount(10000000)}}

	v := NewStatsView(s, Market{Price: "0.25", CirculatingSupply: "7000000000.5"})
	assert.Equal(t, "10.000000", v.TotalSupply)
	assert.Equal(t, "1750000000.13", v.MarketCap)

	v = NewStatsView(state.State{}, Market{})
	assert.Equal(t, format.NotAvailable, v.TotalSupply)
	assert.Equal(t, format.NotAvailable, v.Price)
	assert.Equal(t, format.NotAvailable, v.MarketCap)
}
