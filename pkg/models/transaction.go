package models

// TxType is the transaction type tag used by the indexer.
type TxType string

const (
	TxPayment       TxType = "pay"
	TxAssetTransfer TxType = "axfer"
	TxAssetFreeze   TxType = "afrz"
	TxAssetConfig   TxType = "acfg"
	TxKeyReg        TxType = "keyreg"
	TxApplication   TxType = "appl"
)

// TxTypes lists every transaction kind the explorer knows how to render.
var TxTypes = []TxType{
	TxPayment,
	TxAssetTransfer,
	TxAssetFreeze,
	TxAssetConfig,
	TxKeyReg,
	TxApplication,
}

// Transaction contains all fields common to all transactions and serves as an
// envelope to the type specific payloads. Exactly one payload is set, matching
// Type.
type Transaction struct {
	ID             string `json:"id"`
	Type           TxType `json:"tx-type"`
	Sender         string `json:"sender"`
	Fee            uint64 `json:"fee"`
	FirstValid     uint64 `json:"first-valid"`
	LastValid      uint64 `json:"last-valid"`
	ConfirmedRound uint64 `json:"confirmed-round,omitempty"`
	RoundTime      int64  `json:"round-time,omitempty"`
	// Note is free form data, base64 encoded on the wire.
	Note []byte `json:"note,omitempty"`

	Payment       *PaymentTransaction       `json:"payment-transaction,omitempty"`
	AssetTransfer *AssetTransferTransaction `json:"asset-transfer-transaction,omitempty"`
	AssetFreeze   *AssetFreezeTransaction   `json:"asset-freeze-transaction,omitempty"`
	AssetConfig   *AssetConfigTransaction   `json:"asset-config-transaction,omitempty"`
	KeyReg        *KeyRegTransaction        `json:"keyreg-transaction,omitempty"`
	Application   *ApplicationTransaction   `json:"application-transaction,omitempty"`

	// InnerTxns are issued by an application call as a side effect.
	InnerTxns []Transaction `json:"inner-txns,omitempty"`
}

type PaymentTransaction struct {
	Receiver         string `json:"receiver"`
	Amount           Amount `json:"amount"`
	CloseRemainderTo string `json:"close-remainder-to,omitempty"`
	CloseAmount      Amount `json:"close-amount"`
}

type AssetTransferTransaction struct {
	AssetID     uint64 `json:"asset-id"`
	Receiver    string `json:"receiver"`
	Amount      Amount `json:"amount"`
	Sender      string `json:"sender,omitempty"`
	CloseTo     string `json:"close-to,omitempty"`
	CloseAmount Amount `json:"close-amount"`
}

type AssetFreezeTransaction struct {
	AssetID         uint64 `json:"asset-id"`
	Address         string `json:"address"`
	NewFreezeStatus bool   `json:"new-freeze-status"`
}

type AssetConfigTransaction struct {
	AssetID uint64       `json:"asset-id"`
	Params  *AssetParams `json:"params,omitempty"`
}

type KeyRegTransaction struct {
	VoteParticipationKey      []byte `json:"vote-participation-key,omitempty"`
	SelectionParticipationKey []byte `json:"selection-participation-key,omitempty"`
	VoteFirstValid            uint64 `json:"vote-first-valid"`
	VoteLastValid             uint64 `json:"vote-last-valid"`
	VoteKeyDilution           uint64 `json:"vote-key-dilution"`
	NonParticipation          bool   `json:"non-participation"`
}

type ApplicationTransaction struct {
	ApplicationID   uint64   `json:"application-id"`
	OnCompletion    string   `json:"on-completion"`
	ApplicationArgs [][]byte `json:"application-args,omitempty"`
	Accounts        []string `json:"accounts,omitempty"`
	ForeignApps     []uint64 `json:"foreign-apps,omitempty"`
	ForeignAssets   []uint64 `json:"foreign-assets,omitempty"`
}
