package models

type Account struct {
	Address                     string         `json:"address"`
	Amount                      Amount         `json:"amount"`
	AmountWithoutPendingRewards Amount         `json:"amount-without-pending-rewards"`
	PendingRewards              Amount         `json:"pending-rewards"`
	Rewards                     Amount         `json:"rewards"`
	Status                      string         `json:"status"`
	Round                       uint64         `json:"round"`
	Assets                      []AssetHolding `json:"assets,omitempty"`
}

type AssetHolding struct {
	AssetID  uint64 `json:"asset-id"`
	Amount   Amount `json:"amount"`
	IsFrozen bool   `json:"is-frozen"`
}

type Asset struct {
	Index  uint64      `json:"index"`
	Params AssetParams `json:"params"`
}

type AssetParams struct {
	Creator       string `json:"creator"`
	Decimals      uint32 `json:"decimals"`
	UnitName      string `json:"unit-name,omitempty"`
	Name          string `json:"name,omitempty"`
	Total         Amount `json:"total"`
	DefaultFrozen bool   `json:"default-frozen"`
	URL           string `json:"url,omitempty"`
}
