package entity

import "time"

// BalanceRecord is a single balance entry reported by the wallet core for one
// denomination on one network. Value is a decimal string.
type BalanceRecord struct {
	Denomination string `json:"denomination" yaml:"denomination"`
	NetworkType  string `json:"networkType" yaml:"networkType"`
	Value        string `json:"value" yaml:"value"`
}

// Snapshot is an immutable view of the shared wallet state. It is replaced
// wholesale on every balance refresh or enabled-asset change.
type Snapshot struct {
	Balances      []BalanceRecord `json:"balances"`
	EnabledAssets []string        `json:"enabledAssets"`
	Version       uint64          `json:"version"`
	RefreshedAt   time.Time       `json:"refreshedAt"`
}
