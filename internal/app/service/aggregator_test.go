package service

import (
	"testing"

	"wallet_engine/internal/domain/entity"
	"wallet_engine/internal/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T) *Aggregator {
	t.Helper()
	return NewAggregator(testCatalog(t), "usd", logger.Nop())
}

func denominations(views []entity.AssetView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Denomination)
	}
	return out
}

func TestAggregateWalletScenario(t *testing.T) {
	a := newTestAggregator(t)
	records := []entity.BalanceRecord{
		{Denomination: "usdt", NetworkType: "ethereum", Value: "100"},
		{Denomination: "usdt", NetworkType: "tron", Value: "50"},
		{Denomination: "btc", NetworkType: "segwit", Value: "0.002"},
	}
	pricing := mapPricing{"usdt": dec("1"), "btc": dec("60000")}

	views := a.Aggregate([]string{"btc", "usdt", "xaut"}, records, pricing)
	require.Len(t, views, 3)
	assert.Equal(t, []string{"usdt", "btc", "xaut"}, denominations(views))

	usdt := views[0]
	assert.True(t, dec("150").Equal(usdt.TotalBalance))
	assert.True(t, dec("150").Equal(usdt.TotalBalanceFiat))
	assert.True(t, usdt.HasBalance)
	require.Len(t, usdt.PerNetwork, 5)
	assert.Equal(t, "ethereum", usdt.PerNetwork[0].NetworkID)
	assert.Equal(t, "Ethereum", usdt.PerNetwork[0].Name)
	assert.True(t, dec("100").Equal(usdt.PerNetwork[0].Balance))
	assert.True(t, usdt.PerNetwork[1].Balance.IsZero())
	assert.False(t, usdt.PerNetwork[1].HasBalance)

	tron, ok := usdt.Network("tron")
	require.True(t, ok)
	assert.True(t, dec("50").Equal(tron.Balance))

	btc := views[1]
	assert.True(t, dec("0.002").Equal(btc.TotalBalance))
	assert.True(t, dec("120").Equal(btc.TotalBalanceFiat))
	assert.True(t, dec("60000").Equal(btc.Price))

	xaut := views[2]
	assert.False(t, xaut.HasBalance)
	assert.True(t, xaut.TotalBalanceFiat.IsZero())

	assert.True(t, dec("270").Equal(TotalFiat(views)))
}

func TestAggregateSumsDuplicatesExactly(t *testing.T) {
	a := newTestAggregator(t)
	records := []entity.BalanceRecord{
		{Denomination: "USDT", NetworkType: "Polygon", Value: "0.1"},
		{Denomination: "usdt", NetworkType: "polygon", Value: "0.2"},
	}

	views := a.Aggregate([]string{"usdt"}, records, nil)
	require.Len(t, views, 1)
	assert.Equal(t, "0.3", views[0].TotalBalance.String())

	var sum decimal.Decimal
	for _, nv := range views[0].PerNetwork {
		sum = sum.Add(nv.Balance)
	}
	assert.True(t, sum.Equal(views[0].TotalBalance))
	assert.True(t, views[0].Price.IsZero())
}

func TestAggregateSubCentRecordsWithoutDrift(t *testing.T) {
	networks := []string{"ethereum", "Ethereum", "polygon", "arbitrum", "ton", "tron", "TRON", "polygon"}

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"tenth of a cent", "0.001", "0.008"},
		{"dimes", "0.1", "0.8"},
		{"token dust", "0.000001", "0.000008"},
		{"float unfriendly", "0.07", "0.56"},
	}

	a := newTestAggregator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]entity.BalanceRecord, 0, len(networks))
			for _, n := range networks {
				records = append(records, entity.BalanceRecord{Denomination: "usdt", NetworkType: n, Value: tt.value})
			}

			views := a.Aggregate([]string{"usdt"}, records, mapPricing{"usdt": dec("1")})
			require.Len(t, views, 1)
			assert.True(t, dec(tt.want).Equal(views[0].TotalBalance), "total %s", views[0].TotalBalance)
			assert.True(t, dec(tt.want).Equal(views[0].TotalBalanceFiat))

			var sum decimal.Decimal
			for _, nv := range views[0].PerNetwork {
				sum = sum.Add(nv.Balance)
			}
			assert.True(t, sum.Equal(views[0].TotalBalance))

			eth, ok := views[0].Network("ethereum")
			require.True(t, ok)
			assert.True(t, dec(tt.value).Mul(decimal.NewFromInt(2)).Equal(eth.Balance))
		})
	}
}

func TestAggregateReportsGaps(t *testing.T) {
	a := newTestAggregator(t)
	records := []entity.BalanceRecord{
		{Denomination: "doge", NetworkType: "ethereum", Value: "10"},
		{Denomination: "btc", NetworkType: "tron", Value: "1"},
		{Denomination: "usdt", NetworkType: "ethereum", Value: "abc"},
		{Denomination: "usdt", NetworkType: "ethereum", Value: "-5"},
		{Denomination: "usdt", NetworkType: "ethereum", Value: "7"},
	}

	views, gaps := a.AggregateWithGaps([]string{"usdt", "btc", "shib"}, records, mapPricing{})
	assert.Equal(t, []string{"usdt", "btc"}, denominations(views))
	assert.True(t, dec("7").Equal(views[0].TotalBalance))
	assert.True(t, views[1].TotalBalance.IsZero())

	kinds := make(map[entity.DataGapKind]int)
	for _, g := range gaps {
		kinds[g.Kind]++
	}
	assert.Equal(t, 2, kinds[entity.GapUnknownDenomination])
	assert.Equal(t, 1, kinds[entity.GapUnsupportedNetwork])
	assert.Equal(t, 2, kinds[entity.GapUnparseableValue])
}

func TestAggregateEdgeInputs(t *testing.T) {
	a := newTestAggregator(t)

	t.Run("nil records", func(t *testing.T) {
		views := a.Aggregate([]string{"usdt"}, nil, nil)
		require.Len(t, views, 1)
		assert.False(t, views[0].HasBalance)
	})

	t.Run("nothing enabled", func(t *testing.T) {
		views := a.Aggregate(nil, []entity.BalanceRecord{{Denomination: "usdt", NetworkType: "tron", Value: "1"}}, nil)
		assert.Empty(t, views)
	})

	t.Run("duplicate enabled entries", func(t *testing.T) {
		views := a.Aggregate([]string{"usdt", "USDT", " usdt "}, nil, nil)
		assert.Len(t, views, 1)
	})

	t.Run("panicking pricing", func(t *testing.T) {
		records := []entity.BalanceRecord{{Denomination: "btc", NetworkType: "segwit", Value: "1"}}
		var views []entity.AssetView
		require.NotPanics(t, func() {
			views = a.Aggregate([]string{"btc"}, records, panickingPricing{})
		})
		require.Len(t, views, 1)
		assert.True(t, views[0].Price.IsZero())
		assert.True(t, dec("1").Equal(views[0].TotalBalance))
	})

	t.Run("nil catalog", func(t *testing.T) {
		views, gaps := NewAggregator(nil, "", logger.Nop()).AggregateWithGaps([]string{"usdt"}, []entity.BalanceRecord{{Denomination: "usdt", NetworkType: "tron", Value: "1"}}, nil)
		assert.Empty(t, views)
		assert.Len(t, gaps, 2)
	})
}

func TestAggregateSortIsStable(t *testing.T) {
	a := newTestAggregator(t)
	records := []entity.BalanceRecord{
		{Denomination: "xaut", NetworkType: "ethereum", Value: "1"},
		{Denomination: "usdt", NetworkType: "tron", Value: "1"},
	}

	// no prices: both have fiat zero, insertion order is kept
	views := a.Aggregate([]string{"xaut", "usdt", "btc"}, records, mapPricing{})
	assert.Equal(t, []string{"xaut", "usdt", "btc"}, denominations(views))

	views = a.Aggregate([]string{"btc", "usdt", "xaut"}, records, mapPricing{})
	assert.Equal(t, []string{"usdt", "xaut", "btc"}, denominations(views))

	for i := 1; i < len(views); i++ {
		prev, cur := views[i-1], views[i]
		if prev.HasBalance == cur.HasBalance {
			assert.False(t, cur.TotalBalanceFiat.GreaterThan(prev.TotalBalanceFiat))
		} else {
			assert.True(t, prev.HasBalance)
		}
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	a := newTestAggregator(t)
	records := []entity.BalanceRecord{
		{Denomination: "usdt", NetworkType: "arbitrum", Value: "12.5"},
		{Denomination: "btc", NetworkType: "segwit", Value: "0.1"},
	}
	pricing := mapPricing{"usdt": dec("1"), "btc": dec("50000")}
	enabled := []string{"usdt", "btc"}

	first := a.Aggregate(enabled, records, pricing)
	second := a.Aggregate(enabled, records, pricing)
	assert.Equal(t, first, second)
}
