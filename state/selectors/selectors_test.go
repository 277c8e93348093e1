package selectors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmarket/state/data"
)

func portfolio() data.State {
	s := data.Initial(1000)
	s.StockMarket.Stocks = []data.Stock{
		{Name: "ACME", Value: 10, Type: "Technology", Quantity: 5},
		{Name: "Globex", Value: 50, Type: "Energy", Quantity: 1},
		{Name: "Initech", Value: 7, Type: "Technology", Quantity: 0},
	}
	return s
}

func TestStockValue(t *testing.T) {
	t.Parallel()

	s := portfolio()
	assert.InDelta(t, 100.0, StockValue(s), 1e-9)
	assert.InDelta(t, 1100.0, Capital(s), 1e-9)
}

func TestStockValueSkipsNonFinite(t *testing.T) {
	t.Parallel()

	s := portfolio()
	s.StockMarket.Stocks = append(s.StockMarket.Stocks, data.Stock{
		Name: "Broken", Value: math.Inf(1), Quantity: 2,
	})
	assert.InDelta(t, 100.0, StockValue(s), 1e-9)
}

func TestPossessedStocks(t *testing.T) {
	t.Parallel()

	owned := PossessedStocks(portfolio())
	require.Len(t, owned, 2)
	assert.Equal(t, "ACME", owned[0].Name)
	assert.Equal(t, "Globex", owned[1].Name)
}

func TestCategoryValues(t *testing.T) {
	t.Parallel()

	categories := CategoryValues(portfolio())
	require.Len(t, categories, 2)

	byName := map[string]float64{}
	for _, c := range categories {
		byName[c.CategoryName] = c.Ratio
	}
	// 5 of 6 held shares are Technology, 1 of 6 Energy. Initech holds
	// nothing so Technology appears once and no empty sector is listed.
	assert.InDelta(t, 5.0/6*100, byName["Technology"], 1e-9)
	assert.InDelta(t, 1.0/6*100, byName["Energy"], 1e-9)
}

func TestCategoryValuesEmptyPortfolio(t *testing.T) {
	t.Parallel()

	s := portfolio()
	for i := range s.StockMarket.Stocks {
		s.StockMarket.Stocks[i].Quantity = 0
	}
	assert.Empty(t, CategoryValues(s))
}

func TestEarningsMultiplier(t *testing.T) {
	t.Parallel()

	s := data.Initial(0)
	assert.Equal(t, 1.0, EarningsMultiplier(s))

	i := data.FindUpgrade(s.Upgrades.Upgrades, "boost-1")
	require.NotEqual(t, -1, i)
	s.Upgrades.Upgrades[i].Level = 2

	j := data.FindUpgrade(s.Upgrades.Upgrades, "goldmine")
	require.NotEqual(t, -1, j)
	s.Upgrades.Upgrades[j].Level = 1

	want := math.Pow(1.25, 2) * 2.5
	assert.InDelta(t, want, EarningsMultiplier(s), 1e-9)
}
