package market

import "stockmarket/state/data"

// Seed returns the builtin stock listing used when no persisted market
// exists. Volatility is a percent per tick; sectors feed the category
// breakdown in analytics.
func Seed() []data.Stock {
	return []data.Stock{
		{Name: "Apple", Value: 170, Volatility: 2, Type: "Technology"},
		{Name: "Microsoft", Value: 310, Volatility: 1.5, Type: "Technology"},
		{Name: "Google", Value: 135, Volatility: 2, Type: "Technology"},
		{Name: "Amazon", Value: 130, Volatility: 2.5, Type: "Technology"},
		{Name: "Samsung", Value: 60, Volatility: 2, Type: "Technology"},
		{Name: "Spotify", Value: 145, Volatility: 3, Type: "Media"},
		{Name: "Netflix", Value: 400, Volatility: 3, Type: "Media"},
		{Name: "Tesla", Value: 250, Volatility: 4, Type: "Automotive"},
		{Name: "SolarCity", Value: 25, Volatility: 4, Type: "Energy"},
		{Name: "SHELL", Value: 65, Volatility: 1.5, Type: "Energy"},
		{Name: "UBS AG", Value: 28, Volatility: 1.5, Type: "Finance"},
		{Name: "Swiss Life AG", Value: 550, Volatility: 1, Type: "Finance"},
		{Name: "Card Services AG", Value: 240, Volatility: 1.5, Type: "Finance"},
		{Name: "Nestlé", Value: 105, Volatility: 1, Type: "Consumer"},
	}
}
