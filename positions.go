package pocket

import (
	"cmp"
	"slices"
)

// Position is the net holding of an asset, reduced from its portfolio entries.
type Position struct {
	Asset       string        `json:"asset"`
	Symbol      string        `json:"symbol,omitempty"`
	Category    AssetCategory `json:"category"`
	Quantity    Quantity      `json:"quantity"`
	CostBasis   Money         `json:"costBasis"`   // sum of price × quantity
	AverageCost Money         `json:"averageCost"` // CostBasis / Quantity
}

// Positions reduces the portfolio entries into positions keyed by asset and symbol.
// Positions whose quantity is negligible are left out. The result is sorted by asset then symbol.
func Positions(entries []PortfolioTx) []Position {
	index := make(map[string]*Position)
	for _, e := range entries {
		p, ok := index[e.Key()]
		if !ok {
			p = &Position{Asset: e.Asset, Symbol: e.Symbol, Category: e.Category}
			index[e.Key()] = p
		}
		p.Quantity = p.Quantity.Add(e.Quantity)
		p.CostBasis = p.CostBasis.Add(e.Price.Mul(e.Quantity))
	}

	positions := make([]Position, 0, len(index))
	for _, p := range index {
		if p.Quantity.IsNegligible() {
			continue
		}
		p.AverageCost = p.CostBasis.Div(p.Quantity)
		positions = append(positions, *p)
	}
	slices.SortFunc(positions, func(a, b Position) int {
		return cmp.Or(cmp.Compare(a.Asset, b.Asset), cmp.Compare(a.Symbol, b.Symbol))
	})
	return positions
}
