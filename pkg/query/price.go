package query

import "github.com/Sternrassler/tcg-client/pkg/card"

// DerivedPrice picks one comparable price for a card. Sources are tried in
// order: cardmarket trend, cardmarket average sell, cardmarket low,
// tcgplayer normal market, tcgplayer normal low. Missing and zero prices are
// skipped; a card with none prices at 0.
func DerivedPrice(c card.Card) float64 {
	var candidates []*float64

	if c.CardMarket != nil && c.CardMarket.Prices != nil {
		p := c.CardMarket.Prices
		candidates = append(candidates, p.TrendPrice, p.AverageSellPrice, p.LowPrice)
	}
	if c.TCGPlayer != nil && c.TCGPlayer.Prices != nil && c.TCGPlayer.Prices.Normal != nil {
		n := c.TCGPlayer.Prices.Normal
		candidates = append(candidates, n.Market, n.Low)
	}

	for _, p := range candidates {
		if p != nil && *p != 0 {
			return *p
		}
	}
	return 0
}
