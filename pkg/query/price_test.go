package query

import (
	"testing"

	"github.com/Sternrassler/tcg-client/pkg/card"
)

func TestDerivedPrice(t *testing.T) {
	tests := []struct {
		name string
		card card.Card
		want float64
	}{
		{
			name: "no price data",
			card: card.Card{},
			want: 0,
		},
		{
			name: "tcgplayer market only",
			card: card.Card{TCGPlayer: &card.TCGPlayer{Prices: &card.TCGPlayerPrices{
				Normal: &card.PricePoint{Market: card.Price(5.00)},
			}}},
			want: 5.00,
		},
		{
			name: "cardmarket trend wins over tcgplayer",
			card: card.Card{
				CardMarket: &card.CardMarket{Prices: &card.CardMarketPrices{TrendPrice: card.Price(3.00)}},
				TCGPlayer: &card.TCGPlayer{Prices: &card.TCGPlayerPrices{
					Normal: &card.PricePoint{Market: card.Price(10.00)},
				}},
			},
			want: 3.00,
		},
		{
			name: "cardmarket average when trend missing",
			card: card.Card{CardMarket: &card.CardMarket{Prices: &card.CardMarketPrices{
				AverageSellPrice: card.Price(2.50),
				LowPrice:         card.Price(1.00),
			}}},
			want: 2.50,
		},
		{
			name: "cardmarket low when trend is zero",
			card: card.Card{CardMarket: &card.CardMarket{Prices: &card.CardMarketPrices{
				TrendPrice: card.Price(0),
				LowPrice:   card.Price(0.75),
			}}},
			want: 0.75,
		},
		{
			name: "tcgplayer low when market missing",
			card: card.Card{TCGPlayer: &card.TCGPlayer{Prices: &card.TCGPlayerPrices{
				Normal: &card.PricePoint{Low: card.Price(0.10)},
			}}},
			want: 0.10,
		},
		{
			name: "holofoil prices are not consulted",
			card: card.Card{TCGPlayer: &card.TCGPlayer{Prices: &card.TCGPlayerPrices{
				Holofoil: &card.PricePoint{Market: card.Price(40)},
			}}},
			want: 0,
		},
		{
			name: "empty price objects",
			card: card.Card{CardMarket: &card.CardMarket{}, TCGPlayer: &card.TCGPlayer{}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivedPrice(tt.card); got != tt.want {
				t.Errorf("DerivedPrice() = %v, want %v", got, tt.want)
			}
		})
	}
}
