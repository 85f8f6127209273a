package query

import (
	"testing"

	"github.com/Sternrassler/tcg-client/pkg/card"
)

func TestSort_NumberIsNumeric(t *testing.T) {
	cards := []card.Card{
		{ID: "4", Number: "4"},
		{ID: "1", Number: "1"},
		{ID: "10", Number: "10"},
		{ID: "2", Number: "2"},
	}

	Sort(cards, SortNumberAsc)

	if !equalIDs(cards, "1", "2", "4", "10") {
		t.Errorf("number-asc = %v, want [1 2 4 10]", ids(cards))
	}

	Sort(cards, SortNumberDesc)

	if !equalIDs(cards, "10", "4", "2", "1") {
		t.Errorf("number-desc = %v, want [10 4 2 1]", ids(cards))
	}
}

func TestSort_Stable(t *testing.T) {
	cards := []card.Card{
		{ID: "a", Number: "TG01"},
		{ID: "b", Number: "5"},
		{ID: "c", Number: "SV002"},
		{ID: "d", Number: "5a"},
	}

	Sort(cards, SortNumberAsc)
	if !equalIDs(cards, "a", "c", "b", "d") {
		t.Errorf("number-asc = %v, want [a c b d]", ids(cards))
	}

	cards = []card.Card{
		{ID: "a", Number: "TG01"},
		{ID: "b", Number: "5"},
		{ID: "c", Number: "SV002"},
		{ID: "d", Number: "5a"},
	}
	Sort(cards, SortNumberDesc)
	if !equalIDs(cards, "b", "d", "a", "c") {
		t.Errorf("number-desc = %v, want [b d a c]", ids(cards))
	}
}

func TestSort_DefaultKey(t *testing.T) {
	for _, key := range []SortKey{"", "bogus"} {
		cards := []card.Card{{ID: "3", Number: "3"}, {ID: "1", Number: "1"}}
		Sort(cards, key)
		if !equalIDs(cards, "1", "3") {
			t.Errorf("Sort(%q) = %v, want [1 3]", key, ids(cards))
		}
	}
}

func TestSort_Name(t *testing.T) {
	cards := []card.Card{
		{ID: "z", Name: "Zubat"},
		{ID: "e", Name: "Éevee"},
		{ID: "a", Name: "abra"},
		{ID: "b", Name: "Bulbasaur"},
	}

	Sort(cards, SortNameAsc)
	if !equalIDs(cards, "a", "b", "e", "z") {
		t.Errorf("name-asc = %v, want [a b e z]", ids(cards))
	}

	Sort(cards, SortNameDesc)
	if !equalIDs(cards, "z", "e", "b", "a") {
		t.Errorf("name-desc = %v, want [z e b a]", ids(cards))
	}
}

func TestSort_Price(t *testing.T) {
	cards := []card.Card{
		{ID: "none"},
		{ID: "tcg", TCGPlayer: &card.TCGPlayer{Prices: &card.TCGPlayerPrices{
			Normal: &card.PricePoint{Market: card.Price(5)},
		}}},
		{ID: "cm", CardMarket: &card.CardMarket{Prices: &card.CardMarketPrices{TrendPrice: card.Price(3)}}},
	}

	Sort(cards, SortPriceAsc)
	if !equalIDs(cards, "none", "cm", "tcg") {
		t.Errorf("price-asc = %v, want [none cm tcg]", ids(cards))
	}

	Sort(cards, SortPriceDesc)
	if !equalIDs(cards, "tcg", "cm", "none") {
		t.Errorf("price-desc = %v, want [tcg cm none]", ids(cards))
	}
}

func TestSort_Rarity(t *testing.T) {
	cards := []card.Card{
		{ID: "common", Rarity: "Common"},
		{ID: "foo", Rarity: "Foo Bar"},
		{ID: "secret", Rarity: "Rare Secret"},
		{ID: "holo", Rarity: "Rare Holo"},
		{ID: "missing"},
	}

	Sort(cards, SortRarityDesc)
	if !equalIDs(cards, "secret", "holo", "common", "foo", "missing") {
		t.Errorf("rarity-desc = %v, want [secret holo common foo missing]", ids(cards))
	}

	Sort(cards, SortRarityAsc)
	if !equalIDs(cards, "foo", "missing", "common", "holo", "secret") {
		t.Errorf("rarity-asc = %v, want [foo missing common holo secret]", ids(cards))
	}
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"":            SortNumberAsc,
		"price-desc":  SortPriceDesc,
		"rarity-asc":  SortRarityAsc,
		"name-desc":   SortNameDesc,
		"PRICE-DESC":  SortNumberAsc,
		"number-down": SortNumberAsc,
	}
	for raw, want := range tests {
		if got := ParseSortKey(raw); got != want {
			t.Errorf("ParseSortKey(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestLeadingNumber(t *testing.T) {
	tests := map[string]int{
		"":                      0,
		"4":                     4,
		"010":                   10,
		"12a":                   12,
		"SV001":                 0,
		"TG12":                  0,
		"99999999999999999999x": 0,
	}
	for in, want := range tests {
		if got := LeadingNumber(in); got != want {
			t.Errorf("LeadingNumber(%q) = %d, want %d", in, got, want)
		}
	}
}
