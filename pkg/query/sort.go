package query

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/Sternrassler/tcg-client/pkg/card"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the ordering of a query result.
type SortKey string

// Supported sort keys.
const (
	SortNumberAsc  SortKey = "number-asc"
	SortNumberDesc SortKey = "number-desc"
	SortNameAsc    SortKey = "name-asc"
	SortNameDesc   SortKey = "name-desc"
	SortPriceAsc   SortKey = "price-asc"
	SortPriceDesc  SortKey = "price-desc"
	SortRarityAsc  SortKey = "rarity-asc"
	SortRarityDesc SortKey = "rarity-desc"
)

// ParseSortKey maps a raw sort parameter to a SortKey. Empty or unknown
// values fall back to SortNumberAsc.
func ParseSortKey(raw string) SortKey {
	switch key := SortKey(raw); key {
	case SortNumberAsc, SortNumberDesc,
		SortNameAsc, SortNameDesc,
		SortPriceAsc, SortPriceDesc,
		SortRarityAsc, SortRarityDesc:
		return key
	default:
		return SortNumberAsc
	}
}

// Sort orders cards in place by key. The sort is stable: cards that compare
// equal keep their input order, in both directions.
func Sort(cards []card.Card, key SortKey) {
	key = ParseSortKey(string(key))

	var compare func(a, b card.Card) int
	switch key {
	case SortNameAsc, SortNameDesc:
		// A collator is not safe for concurrent use, so each sort gets its own.
		col := collate.New(language.English)
		compare = func(a, b card.Card) int {
			return col.CompareString(a.Name, b.Name)
		}
	case SortPriceAsc, SortPriceDesc:
		compare = func(a, b card.Card) int {
			return cmp.Compare(DerivedPrice(a), DerivedPrice(b))
		}
	case SortRarityAsc, SortRarityDesc:
		compare = func(a, b card.Card) int {
			return cmp.Compare(RarityOrdinal(a.Rarity), RarityOrdinal(b.Rarity))
		}
	default:
		compare = func(a, b card.Card) int {
			return cmp.Compare(LeadingNumber(a.Number), LeadingNumber(b.Number))
		}
	}

	if isDescending(key) {
		asc := compare
		compare = func(a, b card.Card) int { return asc(b, a) }
	}

	slices.SortStableFunc(cards, compare)
}

func isDescending(key SortKey) bool {
	switch key {
	case SortNumberDesc, SortNameDesc, SortPriceDesc, SortRarityDesc:
		return true
	}
	return false
}

// LeadingNumber parses the leading ASCII digits of a card number
// ("12a" -> 12, "SV001" -> 0). Anything unparsable is 0.
func LeadingNumber(number string) int {
	end := 0
	for end < len(number) && number[end] >= '0' && number[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(number[:end])
	if err != nil {
		return 0
	}
	return n
}
