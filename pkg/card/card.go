// Package card defines the card and set records returned by the Pokémon TCG API.
//
// Records are read-only inputs: nothing in this module mutates or persists them
// beyond caching the raw JSON responses they were decoded from.
package card

// Supertype values as returned by the card API.
const (
	SupertypePokemon = "Pokémon"
	SupertypeTrainer = "Trainer"
	SupertypeEnergy  = "Energy"
)

// Card is a single card record.
type Card struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Supertype  string      `json:"supertype"`
	Subtypes   []string    `json:"subtypes,omitempty"`
	HP         string      `json:"hp,omitempty"`
	Types      []string    `json:"types,omitempty"`
	Number     string      `json:"number"`
	Artist     string      `json:"artist,omitempty"`
	Rarity     string      `json:"rarity,omitempty"`
	Set        *SetRef     `json:"set,omitempty"`
	Images     *Images     `json:"images,omitempty"`
	CardMarket *CardMarket `json:"cardmarket,omitempty"`
	TCGPlayer  *TCGPlayer  `json:"tcgplayer,omitempty"`
}

// SetRef is the abbreviated set embedded in a card record.
type SetRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Series string `json:"series,omitempty"`
}

// Images holds image URLs for cards and sets.
type Images struct {
	Small  string `json:"small,omitempty"`
	Large  string `json:"large,omitempty"`
	Symbol string `json:"symbol,omitempty"`
	Logo   string `json:"logo,omitempty"`
}

// CardMarket holds Cardmarket pricing. Any price may be absent.
type CardMarket struct {
	URL       string            `json:"url,omitempty"`
	UpdatedAt string            `json:"updatedAt,omitempty"`
	Prices    *CardMarketPrices `json:"prices,omitempty"`
}

// CardMarketPrices are the Cardmarket price points used for sorting.
type CardMarketPrices struct {
	AverageSellPrice *float64 `json:"averageSellPrice,omitempty"`
	LowPrice         *float64 `json:"lowPrice,omitempty"`
	TrendPrice       *float64 `json:"trendPrice,omitempty"`
}

// TCGPlayer holds TCGplayer pricing keyed by print variant.
type TCGPlayer struct {
	URL       string           `json:"url,omitempty"`
	UpdatedAt string           `json:"updatedAt,omitempty"`
	Prices    *TCGPlayerPrices `json:"prices,omitempty"`
}

// TCGPlayerPrices groups price points per print variant.
type TCGPlayerPrices struct {
	Normal          *PricePoint `json:"normal,omitempty"`
	Holofoil        *PricePoint `json:"holofoil,omitempty"`
	ReverseHolofoil *PricePoint `json:"reverseHolofoil,omitempty"`
}

// PricePoint is one TCGplayer variant's prices.
type PricePoint struct {
	Low    *float64 `json:"low,omitempty"`
	Mid    *float64 `json:"mid,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Market *float64 `json:"market,omitempty"`
}

// Set is a card expansion.
type Set struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Series       string  `json:"series"`
	PrintedTotal int     `json:"printedTotal"`
	Total        int     `json:"total"`
	PtcgoCode    string  `json:"ptcgoCode,omitempty"`
	ReleaseDate  string  `json:"releaseDate,omitempty"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
	Images       *Images `json:"images,omitempty"`
}

// ListResponse is the paged list envelope of the card API.
type ListResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
}

// ItemResponse is the single-record envelope of the card API.
type ItemResponse[T any] struct {
	Data T `json:"data"`
}

// Price returns a pointer to p, for building records in code.
func Price(p float64) *float64 {
	return &p
}
