// Package query filters, sorts and pages card lists.
//
// Query is a pure function of its inputs: it performs no I/O, keeps no state
// between calls and never fails. Malformed card fields (unparsable numbers,
// missing prices, unknown rarities) rank as the lowest value instead of
// raising an error.
package query

import (
	"slices"
	"strings"

	"github.com/Sternrassler/tcg-client/pkg/card"
)

// DefaultPageSize is used when a query does not request a positive page size.
const DefaultPageSize = 24

// Card type filter values.
const (
	TypeAll     = "all"
	TypePokemon = "pokemon"
	TypeTrainer = "trainer"
	TypeEnergy  = "energy"
)

// supertypeFilters maps a requested card type to the supertype it keeps.
var supertypeFilters = map[string]string{
	TypePokemon: card.SupertypePokemon,
	"pokémon":   card.SupertypePokemon,
	TypeTrainer: card.SupertypeTrainer,
	TypeEnergy:  card.SupertypeEnergy,
}

// Params are the inputs of a card query.
type Params struct {
	SearchTerm string  `json:"searchTerm,omitempty"`
	CardType   string  `json:"cardType,omitempty"`
	SortKey    SortKey `json:"sortKey,omitempty"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
}

// Result is one page of a card query.
type Result struct {
	Cards      []card.Card `json:"cards"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// Query filters cards by type and search term, sorts them and returns the
// requested page. The input slice is not modified.
func Query(cards []card.Card, p Params) Result {
	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	filtered := FilterByTerm(FilterByType(cards, p.CardType), p.SearchTerm)
	Sort(filtered, p.SortKey)

	total := len(filtered)
	return Result{
		Cards:      pageOf(filtered, page, pageSize),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pageCount(total, pageSize),
	}
}

// pageCount is ceil(total/pageSize) without overflowing for huge page sizes.
func pageCount(total, pageSize int) int {
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// FilterByType keeps cards whose supertype matches cardType, ignoring case.
// An empty cardType or "all" keeps everything; an unknown cardType keeps
// nothing. The result never aliases the input.
func FilterByType(cards []card.Card, cardType string) []card.Card {
	cardType = strings.ToLower(strings.TrimSpace(cardType))
	if cardType == "" || cardType == TypeAll {
		return slices.Clone(cards)
	}

	want, ok := supertypeFilters[cardType]
	out := make([]card.Card, 0, len(cards))
	if !ok {
		return out
	}
	for _, c := range cards {
		if strings.EqualFold(c.Supertype, want) {
			out = append(out, c)
		}
	}
	return out
}

// FilterByTerm keeps cards matching a search term. An all-digit term matches
// against the card number, anything else against the name. Matching is a
// case-insensitive substring test. The result never aliases the input.
func FilterByTerm(cards []card.Card, term string) []card.Card {
	term = strings.TrimSpace(term)
	if term == "" {
		return slices.Clone(cards)
	}

	needle := strings.ToLower(term)
	byNumber := IsNumberTerm(term)

	out := make([]card.Card, 0, len(cards))
	for _, c := range cards {
		field := c.Name
		if byNumber {
			field = c.Number
		}
		if strings.Contains(strings.ToLower(field), needle) {
			out = append(out, c)
		}
	}
	return out
}

// IsNumberTerm reports whether term consists only of ASCII digits.
func IsNumberTerm(term string) bool {
	if term == "" {
		return false
	}
	for i := 0; i < len(term); i++ {
		if term[i] < '0' || term[i] > '9' {
			return false
		}
	}
	return true
}

// pageOf returns the cards of a 1-based page. Pages past the end are empty;
// the bound is checked before multiplying so huge page numbers cannot overflow.
func pageOf(cards []card.Card, page, pageSize int) []card.Card {
	if len(cards) == 0 || page-1 > (len(cards)-1)/pageSize {
		return []card.Card{}
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(cards)-start)
	return cards[start:end]
}
