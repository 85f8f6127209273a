package client

import (
	"strings"

	"github.com/Sternrassler/tcg-client/pkg/query"
)

// luceneSpecial lists the characters the card API's query syntax reserves.
const luceneSpecial = `+-!(){}[]^"~*?:\/&|`

// BuildSearchQuery turns a user search term into a card API query.
// An all-digit term searches card numbers, anything else is a wildcard
// name search with reserved characters escaped so they match literally.
func BuildSearchQuery(term string) string {
	term = strings.TrimSpace(term)
	if term == "" {
		return ""
	}
	if query.IsNumberTerm(term) {
		return "number:" + term
	}
	return `name:"*` + EscapeQuery(term) + `*"`
}

// SetCardsQuery selects the cards of a set. The ID is escaped so a
// caller-supplied ID cannot add clauses to the query.
func SetCardsQuery(setID string) string {
	return "set.id:" + EscapeQuery(setID)
}

// EscapeQuery backslash-escapes reserved query characters in s.
func EscapeQuery(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(luceneSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
