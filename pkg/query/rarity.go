package query

import "strings"

// Rarity ordinals, lowest to highest. Unknown rarities rank as RarityUnknown.
const (
	RarityUnknown = iota
	RarityCommon
	RarityUncommon
	RarityRare
	RarityHolo
	RarityDoubleRare
	RarityMechanic
	RarityUltra
	RaritySpecialArt
	RaritySecret
)

// rarityTable maps exact rarity strings from the card API to their ordinal.
var rarityTable = map[string]int{
	"Common":   RarityCommon,
	"Uncommon": RarityUncommon,

	"Rare":                      RarityRare,
	"Promo":                     RarityRare,
	"Classic Collection":        RarityRare,
	"Rare Holo":                 RarityHolo,
	"Trainer Gallery Rare Holo": RarityHolo,

	"Rare Holo EX":    RarityDoubleRare,
	"Rare Holo GX":    RarityDoubleRare,
	"Rare Holo V":     RarityDoubleRare,
	"Rare Holo LV.X":  RarityDoubleRare,
	"Rare Holo Star":  RarityDoubleRare,
	"Rare BREAK":      RarityDoubleRare,
	"Rare Prime":      RarityDoubleRare,
	"Rare Prism Star": RarityDoubleRare,
	"LEGEND":          RarityDoubleRare,
	"Double Rare":     RarityDoubleRare,

	"Rare Holo VMAX":  RarityMechanic,
	"Rare Holo VSTAR": RarityMechanic,
	"Rare ACE":        RarityMechanic,
	"ACE SPEC Rare":   RarityMechanic,
	"Radiant Rare":    RarityMechanic,
	"Amazing Rare":    RarityMechanic,

	"Rare Ultra":        RarityUltra,
	"Ultra Rare":        RarityUltra,
	"Illustration Rare": RarityUltra,
	"Rare Shiny":        RarityUltra,
	"Shiny Rare":        RarityUltra,

	"Rare Shiny GX":             RaritySpecialArt,
	"Shiny Ultra Rare":          RaritySpecialArt,
	"Rare Rainbow":              RaritySpecialArt,
	"Special Illustration Rare": RaritySpecialArt,

	"Rare Secret": RaritySecret,
	"Hyper Rare":  RaritySecret,
}

// rarityRule assigns ordinal to any lower-cased rarity containing match.
type rarityRule struct {
	match   string
	ordinal int
}

// rarityRules are tried top to bottom when no exact entry exists; the first
// match wins. Order matters where substrings overlap ("ultra secret" is
// secret, "uncommon" is checked before "common").
var rarityRules = []rarityRule{
	{"hyper", RaritySecret},
	{"secret", RaritySecret},
	{"rainbow", RaritySpecialArt},
	{"special illustration", RaritySpecialArt},
	{"shiny ultra", RaritySpecialArt},
	{"illustration", RarityUltra},
	{"ultra", RarityUltra},
	{"shiny", RarityUltra},
	{"vmax", RarityMechanic},
	{"vstar", RarityMechanic},
	{"radiant", RarityMechanic},
	{"amazing", RarityMechanic},
	{"ace spec", RarityMechanic},
	{"double", RarityDoubleRare},
	{"prism", RarityDoubleRare},
	{"break", RarityDoubleRare},
	{"legend", RarityDoubleRare},
	{"holo", RarityHolo},
	{"promo", RarityRare},
	{"rare", RarityRare},
	{"uncommon", RarityUncommon},
	{"common", RarityCommon},
}

// RarityOrdinal ranks a rarity string. Exact table entries win, then the
// fuzzy rules, then RarityUnknown.
func RarityOrdinal(rarity string) int {
	rarity = strings.TrimSpace(rarity)
	if rarity == "" {
		return RarityUnknown
	}
	if ord, ok := rarityTable[rarity]; ok {
		return ord
	}

	lower := strings.ToLower(rarity)
	for _, rule := range rarityRules {
		if strings.Contains(lower, rule.match) {
			return rule.ordinal
		}
	}
	return RarityUnknown
}
