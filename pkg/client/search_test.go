package client

import "testing"

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		term string
		want string
	}{
		{name: "empty", term: "  ", want: ""},
		{name: "number", term: "25", want: "number:25"},
		{name: "number trimmed", term: " 007 ", want: "number:007"},
		{name: "name", term: "pikachu", want: `name:"*pikachu*"`},
		{name: "name with space", term: "mr. mime", want: `name:"*mr. mime*"`},
		{name: "mixed digits and letters", term: "25a", want: `name:"*25a*"`},
		{name: "quote escaped", term: `farfetch"d`, want: `name:"*farfetch\"d*"`},
		{name: "wildcards escaped", term: "a*b?", want: `name:"*a\*b\?*"`},
		{name: "grouping escaped", term: "(ex)", want: `name:"*\(ex\)*"`},
		{name: "field separator escaped", term: "type:fire", want: `name:"*type\:fire*"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchQuery(tt.term); got != tt.want {
				t.Errorf("BuildSearchQuery(%q) = %q, want %q", tt.term, got, tt.want)
			}
		})
	}
}

func TestEscapeQuery(t *testing.T) {
	in := `+-!(){}[]^"~*?:\/&|`
	want := `\+\-\!\(\)\{\}\[\]\^\"\~\*\?\:\\\/\&\|`

	if got := EscapeQuery(in); got != want {
		t.Errorf("EscapeQuery(%q) = %q, want %q", in, got, want)
	}
	if got := EscapeQuery("Pokémon"); got != "Pokémon" {
		t.Errorf("EscapeQuery(Pokémon) = %q, want unchanged", got)
	}
}

func TestSetCardsQuery(t *testing.T) {
	tests := []struct {
		setID string
		want  string
	}{
		{"sv1", "set.id:sv1"},
		{"swsh12pt5", "set.id:swsh12pt5"},
		{"sv1 OR set.id:base1", `set.id:sv1 OR set.id\:base1`},
		{`x")`, `set.id:x\"\)`},
	}

	for _, tt := range tests {
		t.Run(tt.setID, func(t *testing.T) {
			if got := SetCardsQuery(tt.setID); got != tt.want {
				t.Errorf("SetCardsQuery(%q) = %q, want %q", tt.setID, got, tt.want)
			}
		})
	}
}
