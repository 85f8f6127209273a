package snapshot

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"sets.json": {Data: []byte(`{"data":[
			{"id":"base1","name":"Base","series":"Base","printedTotal":102,"total":102},
			{"id":"sv1","name":"Scarlet & Violet","series":"Scarlet & Violet","printedTotal":198,"total":258}
		]}`)},
		"cards/base1.json": {Data: []byte(`[
			{"id":"base1-4","name":"Charizard","number":"4","supertype":"Pokémon","rarity":"Rare Holo"},
			{"id":"base1-44","name":"Bulbasaur","number":"44","supertype":"Pokémon","rarity":"Common"}
		]`)},
		"cards/sv1.json": {Data: []byte(`{"data":[
			{"id":"sv1-196","name":"Nest Ball","number":"196","supertype":"Trainer","rarity":"Uncommon"}
		]}`)},
		"cards/broken.json": {Data: []byte(`{"data": [`)},
	}
}

func TestSource_Sets(t *testing.T) {
	src := New(testFS())

	sets, err := src.Sets()
	if err != nil {
		t.Fatalf("Sets() error = %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("len(sets) = %d, want 2", len(sets))
	}
	if sets[1].ID != "sv1" || sets[1].Total != 258 {
		t.Errorf("sets[1] = %+v, want sv1 with total 258", sets[1])
	}
}

func TestSource_Set(t *testing.T) {
	src := New(testFS())

	set, err := src.Set("base1")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if set.Name != "Base" {
		t.Errorf("Name = %q, want Base", set.Name)
	}

	if _, err := src.Set("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Set(nope) error = %v, want ErrNotFound", err)
	}
}

func TestSource_Cards(t *testing.T) {
	src := New(testFS())

	tests := []struct {
		name    string
		setID   string
		wantLen int
		wantErr error
	}{
		{name: "bare array", setID: "base1", wantLen: 2},
		{name: "data envelope", setID: "sv1", wantLen: 1},
		{name: "missing set", setID: "xy1", wantErr: ErrNotFound},
		{name: "path traversal", setID: "../sets", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, err := src.Cards(tt.setID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Cards(%q) error = %v, want %v", tt.setID, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Cards(%q) error = %v", tt.setID, err)
			}
			if len(cards) != tt.wantLen {
				t.Errorf("len(cards) = %d, want %d", len(cards), tt.wantLen)
			}
		})
	}
}

func TestSource_CorruptFile(t *testing.T) {
	src := New(testFS())

	_, err := src.Cards("broken")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Errorf("decode error should not be ErrNotFound: %v", err)
	}
}

func TestSource_Card(t *testing.T) {
	fsys := testFS()
	delete(fsys, "cards/broken.json")
	src := New(fsys)

	c, err := src.Card("sv1-196")
	if err != nil {
		t.Fatalf("Card() error = %v", err)
	}
	if c.Name != "Nest Ball" {
		t.Errorf("Name = %q, want Nest Ball", c.Name)
	}

	if _, err := src.Card("base1-999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Card(base1-999) error = %v, want ErrNotFound", err)
	}
}

func TestSource_AllCards(t *testing.T) {
	fsys := testFS()
	delete(fsys, "cards/broken.json")
	src := New(fsys)

	cards, err := src.AllCards()
	if err != nil {
		t.Fatalf("AllCards() error = %v", err)
	}
	if len(cards) != 3 {
		t.Errorf("len(cards) = %d, want 3", len(cards))
	}
	if cards[0].ID != "base1-4" || cards[2].ID != "sv1-196" {
		t.Errorf("cards not ordered by file: first=%s last=%s", cards[0].ID, cards[2].ID)
	}
}

func TestSource_EmptyDir(t *testing.T) {
	src := New(fstest.MapFS{})

	if _, err := src.Sets(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Sets() error = %v, want ErrNotFound", err)
	}
	if _, err := src.AllCards(); !errors.Is(err, ErrNotFound) {
		t.Errorf("AllCards() error = %v, want ErrNotFound", err)
	}
}
