// Package snapshot reads locally stored card API responses.
//
// A snapshot directory mirrors the card API resources as JSON files:
//
//	sets.json            all sets
//	cards/<setID>.json   every card of one set
//
// Each file holds either a bare JSON array or the API's {"data": [...]}
// envelope. The client falls back to a snapshot when the live API and the
// response cache both have nothing to serve.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/Sternrassler/tcg-client/pkg/card"
)

// ErrNotFound is returned when the snapshot has no file or record for a request.
var ErrNotFound = errors.New("not found in snapshot")

const (
	setsFile = "sets.json"
	cardsDir = "cards"
)

// Source reads snapshot files from a filesystem.
type Source struct {
	fsys fs.FS
}

// New creates a snapshot source over fsys.
func New(fsys fs.FS) *Source {
	return &Source{fsys: fsys}
}

// Dir creates a snapshot source over a directory on disk.
func Dir(dir string) *Source {
	return New(os.DirFS(dir))
}

// SetsPath is the relative path of the set list.
func SetsPath() string {
	return setsFile
}

// CardsPath is the relative path of one set's card list.
func CardsPath(setID string) string {
	return path.Join(cardsDir, setID+".json")
}

// Sets returns every set in the snapshot.
func (s *Source) Sets() ([]card.Set, error) {
	var sets []card.Set
	if err := s.read(SetsPath(), &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// Set returns one set by ID.
func (s *Source) Set(id string) (*card.Set, error) {
	sets, err := s.Sets()
	if err != nil {
		return nil, err
	}
	for i := range sets {
		if sets[i].ID == id {
			return &sets[i], nil
		}
	}
	return nil, fmt.Errorf("set %s: %w", id, ErrNotFound)
}

// Cards returns the cards of one set.
func (s *Source) Cards(setID string) ([]card.Card, error) {
	if !fs.ValidPath(CardsPath(setID)) || strings.Contains(setID, "/") {
		return nil, fmt.Errorf("set %q: %w", setID, ErrNotFound)
	}

	var cards []card.Card
	if err := s.read(CardsPath(setID), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// AllCards returns the cards of every set file, ordered by file name.
func (s *Source) AllCards() ([]card.Card, error) {
	matches, err := fs.Glob(s.fsys, path.Join(cardsDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list snapshot cards: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w", cardsDir, ErrNotFound)
	}
	sort.Strings(matches)

	var all []card.Card
	for _, name := range matches {
		var cards []card.Card
		if err := s.read(name, &cards); err != nil {
			return nil, err
		}
		all = append(all, cards...)
	}
	return all, nil
}

// Card returns one card by ID. The set file is derived from the ID prefix
// ("base1-4" lives in cards/base1.json); other files are scanned if needed.
func (s *Source) Card(id string) (*card.Card, error) {
	if i := strings.LastIndex(id, "-"); i > 0 {
		if cards, err := s.Cards(id[:i]); err == nil {
			if c := findCard(cards, id); c != nil {
				return c, nil
			}
		}
	}

	cards, err := s.AllCards()
	if err != nil {
		return nil, err
	}
	if c := findCard(cards, id); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("card %s: %w", id, ErrNotFound)
}

func findCard(cards []card.Card, id string) *card.Card {
	for i := range cards {
		if cards[i].ID == id {
			return &cards[i]
		}
	}
	return nil
}

// read decodes a snapshot file holding a bare array or a data envelope.
func (s *Source) read(name string, target any) error {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return fmt.Errorf("read snapshot %s: %w", name, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return fmt.Errorf("decode snapshot %s: %w", name, err)
		}
		trimmed = envelope.Data
	}

	if err := json.Unmarshal(trimmed, target); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", name, err)
	}
	return nil
}
