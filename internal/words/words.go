// internal/words/words.go
package words

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"
)

// Difficulty selects which word table a round draws from.
type Difficulty string

const (
	All    Difficulty = "All"
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// NotAvailable is returned when a word has no known definition.
const NotAvailable = "not available"

// Tier bucketing by word length. Easy 3-4, Medium 5-7, Hard 8+.
func tierOf(word string) Difficulty {
	switch n := len(word); {
	case n <= 4:
		return Easy
	case n <= 7:
		return Medium
	default:
		return Hard
	}
}

// Parse maps a client-supplied difficulty string to a Difficulty.
// Unknown values fall back to All.
func Parse(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return All, true
	case "easy":
		return Easy, true
	case "medium":
		return Medium, true
	case "hard":
		return Hard, true
	}
	return All, false
}

// Source holds the four static word tables, loaded once at process start
// and read-only thereafter. Random picks are seedable for tests.
type Source struct {
	tables map[Difficulty]map[string]string
	keys   map[Difficulty][]string

	mu  sync.Mutex // guards rng only; tables are immutable after New
	rng *rand.Rand
}

// New buckets the master word->definition table into the four difficulty
// tables. Words are lower-cased; the seed drives PickRandom.
func New(master map[string]string, seed int64) *Source {
	s := &Source{
		tables: map[Difficulty]map[string]string{
			All:    {},
			Easy:   {},
			Medium: {},
			Hard:   {},
		},
		keys: map[Difficulty][]string{},
		rng:  rand.New(rand.NewSource(seed)),
	}
	for w, def := range master {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		s.tables[All][w] = def
		s.tables[tierOf(w)][w] = def
	}
	for tier, table := range s.tables {
		keys := make([]string, 0, len(table))
		for w := range table {
			keys = append(keys, w)
		}
		sort.Strings(keys)
		s.keys[tier] = keys
	}
	return s
}

// ForDifficulty returns the word->definition table for a tier.
func (s *Source) ForDifficulty(tier Difficulty) map[string]string {
	if t, ok := s.tables[tier]; ok {
		return t
	}
	return s.tables[All]
}

// PickRandom draws uniformly from the tier's table. The second return is
// false when the tier has no words at all.
func (s *Source) PickRandom(tier Difficulty) (string, bool) {
	keys, ok := s.keys[tier]
	if !ok {
		keys = s.keys[All]
	}
	if len(keys) == 0 {
		return "", false
	}
	s.mu.Lock()
	i := s.rng.Intn(len(keys))
	s.mu.Unlock()
	return keys[i], true
}

// Definition looks up a word's definition in the tier's table, falling
// back to the All table and finally to NotAvailable.
func (s *Source) Definition(word string, tier Difficulty) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if def, ok := s.ForDifficulty(tier)[word]; ok && def != "" {
		return def
	}
	if def, ok := s.tables[All][word]; ok && def != "" {
		return def
	}
	return NotAvailable
}

// LoadFile reads a JSON word->definition table from disk, for overriding
// the built-in tables at startup.
func LoadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words file %s: %w", path, err)
	}
	var master map[string]string
	if err := json.Unmarshal(data, &master); err != nil {
		return nil, fmt.Errorf("parse words file %s: %w", path, err)
	}
	if len(master) == 0 {
		return nil, fmt.Errorf("words file %s contains no entries", path)
	}
	return master, nil
}
