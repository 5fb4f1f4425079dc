package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/flap/neural"
)

// HallEntry is a brain that scored well in some generation.
type HallEntry struct {
	Weights    neural.BrainWeights `json:"brain"`
	Fitness    float64             `json:"fitness"`
	Generation int                 `json:"generation"`
	Score      int                 `json:"score"`
}

// HallOfFame keeps the best brains seen across all generations, sorted by
// fitness descending.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding at most maxSize entries.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider offers a brain for entry. Returns true if it was added.
func (hof *HallOfFame) Consider(brain *neural.FFNN, fitness float64, generation, score int) bool {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < fitness
	})

	// Full and not better than the weakest entry
	if idx >= hof.maxSize {
		return false
	}

	entry := HallEntry{
		Weights:    brain.MarshalWeights(),
		Fitness:    fitness,
		Generation: generation,
		Score:      score,
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// Best returns the top entry, or false if the hall is empty.
func (hof *HallOfFame) Best() (HallEntry, bool) {
	if len(hof.entries) == 0 {
		return HallEntry{}, false
	}
	return hof.entries[0], true
}

// Entries returns a copy of all entries, best first.
func (hof *HallOfFame) Entries() []HallEntry {
	out := make([]HallEntry, len(hof.entries))
	copy(out, hof.entries)
	return out
}

// MarshalJSON serializes the hall of fame, best first.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}

// LoadBrain reads a brain saved as a HallEntry (champion.json) or a bare
// BrainWeights object.
func LoadBrain(path string) (*neural.FFNN, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading brain: %w", err)
	}

	var entry HallEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parsing brain JSON: %w", err)
	}
	bw := entry.Weights
	if bw.Hidden == 0 {
		if err := json.Unmarshal(data, &bw); err != nil {
			return nil, fmt.Errorf("parsing brain JSON: %w", err)
		}
	}

	nn, err := neural.UnmarshalWeights(bw)
	if err != nil {
		return nil, fmt.Errorf("restoring brain from %s: %w", path, err)
	}
	return nn, nil
}
