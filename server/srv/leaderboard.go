package srv

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/xiphoidxray/fruitbox-fsg/shared/protocol"
)

// topScoreEntry is the on-disk record, one per leaderboard row.
type topScoreEntry struct {
	Score int    `json:"score"`
	Name  string `json:"name"`
}

type lbEntry struct {
	score int
	name  string
	seq   int64 // insertion order; among equal scores the newer entry ranks first
}

// Leaderboard is the process-wide historical top-N score table. Rooms from
// independent rounds record into it concurrently; a single mutex serializes
// writes (once per round end, so contention is a non-issue).
type Leaderboard struct {
	mu      sync.Mutex
	entries []lbEntry
	size    int
	path    string
	seq     int64
}

func NewLeaderboard(size int, path string) *Leaderboard {
	return &Leaderboard{size: size, path: path}
}

// Load reads the persisted table. A missing file is a fresh server, not an
// error.
func (lb *Leaderboard) Load() error {
	b, err := os.ReadFile(lb.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var rows []topScoreEntry
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.entries = lb.entries[:0]
	for _, r := range rows {
		lb.seq++
		lb.entries = append(lb.entries, lbEntry{score: r.Score, name: r.Name, seq: lb.seq})
	}
	lb.sortAndTrimLocked()
	return nil
}

// Record inserts one final score, re-sorts and trims to the top N, then
// persists the table.
func (lb *Leaderboard) Record(name string, score int) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.seq++
	lb.entries = append(lb.entries, lbEntry{score: score, name: name, seq: lb.seq})
	lb.sortAndTrimLocked()
	if err := lb.saveLocked(); err != nil {
		log.Error().Err(err).Str("path", lb.path).Msg("leaderboard save failed")
	}
}

// Top returns the table best-first, ready for a Top10Scores broadcast.
func (lb *Leaderboard) Top() []protocol.TopScore {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	out := make([]protocol.TopScore, len(lb.entries))
	for i, e := range lb.entries {
		out[i] = protocol.TopScore{Score: e.score, Name: e.name}
	}
	return out
}

func (lb *Leaderboard) sortAndTrimLocked() {
	sort.SliceStable(lb.entries, func(i, j int) bool {
		if lb.entries[i].score != lb.entries[j].score {
			return lb.entries[i].score > lb.entries[j].score
		}
		return lb.entries[i].seq > lb.entries[j].seq
	})
	if len(lb.entries) > lb.size {
		lb.entries = lb.entries[:lb.size]
	}
}

func (lb *Leaderboard) saveLocked() error {
	rows := make([]topScoreEntry, len(lb.entries))
	for i, e := range lb.entries {
		rows[i] = topScoreEntry{Score: e.score, Name: e.name}
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(lb.path), 0o755); err != nil {
		return err
	}
	tmp := lb.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, lb.path)
}
