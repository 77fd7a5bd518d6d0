package results

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/park285/Cheese-chess-engine/internal/game"
)

// memrepo keeps results in process memory; used for development and when
// no database is configured.
type memrepo struct {
	mu sync.RWMutex

	nextID   int64
	byGameID map[string]*Record
	byPlayer map[game.PlayerID][]*Record
}

func NewMemory() Repository {
	return &memrepo{
		byGameID: make(map[string]*Record),
		byPlayer: make(map[game.PlayerID][]*Record),
	}
}

func (m *memrepo) SaveResult(_ context.Context, rec *Record) (int64, error) {
	if rec == nil {
		return 0, errors.New("nil result record")
	}
	key := strings.TrimSpace(rec.GameID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byGameID[key]; exists {
		return 0, ErrDuplicateGame
	}
	m.nextID++
	stored := cloneRecord(rec)
	stored.ID = m.nextID
	rec.ID = stored.ID

	m.byGameID[key] = stored
	m.byPlayer[stored.White] = append(m.byPlayer[stored.White], stored)
	if stored.Black != stored.White {
		m.byPlayer[stored.Black] = append(m.byPlayer[stored.Black], stored)
	}
	return stored.ID, nil
}

func (m *memrepo) Get(_ context.Context, gameID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.byGameID[strings.TrimSpace(gameID)]; ok {
		return cloneRecord(rec), nil
	}
	return nil, nil
}

func (m *memrepo) Recent(_ context.Context, player game.PlayerID, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	items := append([]*Record(nil), m.byPlayer[player]...)
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]*Record, len(items))
	for i, rec := range items {
		out[i] = cloneRecord(rec)
	}
	return out, nil
}

func (m *memrepo) Stats(_ context.Context, player game.PlayerID) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := &Stats{Player: player}
	for _, rec := range m.byPlayer[player] {
		st.tally(rec)
	}
	return st, nil
}

func (m *memrepo) Close() error { return nil }

func cloneRecord(rec *Record) *Record {
	c := *rec
	c.MovesUCI = append([]string{}, rec.MovesUCI...)
	c.MovesSAN = append([]string{}, rec.MovesSAN...)
	return &c
}
