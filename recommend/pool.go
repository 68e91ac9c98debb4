package recommend

import (
	"sort"

	"ytscout/youtube"
)

// SubscriptionSet holds the channel IDs the user already follows.
// Discovery never surfaces members of this set. The core only reads
// it.
type SubscriptionSet map[string]struct{}

// NewSubscriptionSet builds a set from channel IDs.
func NewSubscriptionSet(ids ...string) SubscriptionSet {
	s := make(SubscriptionSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts a channel ID. Empty IDs are ignored.
func (s SubscriptionSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set.
func (s SubscriptionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the set size.
func (s SubscriptionSet) Len() int { return len(s) }

// candidateEntry tracks one discovered channel through the run: how
// often discovery surfaced it, then its record and score once fetched
// and scored.
type candidateEntry struct {
	id      string
	count   int
	channel *youtube.Channel
	score   float64
}

// pool accumulates discovery hits. Each channel ID maps to exactly one
// entry; repeat hits from any method increment the entry's count
// instead of creating a second entry. Excluded IDs (the seed, existing
// subscriptions) never enter.
type pool struct {
	entries map[string]*candidateEntry
	order   []string
	exclude map[string]struct{}
}

func newPool(seedID string, subs SubscriptionSet) *pool {
	p := &pool{
		entries: make(map[string]*candidateEntry),
		exclude: make(map[string]struct{}, len(subs)+1),
	}
	if seedID != "" {
		p.exclude[seedID] = struct{}{}
	}
	for id := range subs {
		p.exclude[id] = struct{}{}
	}
	return p
}

// add records one discovery hit for id. It reports whether the hit
// counted; excluded and empty IDs do not.
func (p *pool) add(id string) bool {
	if id == "" {
		return false
	}
	if _, banned := p.exclude[id]; banned {
		return false
	}
	if e, ok := p.entries[id]; ok {
		e.count++
		return true
	}
	p.entries[id] = &candidateEntry{id: id, count: 1}
	p.order = append(p.order, id)
	return true
}

func (p *pool) size() int { return len(p.order) }

// list returns the entries in insertion order.
func (p *pool) list() []*candidateEntry {
	out := make([]*candidateEntry, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id])
	}
	return out
}

// trim caps the pool at max entries, dropping the lowest discovery
// counts first. On equal counts the earlier-discovered entry stays.
func (p *pool) trim(max int) {
	if max <= 0 || len(p.order) <= max {
		return
	}

	ranked := p.list()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})

	kept := make(map[string]struct{}, max)
	for _, e := range ranked[:max] {
		kept[e.id] = struct{}{}
	}

	order := p.order[:0]
	for _, id := range p.order {
		if _, ok := kept[id]; ok {
			order = append(order, id)
		} else {
			delete(p.entries, id)
		}
	}
	p.order = order
}
