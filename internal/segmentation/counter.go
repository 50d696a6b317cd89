package segmentation

import "sort"

// Counter is an insertion-ordered multiset. Ranking is by count descending
// with ties broken by first-seen order, which keeps every downstream
// ranking deterministic.
type Counter[K comparable] struct {
	counts map[K]int
	order  []K
}

// NewCounter creates an empty counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

// Add increments key by n, recording first-seen order for new keys.
func (c *Counter[K]) Add(key K, n int) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key] += n
}

// Count returns the count for key, zero if absent.
func (c *Counter[K]) Count(key K) int { return c.counts[key] }

// Len returns the number of distinct keys.
func (c *Counter[K]) Len() int { return len(c.order) }

// Merge adds every count from other into c (pointwise sum over the key
// union). Keys new to c take their first-seen position at the end.
func (c *Counter[K]) Merge(other *Counter[K]) {
	for _, k := range other.order {
		c.Add(k, other.counts[k])
	}
}

// Entry pairs a key with its count.
type Entry[K comparable] struct {
	Key   K
	Count int
}

// MostCommon returns up to n entries ranked by count descending, ties
// broken by first-seen order. n < 0 returns all entries.
func (c *Counter[K]) MostCommon(n int) []Entry[K] {
	entries := make([]Entry[K], len(c.order))
	for i, k := range c.order {
		entries[i] = Entry[K]{Key: k, Count: c.counts[k]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n >= 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
