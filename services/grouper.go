package services

import "github.com/fenilmodi00/counsel-backend/models"

// TabCounter is anything that can report per-tab counts over an ordered vocabulary
type TabCounter interface {
	Vocabulary() []models.Tab
	Count(tab models.Tab) int
}

// Buckets is the result of grouping items by tab. Every vocabulary tab has a
// non-nil slice, so callers never branch on missing keys.
type Buckets[T any] struct {
	vocabulary   []models.Tab
	byTab        map[models.Tab][]T
	unclassified []T
}

// Group partitions items by classify in a single pass, keeping input order
// within each bucket.
func Group[T any](items []T, vocabulary []models.Tab, classify func(T) models.Tab) Buckets[T] {
	b := Buckets[T]{
		vocabulary:   append([]models.Tab(nil), vocabulary...),
		byTab:        make(map[models.Tab][]T, len(vocabulary)),
		unclassified: []T{},
	}
	for _, tab := range vocabulary {
		b.byTab[tab] = []T{}
	}

	for _, item := range items {
		tab := classify(item)
		if bucket, ok := b.byTab[tab]; ok {
			b.byTab[tab] = append(bucket, item)
			continue
		}
		b.unclassified = append(b.unclassified, item)
	}
	return b
}

// Vocabulary returns the tabs in declaration order
func (b Buckets[T]) Vocabulary() []models.Tab {
	return b.vocabulary
}

// Items returns the bucket for tab; unknown tabs yield an empty slice
func (b Buckets[T]) Items(tab models.Tab) []T {
	if tab == Unclassified {
		return b.unclassified
	}
	if items, ok := b.byTab[tab]; ok {
		return items
	}
	return []T{}
}

// Unclassified returns items that matched no tab
func (b Buckets[T]) Unclassified() []T {
	return b.unclassified
}

// Count returns the size of tab's bucket
func (b Buckets[T]) Count(tab models.Tab) int {
	return len(b.Items(tab))
}

// Available lists non-empty vocabulary tabs in declaration order
func (b Buckets[T]) Available() []models.Tab {
	available := make([]models.Tab, 0, len(b.vocabulary))
	for _, tab := range b.vocabulary {
		if len(b.byTab[tab]) > 0 {
			available = append(available, tab)
		}
	}
	return available
}

// Counts lists non-empty vocabulary tabs with their sizes
func (b Buckets[T]) Counts() []models.TabCount {
	counts := make([]models.TabCount, 0, len(b.vocabulary))
	for _, tab := range b.Available() {
		counts = append(counts, models.TabCount{Tab: tab, Count: len(b.byTab[tab])})
	}
	return counts
}

// Total is the number of grouped items, unclassified included
func (b Buckets[T]) Total() int {
	total := len(b.unclassified)
	for _, items := range b.byTab {
		total += len(items)
	}
	return total
}

// Map applies fn to every vocabulary bucket, returning new buckets.
// Unclassified items are carried over untouched.
func (b Buckets[T]) Map(fn func(tab models.Tab, items []T) []T) Buckets[T] {
	out := Buckets[T]{
		vocabulary:   b.vocabulary,
		byTab:        make(map[models.Tab][]T, len(b.byTab)),
		unclassified: b.unclassified,
	}
	for _, tab := range b.vocabulary {
		out.byTab[tab] = fn(tab, b.byTab[tab])
	}
	return out
}
