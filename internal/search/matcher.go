// Package search filters, orders and pages the listing, booking and review
// surfaces. Every entry point is a pure function of its inputs: the input
// slices are never reordered or modified, and identical inputs give
// identical pages.
package search

import (
	"sort"
	"sync"

	"staybook/server/internal/models"
)

const (
	// DefaultPageSize is the page size of every surface unless configured
	DefaultPageSize = 10
	// MaxPageSize caps client-requested page sizes
	MaxPageSize = 50
)

type Matcher struct {
	defaultPageSize   int
	maxPageSize       int
	workers           int
	parallelThreshold int
}

type Option func(*Matcher)

// WithPageSize sets the default page size and the largest one a caller may request
func WithPageSize(defaultSize, maxSize int) Option {
	return func(m *Matcher) {
		if defaultSize > 0 {
			m.defaultPageSize = defaultSize
		}
		if maxSize >= m.defaultPageSize {
			m.maxPageSize = maxSize
		}
	}
}

// WithParallelFilter splits filtering of inputs of at least threshold items
// across the given number of goroutines.
func WithParallelFilter(workers, threshold int) Option {
	return func(m *Matcher) {
		m.workers = workers
		m.parallelThreshold = threshold
	}
}

func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
		workers:         1,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.maxPageSize < m.defaultPageSize {
		m.maxPageSize = m.defaultPageSize
	}
	return m
}

// PageSize resolves a requested page size against the configured bounds
func (m *Matcher) PageSize(requested int) int {
	switch {
	case requested < 1:
		return m.defaultPageSize
	case requested > m.maxPageSize:
		return m.maxPageSize
	default:
		return requested
	}
}

// filterItems copies the items for which keep returns true, preserving
// input order. keep must not have side effects: large inputs are split
// across goroutines and evaluation order is unspecified.
func filterItems[T any](m *Matcher, items []T, keep func(*T) bool) []T {
	if m.workers > 1 && m.parallelThreshold > 0 && len(items) >= m.parallelThreshold {
		return filterParallel(items, keep, m.workers)
	}

	out := make([]T, 0, len(items))
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

func filterParallel[T any](items []T, keep func(*T) bool, workers int) []T {
	mask := make([]bool, len(items))
	chunk := (len(items) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(items); start += chunk {
		end := min(start+chunk, len(items))
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				mask[i] = keep(&items[i])
			}
		}(start, end)
	}
	wg.Wait()

	out := make([]T, 0, len(items))
	for i, ok := range mask {
		if ok {
			out = append(out, items[i])
		}
	}
	return out
}

// sortItems orders items in place with a stable sort, so equal keys keep
// their input order. A nil less leaves the order untouched.
func sortItems[T any](items []T, less func(a, b *T) bool, descending bool) {
	if less == nil {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if descending {
			return less(&items[j], &items[i])
		}
		return less(&items[i], &items[j])
	})
}

// paginate cuts one 1-indexed page out of items. Pages past the end are
// empty, never an error.
func paginate[T any](items []T, page, pageSize int) models.Page[T] {
	if page < 1 {
		page = 1
	}
	total := len(items)
	result := models.Page[T]{
		Items:      []T{},
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
		Page:       page,
		PageSize:   pageSize,
	}

	if page > result.TotalPages {
		return result
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	result.Items = items[start:end]
	return result
}
