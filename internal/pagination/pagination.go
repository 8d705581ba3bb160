// Package pagination slices ordered result sets into fixed-size pages.
package pagination

import "strconv"

const DefaultPageSize = 10

type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"number"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// Paginate returns page `number` (1-indexed) of items. Out-of-range numbers
// clip to the nearest valid page instead of erroring.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	last := (len(items) + size - 1) / size
	if last == 0 {
		last = 1
	}
	if number < 1 {
		number = 1
	}
	if number > last {
		number = last
	}

	start := (number - 1) * size
	if start > len(items) {
		start = len(items)
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:       items[start:end],
		Number:      number,
		HasNext:     number < last,
		HasPrevious: number > 1,
	}
}

// Number parses the `page` query parameter. Anything that is not a positive
// integer falls back to the first page.
func Number(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
