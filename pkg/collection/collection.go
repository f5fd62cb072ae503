// Package collection provides generic, functional-style helpers for slices.
//
// Every function treats its input as read-only and returns a fresh slice, so
// an unfiltered view can always be recovered from the base collection.
//
//	open := collection.Filter(shops, func(s models.Shop) bool { return s.Status })
//	byRole := collection.GroupBy(requests, func(r models.SupportRequest) string { return r.Role })
//	sorted := collection.SortStableBy(orders, func(a, b models.Order) bool { return rank(a) < rank(b) })
package collection

import "sort"

// Map transforms each element of slice s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns elements of s for which fn returns true. The result is
// never nil, so "no match" and "nothing fetched yet" both render as empty.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a shallow copy of s; nil becomes an empty slice.
func Clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// First returns the first element matching fn, or (zero, false).
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Contains reports whether any element of s satisfies fn.
func Contains[T any](s []T, fn func(T) bool) bool {
	_, ok := First(s, fn)
	return ok
}

// GroupBy partitions s into a map keyed by the string returned by fn.
func GroupBy[T any](s []T, fn func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, v := range s {
		k := fn(v)
		out[k] = append(out[k], v)
	}
	return out
}

// CountBy counts elements of s per key returned by fn.
func CountBy[T any, K comparable](s []T, fn func(T) K) map[K]int {
	out := make(map[K]int)
	for _, v := range s {
		out[fn(v)]++
	}
	return out
}

// Count returns how many elements of s satisfy fn.
func Count[T any](s []T, fn func(T) bool) int {
	n := 0
	for _, v := range s {
		if fn(v) {
			n++
		}
	}
	return n
}

// SortStableBy returns a sorted copy of s. Elements that compare equal keep
// their relative input order.
func SortStableBy[T any](s []T, less func(a, b T) bool) []T {
	out := Clone(s)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Reduce folds s into a single value using fn, starting with initial.
func Reduce[T, R any](s []T, initial R, fn func(carry R, item T) R) R {
	carry := initial
	for _, v := range s {
		carry = fn(carry, v)
	}
	return carry
}

// Sum sums numeric values extracted by fn.
func Sum[T any](s []T, fn func(T) float64) float64 {
	return Reduce(s, 0.0, func(acc float64, v T) float64 { return acc + fn(v) })
}

// Flatten merges a slice-of-slices into a single slice.
func Flatten[T any](s [][]T) []T {
	out := []T{}
	for _, inner := range s {
		out = append(out, inner...)
	}
	return out
}

// KeyBy turns s into a map using the key produced by fn.
// If two elements produce the same key, the last one wins.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}

// Take returns the first n elements.
func Take[T any](s []T, n int) []T {
	if n >= len(s) {
		return s
	}
	if n < 0 {
		return s[:0]
	}
	return s[:n]
}
