// Package source implements the six content fetchers feeding the daily
// report. Each fetcher issues exactly one GET against its endpoint, parses
// the source-specific payload into normalized records, and exposes a fixed
// fallback used by the aggregator when anything goes wrong. Fetchers share
// one pooled HTTP client and hold no mutable state across calls.
package source

// capped returns at most max elements of list. A negative max is treated
// as zero.
func capped[T any](list []T, max int) []T {
	if max < 0 {
		max = 0
	}
	if len(list) > max {
		list = list[:max]
	}
	out := make([]T, len(list))
	copy(out, list)
	return out
}
