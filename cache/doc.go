// Package cache is the keyed in-process cache behind every network read in
// the data layer.
//
// # Entries
//
// An entry for a key is either resolved (a value with an expiry) or pending
// (an attempt in flight). At most one entry exists per key. Expiry is lazy:
// an expired resolved entry is treated as a miss and deleted on read; there
// is no background timer.
//
// # GetOrCreate
//
// [Cache.GetOrCreate] is the primary entry point. A live resolved entry is
// returned without invoking the producer. A live pending entry is joined:
// the caller blocks until the attempt in flight settles and observes the
// same outcome as the caller that started it, so N concurrent readers of an
// uncached key cost exactly one fetch. Otherwise the producer runs; success
// stores the value with a fresh expiry, failure removes the entry entirely
// so the next caller gets a fresh attempt instead of a replayed failure.
//
// A settling attempt only touches the entry it installed. If the entry was
// cleared or superseded mid-flight, the late settlement is discarded rather
// than clobbering the newer entry.
//
// # Pruning
//
// The cache bounds its memory by pruning after successful writes, but only
// once its size crosses the cleanup threshold, which amortizes the cost.
// Pruning first drops expired resolved entries, then drops resolved entries
// in ascending expiry order until the size bound holds. Pending entries are
// never pruned out from under a waiting caller.
//
// # Locking
//
// One mutex guards the map. It is held only at the four mutation points
// (install, resolve, failure-removal, prune) and never across the producer
// call itself.
package cache
