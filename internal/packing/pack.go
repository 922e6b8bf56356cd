package packing

import (
	"sort"
)

// Item is the unit the packer operates on.
type Item struct {
	Path string
	Size int64
	// Order is the discovery index; it breaks size ties.
	Order int
}

// Bin is an ordered group of items destined for one archive.
type Bin struct {
	Items    []Item
	Used     int64
	Capacity int64
}

// Remaining returns the free capacity; negative for an oversized bin.
func (b Bin) Remaining() int64 {
	return b.Capacity - b.Used
}

// Oversized reports whether the bin exceeds its capacity. Only a bin holding a
// single item larger than the capacity can be oversized.
func (b Bin) Oversized() bool {
	return b.Used > b.Capacity
}

// Paths lists the member paths in insertion order.
func (b Bin) Paths() []string {
	paths := make([]string, len(b.Items))
	for i, item := range b.Items {
		paths[i] = item.Path
	}
	return paths
}

// Pack assigns items to bins with best-fit-decreasing. Items are sorted by
// size descending with ties kept in discovery order; each item goes to the
// open bin it fills most tightly, the earliest such bin on ties, or to a new
// bin when none has room. Bins are never reordered and items never move.
func Pack(items []Item, capacity int64) []Bin {
	if len(items) == 0 {
		return nil
	}
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Size != sorted[j].Size {
			return sorted[i].Size > sorted[j].Size
		}
		return sorted[i].Order < sorted[j].Order
	})

	var bins []Bin
	for _, item := range sorted {
		best := -1
		var bestLeft int64
		for i := range bins {
			remaining := bins[i].Remaining()
			if remaining < item.Size {
				continue
			}
			left := remaining - item.Size
			if best == -1 || left < bestLeft {
				best = i
				bestLeft = left
			}
		}
		if best == -1 {
			bins = append(bins, Bin{Items: []Item{item}, Used: item.Size, Capacity: capacity})
			continue
		}
		bins[best].Items = append(bins[best].Items, item)
		bins[best].Used += item.Size
	}
	return bins
}

// Totals summarizes a packing result.
type Totals struct {
	Bins      int
	Items     int
	Bytes     int64
	Oversized int
}

// Summarize computes Totals for bins.
func Summarize(bins []Bin) Totals {
	var totals Totals
	totals.Bins = len(bins)
	for _, bin := range bins {
		totals.Items += len(bin.Items)
		totals.Bytes += bin.Used
		if bin.Oversized() {
			totals.Oversized++
		}
	}
	return totals
}
