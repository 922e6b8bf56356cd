// Package packing groups sized items into capacity-bounded bins using the
// best-fit-decreasing heuristic and estimates archive counts for previews.
//
// Pack is deterministic: identical input order and sizes always yield the same
// assignment. An item larger than the capacity is accepted into a bin of its
// own; remediation of such bins is left to the archive builder.
package packing
